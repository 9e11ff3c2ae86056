package models

import (
	"context"
	"time"

	"github.com/cactuscup/admin_backend/utils"
)

// Registration variants. Each links one user to one bookable resource.
// payment_intent_id is optional: comped and manually inserted rows have none.

type TournamentRegistration struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserID          int       `gorm:"index;not null" json:"user_id"`
	TournamentID    int       `gorm:"index;not null" json:"tournament_id"`
	PaymentStatus   string    `gorm:"size:20;not null;default:'paid'" json:"payment_status"`
	AmountPaidCents int64     `gorm:"not null;default:0" json:"amount_paid_cents"`
	PaymentIntentID string    `gorm:"size:100" json:"payment_intent_id"`
	FighterName     string    `gorm:"size:255" json:"fighter_name"`
	Club            string    `gorm:"size:255" json:"club"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ActivityRegistration struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserID          int       `gorm:"index;not null" json:"user_id"`
	ActivityID      int       `gorm:"index;not null" json:"activity_id"`
	PaymentStatus   string    `gorm:"size:20;not null;default:'paid'" json:"payment_status"`
	AmountPaidCents int64     `gorm:"not null;default:0" json:"amount_paid_cents"`
	PaymentIntentID string    `gorm:"size:100" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type EventRegistration struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserID          int       `gorm:"index;not null" json:"user_id"`
	EventTierID     int       `gorm:"index;not null" json:"event_tier_id"`
	PaymentStatus   string    `gorm:"size:20;not null;default:'paid'" json:"payment_status"`
	AmountPaidCents int64     `gorm:"not null;default:0" json:"amount_paid_cents"`
	PaymentIntentID string    `gorm:"size:100" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type SpecialEventRegistration struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserID          int       `gorm:"index;not null" json:"user_id"`
	SpecialEventID  int       `gorm:"index;not null" json:"special_event_id"`
	PaymentStatus   string    `gorm:"size:20;not null;default:'paid'" json:"payment_status"`
	AmountPaidCents int64     `gorm:"not null;default:0" json:"amount_paid_cents"`
	PaymentIntentID string    `gorm:"size:100" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AddonPurchase links a paid addon order item to its addon.
type AddonPurchase struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserID          int       `gorm:"index;not null" json:"user_id"`
	AddonID         int       `gorm:"index;not null" json:"addon_id"`
	OrderItemID     *int      `gorm:"index" json:"order_item_id"`
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`
	AmountPaidCents int64     `gorm:"not null;default:0" json:"amount_paid_cents"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetTournamentRegistrationsForUser(ctx context.Context, userID int) ([]*TournamentRegistration, error) {
	return utils.FetchModelsWhere[TournamentRegistration](ctx, "user_id = ?", userID)
}

func GetActivityRegistrationsForUser(ctx context.Context, userID int) ([]*ActivityRegistration, error) {
	return utils.FetchModelsWhere[ActivityRegistration](ctx, "user_id = ?", userID)
}

func GetEventRegistrationsForUser(ctx context.Context, userID int) ([]*EventRegistration, error) {
	return utils.FetchModelsWhere[EventRegistration](ctx, "user_id = ?", userID)
}

func GetSpecialEventRegistrationsForUser(ctx context.Context, userID int) ([]*SpecialEventRegistration, error) {
	return utils.FetchModelsWhere[SpecialEventRegistration](ctx, "user_id = ?", userID)
}

func GetAddonPurchasesForUser(ctx context.Context, userID int) ([]*AddonPurchase, error) {
	return utils.FetchModelsWhere[AddonPurchase](ctx, "user_id = ?", userID)
}
