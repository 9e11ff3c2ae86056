package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// EventTier is an admission tier for the event itself
// (spectator pass, fighter pass, full weekend pass).
type EventTier struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description     string    `gorm:"type:text" json:"description"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents"`
	Capacity        int       `gorm:"not null;default:0" json:"capacity"`
	RegisteredCount int       `gorm:"not null;default:0" json:"registered_count"`
	StripePriceID   string    `gorm:"size:100" json:"stripe_price_id"`
	SortOrder       int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEventTier struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	Capacity      int    `json:"capacity"`
	StripePriceID string `json:"stripe_price_id"`
	SortOrder     int    `json:"sort_order"`
}

func (input *NewEventTier) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[EventTier](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func CreateEventTier(ctx context.Context, input *NewEventTier) (*EventTier, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	tier := EventTier{
		Name:          input.Name,
		Description:   input.Description,
		PriceCents:    input.PriceCents,
		Capacity:      input.Capacity,
		StripePriceID: input.StripePriceID,
		SortOrder:     input.SortOrder,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func UpdateEventTier(ctx context.Context, id int, input *NewEventTier) (*EventTier, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	tier, err := utils.FetchModel[EventTier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&tier).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Description":   input.Description,
		"PriceCents":    input.PriceCents,
		"Capacity":      input.Capacity,
		"StripePriceID": input.StripePriceID,
		"SortOrder":     input.SortOrder,
	}).Error
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func DeleteEventTier(ctx context.Context, id int) (*EventTier, error) {

	result, err := utils.FetchModel[EventTier](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[EventRegistration](ctx, "event_tier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("event tier has registrations")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetEventTier(ctx context.Context, id int) (*EventTier, error) {
	return utils.FetchModel[EventTier](ctx, id)
}

func GetEventTiers(ctx context.Context) ([]*EventTier, error) {

	db := config.GetDB()
	var results []*EventTier
	err := db.WithContext(ctx).Order("sort_order").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func AdjustEventTierCapacity(tx *gorm.DB, tierId int, delta int) error {
	result := tx.Model(&EventTier{}).
		Where("id = ?", tierId).
		Where("registered_count + ? >= 0", delta).
		UpdateColumn("registered_count", gorm.Expr("registered_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("event tier capacity counter update failed")
	}
	return nil
}
