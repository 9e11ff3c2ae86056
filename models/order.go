package models

import (
	"context"
	"fmt"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is created by the checkout webhook handlers (out of process) and
// mutated here only by repair actions.
type Order struct {
	ID                int         `gorm:"primary_key" json:"id"`
	OrderNumber       string      `gorm:"size:50;not null;unique" json:"order_number"`
	UserID            int         `gorm:"index;not null" json:"user_id"`
	Status            string      `gorm:"size:30;not null;default:'pending'" json:"status"`
	PaymentIntentID   string      `gorm:"size:100;index" json:"payment_intent_id"`
	CheckoutSessionID string      `gorm:"size:100;index" json:"checkout_session_id"`
	TotalCents        int64       `gorm:"not null;default:0" json:"total_cents"`
	IsManual          *bool       `gorm:"not null;default:false" json:"is_manual"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID                       int       `gorm:"primary_key" json:"id"`
	OrderID                  int       `gorm:"index;not null" json:"order_id"`
	ItemType                 string    `gorm:"size:30;not null" json:"item_type"`
	Name                     string    `gorm:"size:255;not null" json:"name"`
	Quantity                 int       `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents           int64     `gorm:"not null;default:0" json:"unit_price_cents"`
	TotalCents               int64     `gorm:"not null;default:0" json:"total_cents"`
	AddonID                  *int      `gorm:"index" json:"addon_id"`
	TournamentRegistrationID *int      `gorm:"index" json:"tournament_registration_id"`
	EventRegistrationID      *int      `gorm:"index" json:"event_registration_id"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GenerateOrderNumber produces a short unique order reference for
// manually inserted audit-trail orders.
func GenerateOrderNumber() string {
	return fmt.Sprintf("CC-M-%s", uuid.New().String()[:8])
}

// RecalculateOrderTotal resets an order's total to the sum of its
// remaining items. Runs inside the caller's transaction so repairs that
// delete items commit with a consistent total.
func RecalculateOrderTotal(tx *gorm.DB, orderID int) error {
	return tx.Model(&Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total_cents", gorm.Expr(
			"(SELECT COALESCE(SUM(total_cents), 0) FROM order_items WHERE order_id = ?)", orderID)).
		Error
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Items")
}

func GetOrdersForUser(ctx context.Context, userID int) ([]*Order, error) {

	db := config.GetDB()
	var results []*Order
	err := db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetOrderUserIDs returns the distinct user ids that own at least one order,
// ordered for deterministic bulk iteration.
func GetOrderUserIDs(ctx context.Context) ([]int, error) {

	db := config.GetDB()
	var userIDs []int
	err := db.WithContext(ctx).Model(&Order{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// GetCompletedOrders returns every completed order with items preloaded.
func GetCompletedOrders(ctx context.Context) ([]*Order, error) {

	db := config.GetDB()
	var results []*Order
	err := db.WithContext(ctx).Preload("Items").
		Where("status = ?", OrderStatusCompleted).
		Order("user_id, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// OrderExistsForPaymentRef reports whether any local order references the
// given payment intent or checkout session id.
func OrderExistsForPaymentRef(ctx context.Context, paymentIntentID, checkoutSessionID string) (bool, error) {

	db := config.GetDB()
	var count int64
	dbCtx := db.WithContext(ctx).Model(&Order{})
	switch {
	case paymentIntentID != "" && checkoutSessionID != "":
		dbCtx = dbCtx.Where("payment_intent_id = ? OR checkout_session_id = ?", paymentIntentID, checkoutSessionID)
	case paymentIntentID != "":
		dbCtx = dbCtx.Where("payment_intent_id = ?", paymentIntentID)
	case checkoutSessionID != "":
		dbCtx = dbCtx.Where("checkout_session_id = ?", checkoutSessionID)
	default:
		return false, nil
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
