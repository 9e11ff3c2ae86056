package stripesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"gorm.io/gorm"
)

// SyncResult reports what a sync-from-ledger repair changed.
type SyncResult struct {
	OrderID       int   `json:"order_id"`
	ItemsUpdated  int   `json:"items_updated"`
	ItemsCreated  int   `json:"items_created"`
	ItemsDeleted  int   `json:"items_deleted"`
	NewTotalCents int64 `json:"new_total_cents"`
}

// SyncPlan is the computed diff between local order items and the
// remote line items. The ledger is the source of truth.
type SyncPlan struct {
	Updates []ItemUpdate
	Creates []RemoteLineItem
	Deletes []models.OrderItem
	// NewTotalCents is the remote transaction total the order is set to.
	NewTotalCents int64
}

type ItemUpdate struct {
	Item        models.OrderItem
	Quantity    int64
	AmountCents int64
}

func (p *SyncPlan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Creates) == 0 && len(p.Deletes) == 0
}

// BuildSyncPlan diffs local items against remote line items by name.
// A local item whose quantity or total differs is updated; a remote
// line with no local counterpart is created; a local item absent
// remotely is deleted. Pure, so repeated application on an unchanged
// remote yields an empty plan.
func BuildSyncPlan(order *models.Order, remote *RemoteTransaction) SyncPlan {
	plan := SyncPlan{NewTotalCents: remote.AmountCents}

	localByName := make(map[string]*models.OrderItem, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		localByName[item.Name] = item
	}

	remoteNames := make(map[string]bool, len(remote.LineItems))
	for _, li := range remote.LineItems {
		remoteNames[li.Name] = true
		local, ok := localByName[li.Name]
		if !ok {
			plan.Creates = append(plan.Creates, li)
			continue
		}
		if int64(local.Quantity) != li.Quantity || local.TotalCents != li.AmountCents {
			plan.Updates = append(plan.Updates, ItemUpdate{
				Item:        *local,
				Quantity:    li.Quantity,
				AmountCents: li.AmountCents,
			})
		}
	}

	for i := range order.Items {
		if !remoteNames[order.Items[i].Name] {
			plan.Deletes = append(plan.Deletes, order.Items[i])
		}
	}

	return plan
}

// inferItemType guesses the item type for a ledger-created item. The
// webhook handlers tag items properly; resynced items fall back to
// merchandise when the name matches nothing bookable.
func inferItemType(ctx context.Context, name string) string {
	db := config.GetDB()
	var count int64

	if db.WithContext(ctx).Model(&models.Tournament{}).Where("name = ?", name).Count(&count); count > 0 {
		return models.ItemTypeTournament
	}
	if db.WithContext(ctx).Model(&models.Activity{}).Where("name = ?", name).Count(&count); count > 0 {
		return models.ItemTypeActivity
	}
	if db.WithContext(ctx).Model(&models.SpecialEvent{}).Where("name = ?", name).Count(&count); count > 0 {
		return models.ItemTypeSpecialEvent
	}
	if db.WithContext(ctx).Model(&models.EventTier{}).Where("name = ?", name).Count(&count); count > 0 {
		return models.ItemTypeEventTier
	}
	if db.WithContext(ctx).Model(&models.Addon{}).Where("name = ?", name).Count(&count); count > 0 {
		return models.ItemTypeAddon
	}
	return models.ItemTypeMerchandise
}

// SyncOrderFromStripe overwrites the order's local line items from the
// remote ledger and recomputes the order total. Idempotent: a second
// run against an unchanged remote transaction reports zero changes.
// The item changes and total update are applied in one transaction.
func SyncOrderFromStripe(ctx context.Context, ledger LedgerSource, orderID int) (*SyncResult, error) {
	order, err := models.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentIntentID == "" && order.CheckoutSessionID == "" {
		return nil, ErrOrderHasNoPaymentRef
	}

	remote, err := ledger.TransactionForOrder(ctx, order)
	if err != nil {
		// remote errors surface verbatim, never retried here
		return nil, err
	}
	if remote == nil {
		return nil, fmt.Errorf("no remote transaction found for order %s", order.OrderNumber)
	}

	plan := BuildSyncPlan(order, remote)
	result := &SyncResult{OrderID: order.ID, NewTotalCents: plan.NewTotalCents}
	if plan.Empty() && order.TotalCents == plan.NewTotalCents {
		return result, nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range plan.Updates {
			unitPrice := update.AmountCents
			if update.Quantity > 0 {
				unitPrice = update.AmountCents / update.Quantity
			}
			if err := tx.Model(&models.OrderItem{}).Where("id = ?", update.Item.ID).
				Updates(map[string]interface{}{
					"Quantity":       update.Quantity,
					"UnitPriceCents": unitPrice,
					"TotalCents":     update.AmountCents,
				}).Error; err != nil {
				return err
			}
			result.ItemsUpdated++
		}

		for _, li := range plan.Creates {
			unitPrice := li.AmountCents
			if li.Quantity > 0 {
				unitPrice = li.AmountCents / li.Quantity
			}
			item := models.OrderItem{
				OrderID:        order.ID,
				ItemType:       inferItemType(ctx, li.Name),
				Name:           li.Name,
				Quantity:       int(li.Quantity),
				UnitPriceCents: unitPrice,
				TotalCents:     li.AmountCents,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			result.ItemsCreated++
		}

		for _, item := range plan.Deletes {
			if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
				return err
			}
			result.ItemsDeleted++
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			UpdateColumn("total_cents", plan.NewTotalCents).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ErrOrderHasNoPaymentRef is returned when a sync is requested for an
// order that never went through checkout (manual audit-trail orders).
var ErrOrderHasNoPaymentRef = errors.New("order has no payment reference to sync from")
