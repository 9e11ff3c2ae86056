package stripesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// ManualEntryInput inserts a tournament registration bypassing payment.
// AmountPaidCents may be 0 for comped entries.
type ManualEntryInput struct {
	UserID          int    `json:"user_id" binding:"required"`
	TournamentID    int    `json:"tournament_id" binding:"required"`
	AmountPaidCents int64  `json:"amount_paid_cents"`
	FighterName     string `json:"fighter_name"`
	Club            string `json:"club"`
	// CreateOrder also writes an audit-trail order with one item.
	CreateOrder bool `json:"create_order"`
}

type ManualEntryResult struct {
	Registration *models.TournamentRegistration `json:"registration"`
	Order        *models.Order                  `json:"order,omitempty"`
}

// AddManualTournamentEntry inserts a registration and bumps the
// tournament capacity counter in one transaction.
func AddManualTournamentEntry(ctx context.Context, input *ManualEntryInput) (*ManualEntryResult, error) {
	if input.AmountPaidCents < 0 {
		return nil, errors.New("amount must not be negative")
	}
	if err := utils.ValidateResourceId[models.User](ctx, input.UserID); err != nil {
		return nil, errors.New("user not found")
	}

	tournament, err := models.GetTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, errors.New("tournament not found")
	}
	if tournament.Capacity > 0 && tournament.RegisteredCount >= tournament.Capacity {
		return nil, errors.New("tournament is full")
	}

	paymentStatus := models.PaymentStatusPaid
	if input.AmountPaidCents == 0 {
		paymentStatus = models.PaymentStatusComped
	}

	result := &ManualEntryResult{}
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		registration := models.TournamentRegistration{
			UserID:          input.UserID,
			TournamentID:    input.TournamentID,
			PaymentStatus:   paymentStatus,
			AmountPaidCents: input.AmountPaidCents,
			FighterName:     input.FighterName,
			Club:            input.Club,
		}
		if err := tx.Create(&registration).Error; err != nil {
			return err
		}
		result.Registration = &registration

		if err := models.AdjustTournamentCapacity(tx, input.TournamentID, 1); err != nil {
			return err
		}

		if input.CreateOrder {
			order := models.Order{
				OrderNumber: models.GenerateOrderNumber(),
				UserID:      input.UserID,
				Status:      models.OrderStatusCompleted,
				TotalCents:  input.AmountPaidCents,
				IsManual:    utils.NewTrue(),
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			item := models.OrderItem{
				OrderID:                  order.ID,
				ItemType:                 models.ItemTypeTournament,
				Name:                     tournament.Name,
				Quantity:                 1,
				UnitPriceCents:           input.AmountPaidCents,
				TotalCents:               input.AmountPaidCents,
				TournamentRegistrationID: &registration.ID,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = []models.OrderItem{item}
			result.Order = &order
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// registration kinds accepted by RemoveRegistration
const (
	RegistrationKindTournament   = "tournament"
	RegistrationKindActivity     = "activity"
	RegistrationKindEvent        = "event"
	RegistrationKindSpecialEvent = "special_event"
	RegistrationKindAddon        = "addon"
)

type RemoveRegistrationInput struct {
	Kind           string `json:"kind" binding:"required"`
	RegistrationID int    `json:"registration_id" binding:"required"`
	// Refund triggers a Stripe refund for the recorded amount, or for
	// AmountCents when a partial refund is requested.
	Refund      bool   `json:"refund"`
	AmountCents *int64 `json:"amount_cents"`
	Reason      string `json:"reason"`
}

// RemoveRegistrationResult distinguishes a clean removal from a
// removal whose refund failed afterwards.
type RemoveRegistrationResult struct {
	Removed      bool          `json:"removed"`
	Refunded     bool          `json:"refunded"`
	Refund       *RefundResult `json:"refund,omitempty"`
	RefundError  string        `json:"refund_error,omitempty"`
	ItemsRemoved int           `json:"items_removed"`
}

// PartialSuccess reports whether the row was removed but the refund
// failed ("item removed but refund failed").
func (r *RemoveRegistrationResult) PartialSuccess() bool {
	return r.Removed && r.RefundError != ""
}

// RemoveRegistration deletes a registration and restores its capacity
// counter in one transaction. When a refund is requested it runs after
// commit: a refund failure never undoes the deletion, it is reported
// as a partial success.
func RemoveRegistration(ctx context.Context, refunder Refunder, input *RemoveRegistrationInput) (*RemoveRegistrationResult, error) {
	db := config.GetDB()
	result := &RemoveRegistrationResult{}

	var paymentIntentID string
	var recordedCents int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch input.Kind {
		case RegistrationKindTournament:
			var reg models.TournamentRegistration
			if err := tx.First(&reg, input.RegistrationID).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			paymentIntentID = reg.PaymentIntentID
			recordedCents = reg.AmountPaidCents
			if err := tx.Delete(&reg).Error; err != nil {
				return err
			}
			if err := models.AdjustTournamentCapacity(tx, reg.TournamentID, -1); err != nil {
				return err
			}
		case RegistrationKindActivity:
			var reg models.ActivityRegistration
			if err := tx.First(&reg, input.RegistrationID).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			paymentIntentID = reg.PaymentIntentID
			recordedCents = reg.AmountPaidCents
			if err := tx.Delete(&reg).Error; err != nil {
				return err
			}
			if err := models.AdjustActivityCapacity(tx, reg.ActivityID, -1); err != nil {
				return err
			}
		case RegistrationKindEvent:
			var reg models.EventRegistration
			if err := tx.First(&reg, input.RegistrationID).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			paymentIntentID = reg.PaymentIntentID
			recordedCents = reg.AmountPaidCents
			if err := tx.Delete(&reg).Error; err != nil {
				return err
			}
			if err := models.AdjustEventTierCapacity(tx, reg.EventTierID, -1); err != nil {
				return err
			}
		case RegistrationKindSpecialEvent:
			var reg models.SpecialEventRegistration
			if err := tx.First(&reg, input.RegistrationID).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			paymentIntentID = reg.PaymentIntentID
			recordedCents = reg.AmountPaidCents
			if err := tx.Delete(&reg).Error; err != nil {
				return err
			}
			if err := models.AdjustSpecialEventCapacity(tx, reg.SpecialEventID, -1); err != nil {
				return err
			}
		case RegistrationKindAddon:
			// addon purchases carry no payment intent of their own, a
			// requested refund reports partial success
			var purchase models.AddonPurchase
			if err := tx.First(&purchase, input.RegistrationID).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			recordedCents = purchase.AmountPaidCents
			if err := tx.Delete(&purchase).Error; err != nil {
				return err
			}
			if err := models.AdjustAddonSold(tx, purchase.AddonID, -purchase.Quantity); err != nil {
				return err
			}
			if purchase.OrderItemID != nil {
				var item models.OrderItem
				if err := tx.First(&item, *purchase.OrderItemID).Error; err == nil {
					if err := tx.Delete(&item).Error; err != nil {
						return err
					}
					result.ItemsRemoved = 1
					if err := models.RecalculateOrderTotal(tx, item.OrderID); err != nil {
						return err
					}
				}
			}
		default:
			return fmt.Errorf("unknown registration kind %q", input.Kind)
		}

		// remove order items pointing at the deleted registration
		var refColumn string
		switch input.Kind {
		case RegistrationKindTournament:
			refColumn = "tournament_registration_id"
		case RegistrationKindEvent:
			refColumn = "event_registration_id"
		default:
			return nil
		}
		var items []models.OrderItem
		if err := tx.Where(refColumn+" = ?", input.RegistrationID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Where(refColumn+" = ?", input.RegistrationID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		result.ItemsRemoved = len(items)

		// keep the parent totals consistent with the surviving items
		recalculated := make(map[int]bool, len(items))
		for _, item := range items {
			if recalculated[item.OrderID] {
				continue
			}
			recalculated[item.OrderID] = true
			if err := models.RecalculateOrderTotal(tx, item.OrderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Removed = true

	// refund runs after commit; a failure here is a partial success
	applyRefund(ctx, refunder, input, paymentIntentID, recordedCents, result)
	return result, nil
}

// applyRefund issues the optional refund for a removed registration.
// With Refund false the refunder is never invoked. The amount is the
// registration's recorded total unless the caller supplied a partial
// amount.
func applyRefund(ctx context.Context, refunder Refunder, input *RemoveRegistrationInput, paymentIntentID string, recordedCents int64, result *RemoveRegistrationResult) {
	if !input.Refund {
		return
	}
	if paymentIntentID == "" {
		result.RefundError = "no payment intent recorded, nothing to refund"
		return
	}

	amount := utils.DereferencePtr(input.AmountCents, recordedCents)
	refund, err := refunder.Refund(ctx, paymentIntentID, &amount, input.Reason)
	if err != nil {
		config.LogError(config.GetLogger(), moduleName, "RemoveRegistration", "refund after removal", input, err)
		result.RefundError = err.Error()
		return
	}
	result.Refunded = true
	result.Refund = refund
}

type AdminRefundInput struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	AmountCents     *int64 `json:"amount_cents"`
	Reason          string `json:"reason"`
}

// ProcessAdminRefund issues a refund directly against the ledger.
func ProcessAdminRefund(ctx context.Context, refunder Refunder, input *AdminRefundInput) (*RefundResult, error) {
	if input.PaymentIntentID == "" {
		return nil, errors.New("payment intent id is required")
	}
	if input.AmountCents != nil && *input.AmountCents <= 0 {
		return nil, errors.New("refund amount must be positive")
	}
	return refunder.Refund(ctx, input.PaymentIntentID, input.AmountCents, input.Reason)
}
