package stripesync

import (
	"context"
	"sort"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
)

// MissingItem is one paid registration-implying order item with no
// registration row behind it, or a remote-only transaction.
type MissingItem struct {
	Source      string             `json:"source"` // "local" or "stripe_only"
	OrderID     int                `json:"order_id,omitempty"`
	OrderItemID int                `json:"order_item_id,omitempty"`
	ItemType    string             `json:"item_type,omitempty"`
	Name        string             `json:"name,omitempty"`
	AmountCents int64              `json:"amount_cents"`
	Remote      *RemoteTransaction `json:"remote,omitempty"`
}

type UserMissingReport struct {
	UserID  int           `json:"user_id"`
	Missing []MissingItem `json:"missing"`
}

type MissingRegistrationsResult struct {
	TotalUsersAffected        int                 `json:"total_users_affected"`
	TotalMissingRegistrations int                 `json:"total_missing_registrations"`
	Users                     []UserMissingReport `json:"users"`
}

// registrationIndex holds which order items are already covered by a
// registration row, per item type.
type registrationIndex struct {
	tournamentByUser   map[int]int
	activityByUser     map[int]int
	eventByUser        map[int]int
	specialEventByUser map[int]int
}

func buildRegistrationIndex(ctx context.Context) (*registrationIndex, error) {
	db := config.GetDB()
	idx := &registrationIndex{
		tournamentByUser:   map[int]int{},
		activityByUser:     map[int]int{},
		eventByUser:        map[int]int{},
		specialEventByUser: map[int]int{},
	}

	var tournamentRegs []models.TournamentRegistration
	if err := db.WithContext(ctx).Find(&tournamentRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range tournamentRegs {
		idx.tournamentByUser[reg.UserID]++
	}

	var activityRegs []models.ActivityRegistration
	if err := db.WithContext(ctx).Find(&activityRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range activityRegs {
		idx.activityByUser[reg.UserID]++
	}

	var eventRegs []models.EventRegistration
	if err := db.WithContext(ctx).Find(&eventRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range eventRegs {
		idx.eventByUser[reg.UserID]++
	}

	var specialEventRegs []models.SpecialEventRegistration
	if err := db.WithContext(ctx).Find(&specialEventRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range specialEventRegs {
		idx.specialEventByUser[reg.UserID]++
	}

	return idx, nil
}

// take consumes one registration of the item's type for the user,
// reporting whether one was available. Consuming guarantees each order
// item is matched against a distinct registration row, so the same
// item is never double-reported and surplus items are caught.
func (idx *registrationIndex) take(userID int, itemType string) bool {
	var counts map[int]int
	switch itemType {
	case models.ItemTypeTournament:
		counts = idx.tournamentByUser
	case models.ItemTypeActivity:
		counts = idx.activityByUser
	case models.ItemTypeEventTier:
		counts = idx.eventByUser
	case models.ItemTypeSpecialEvent:
		counts = idx.specialEventByUser
	default:
		return true
	}
	if counts[userID] > 0 {
		counts[userID]--
		return true
	}
	return false
}

// FindMissingLocal scans completed orders for registration-implying
// items with no registration row. Pure over its inputs.
func FindMissingLocal(orders []*models.Order, idx *registrationIndex) map[int][]MissingItem {
	missing := make(map[int][]MissingItem)
	for _, order := range orders {
		for _, item := range order.Items {
			if !models.IsRegistrationItemType(item.ItemType) {
				continue
			}
			// each unit of quantity needs its own registration
			for q := 0; q < item.Quantity; q++ {
				if idx.take(order.UserID, item.ItemType) {
					continue
				}
				missing[order.UserID] = append(missing[order.UserID], MissingItem{
					Source:      "local",
					OrderID:     order.ID,
					OrderItemID: item.ID,
					ItemType:    item.ItemType,
					Name:        item.Name,
					AmountCents: item.TotalCents,
				})
				break
			}
		}
	}
	return missing
}

// FindMissingRegistrations reports paid order items whose registration
// row is absent, plus remote transactions with no local order at all
// (source stripe_only), grouped per user.
func FindMissingRegistrations(ctx context.Context, ledger LedgerSource) (*MissingRegistrationsResult, error) {
	orders, err := models.GetCompletedOrders(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := buildRegistrationIndex(ctx)
	if err != nil {
		return nil, err
	}

	missingByUser := FindMissingLocal(orders, idx)

	// remote-only transactions: ledger records nothing local references
	remoteTxns, err := ledger.AllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, txn := range remoteTxns {
		exists, err := models.OrderExistsForPaymentRef(ctx, txn.PaymentIntentID, txn.SessionID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		missingByUser[txn.UserID] = append(missingByUser[txn.UserID], MissingItem{
			Source:      "stripe_only",
			AmountCents: txn.AmountCents,
			Remote:      txn,
		})
	}

	result := &MissingRegistrationsResult{}
	userIDs := make([]int, 0, len(missingByUser))
	for userID := range missingByUser {
		userIDs = append(userIDs, userID)
	}
	sort.Ints(userIDs)

	for _, userID := range userIDs {
		items := missingByUser[userID]
		result.Users = append(result.Users, UserMissingReport{UserID: userID, Missing: items})
		result.TotalUsersAffected++
		result.TotalMissingRegistrations += len(items)
	}
	return result, nil
}
