package stripesync

import (
	"context"
	"sort"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
)

// UserSyncResult is the per-user cross-check of paid order items
// against registration rows.
type UserSyncResult struct {
	UserID                    int         `json:"user_id"`
	PaidOrderItems            int         `json:"paid_order_items"`
	TournamentRegistrations   int         `json:"tournament_registrations"`
	ActivityRegistrations     int         `json:"activity_registrations"`
	EventRegistrations        int         `json:"event_registrations"`
	SpecialEventRegistrations int         `json:"special_event_registrations"`
	AddonPurchases            int         `json:"addon_purchases"`
	Issues                    []SyncIssue `json:"issues"`
}

type RegistrationSyncResult struct {
	TotalUsers                 int              `json:"total_users"`
	TotalPaidOrderItems        int              `json:"total_paid_order_items"`
	TotalRegistrations         int              `json:"total_registrations"`
	TotalMissingRegistrations  int              `json:"total_missing_registrations"`
	TotalOrphanedRegistrations int              `json:"total_orphaned_registrations"`
	TotalMissingAddonLinks     int              `json:"total_missing_addon_links"`
	Users                      []UserSyncResult `json:"users"`
}

// userRecords bundles one user's rows for the pure cross-check.
type userRecords struct {
	orders        []*models.Order
	tournaments   int
	activities    int
	events        int
	specialEvents int
	addons        int
}

// CheckUserSync cross-checks one user's paid items and registrations.
// Three issue kinds: missing_registration (paid item, no registration),
// orphaned_registration (registration, no paid item), and
// missing_addon_link (addon item without its addon foreign key).
func CheckUserSync(userID int, rec userRecords) UserSyncResult {
	result := UserSyncResult{
		UserID:                    userID,
		TournamentRegistrations:   rec.tournaments,
		ActivityRegistrations:     rec.activities,
		EventRegistrations:        rec.events,
		SpecialEventRegistrations: rec.specialEvents,
		AddonPurchases:            rec.addons,
	}

	paidByType := map[string]int{}
	for _, order := range rec.orders {
		if order.Status != models.OrderStatusCompleted {
			continue
		}
		for _, item := range order.Items {
			result.PaidOrderItems++
			paidByType[item.ItemType] += item.Quantity

			if item.ItemType == models.ItemTypeAddon && item.AddonID == nil {
				result.Issues = append(result.Issues, SyncIssue{
					IssueType:   IssueMissingAddonLink,
					ItemType:    item.ItemType,
					ItemName:    item.Name,
					OrderItemID: item.ID,
					UserID:      userID,
					AmountCents: item.TotalCents,
				})
			}
		}
	}

	regByType := map[string]int{
		models.ItemTypeTournament:   rec.tournaments,
		models.ItemTypeActivity:     rec.activities,
		models.ItemTypeEventTier:    rec.events,
		models.ItemTypeSpecialEvent: rec.specialEvents,
	}

	for _, itemType := range models.RegistrationItemTypes {
		paid := paidByType[itemType]
		regs := regByType[itemType]
		for i := 0; i < paid-regs; i++ {
			result.Issues = append(result.Issues, SyncIssue{
				IssueType: IssueMissingRegistration,
				ItemType:  itemType,
				UserID:    userID,
			})
		}
		for i := 0; i < regs-paid; i++ {
			result.Issues = append(result.Issues, SyncIssue{
				IssueType: IssueOrphanedRegistration,
				ItemType:  itemType,
				UserID:    userID,
			})
		}
	}

	return result
}

// VerifyRegistrationSync runs the cross-check for every user with any
// paid order item or any registration.
func VerifyRegistrationSync(ctx context.Context) (*RegistrationSyncResult, error) {
	db := config.GetDB()

	users := map[int]*userRecords{}
	rec := func(userID int) *userRecords {
		if r, ok := users[userID]; ok {
			return r
		}
		r := &userRecords{}
		users[userID] = r
		return r
	}

	orders, err := models.GetCompletedOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		r := rec(order.UserID)
		r.orders = append(r.orders, order)
	}

	var tournamentRegs []models.TournamentRegistration
	if err := db.WithContext(ctx).Find(&tournamentRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range tournamentRegs {
		rec(reg.UserID).tournaments++
	}

	var activityRegs []models.ActivityRegistration
	if err := db.WithContext(ctx).Find(&activityRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range activityRegs {
		rec(reg.UserID).activities++
	}

	var eventRegs []models.EventRegistration
	if err := db.WithContext(ctx).Find(&eventRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range eventRegs {
		rec(reg.UserID).events++
	}

	var specialEventRegs []models.SpecialEventRegistration
	if err := db.WithContext(ctx).Find(&specialEventRegs).Error; err != nil {
		return nil, err
	}
	for _, reg := range specialEventRegs {
		rec(reg.UserID).specialEvents++
	}

	var addonPurchases []models.AddonPurchase
	if err := db.WithContext(ctx).Find(&addonPurchases).Error; err != nil {
		return nil, err
	}
	for _, purchase := range addonPurchases {
		rec(purchase.UserID).addons++
	}

	result := &RegistrationSyncResult{}
	userIDs := make([]int, 0, len(users))
	for userID := range users {
		userIDs = append(userIDs, userID)
	}
	sort.Ints(userIDs)

	for _, userID := range userIDs {
		userResult := CheckUserSync(userID, *users[userID])
		result.Users = append(result.Users, userResult)
		result.TotalUsers++
		result.TotalPaidOrderItems += userResult.PaidOrderItems
		result.TotalRegistrations += userResult.TournamentRegistrations +
			userResult.ActivityRegistrations + userResult.EventRegistrations +
			userResult.SpecialEventRegistrations
		for _, issue := range userResult.Issues {
			switch issue.IssueType {
			case IssueMissingRegistration:
				result.TotalMissingRegistrations++
			case IssueOrphanedRegistration:
				result.TotalOrphanedRegistrations++
			case IssueMissingAddonLink:
				result.TotalMissingAddonLinks++
			}
		}
	}

	return result, nil
}
