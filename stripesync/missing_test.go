package stripesync

import (
	"testing"

	"github.com/cactuscup/admin_backend/models"
)

func emptyIndex() *registrationIndex {
	return &registrationIndex{
		tournamentByUser:   map[int]int{},
		activityByUser:     map[int]int{},
		eventByUser:        map[int]int{},
		specialEventByUser: map[int]int{},
	}
}

func TestFindMissingLocalReportsUncoveredTournamentItem(t *testing.T) {
	orders := []*models.Order{
		completedOrder(1, 7, "pi_1", 4000,
			models.OrderItem{ID: 10, ItemType: models.ItemTypeTournament, Name: "Longsword Open", Quantity: 1, TotalCents: 4000}),
	}

	missing := FindMissingLocal(orders, emptyIndex())
	if len(missing[7]) != 1 {
		t.Fatalf("missing for user 7 = %d, want 1", len(missing[7]))
	}
	if missing[7][0].OrderItemID != 10 || missing[7][0].ItemType != models.ItemTypeTournament {
		t.Fatalf("missing item = %+v", missing[7][0])
	}
}

func TestFindMissingLocalSkipsCoveredItem(t *testing.T) {
	orders := []*models.Order{
		completedOrder(1, 7, "pi_1", 4000,
			models.OrderItem{ID: 10, ItemType: models.ItemTypeTournament, Name: "Longsword Open", Quantity: 1, TotalCents: 4000}),
	}

	idx := emptyIndex()
	idx.tournamentByUser[7] = 1

	missing := FindMissingLocal(orders, idx)
	if len(missing) != 0 {
		t.Fatalf("missing = %+v, want none", missing)
	}
}

// An order item is reported at most once, even when its quantity
// implies several absent registrations.
func TestFindMissingLocalNeverDoubleReports(t *testing.T) {
	orders := []*models.Order{
		completedOrder(1, 7, "pi_1", 8000,
			models.OrderItem{ID: 10, ItemType: models.ItemTypeTournament, Name: "Longsword Open", Quantity: 2, TotalCents: 8000}),
	}

	missing := FindMissingLocal(orders, emptyIndex())
	if len(missing[7]) != 1 {
		t.Fatalf("missing for user 7 = %d, want exactly 1", len(missing[7]))
	}
}

func TestFindMissingLocalIgnoresNonRegistrationItems(t *testing.T) {
	orders := []*models.Order{
		completedOrder(1, 7, "pi_1", 1500,
			models.OrderItem{ID: 10, ItemType: models.ItemTypeMerchandise, Name: "T-shirt", Quantity: 1, TotalCents: 1500}),
	}

	missing := FindMissingLocal(orders, emptyIndex())
	if len(missing) != 0 {
		t.Fatalf("missing = %+v, want none", missing)
	}
}

func TestCheckUserSyncIssueKinds(t *testing.T) {
	rec := userRecords{
		orders: []*models.Order{
			completedOrder(1, 7, "pi_1", 5500,
				models.OrderItem{ID: 10, ItemType: models.ItemTypeTournament, Name: "Longsword Open", Quantity: 1, TotalCents: 4000},
				models.OrderItem{ID: 11, ItemType: models.ItemTypeAddon, Name: "Lunch Plan", Quantity: 1, TotalCents: 1500}),
		},
		// one activity registration with no paid activity item
		activities: 1,
	}

	result := CheckUserSync(7, rec)

	var missing, orphaned, addonLinks int
	for _, issue := range result.Issues {
		switch issue.IssueType {
		case IssueMissingRegistration:
			missing++
		case IssueOrphanedRegistration:
			orphaned++
		case IssueMissingAddonLink:
			addonLinks++
		}
	}

	if missing != 1 {
		t.Fatalf("missing_registration = %d, want 1 (paid tournament item, no registration)", missing)
	}
	if orphaned != 1 {
		t.Fatalf("orphaned_registration = %d, want 1 (activity registration, no paid item)", orphaned)
	}
	if addonLinks != 1 {
		t.Fatalf("missing_addon_link = %d, want 1 (addon item without addon id)", addonLinks)
	}
}

func TestCheckUserSyncCleanUser(t *testing.T) {
	addonID := 3
	rec := userRecords{
		orders: []*models.Order{
			completedOrder(1, 7, "pi_1", 5500,
				models.OrderItem{ID: 10, ItemType: models.ItemTypeTournament, Name: "Longsword Open", Quantity: 1, TotalCents: 4000},
				models.OrderItem{ID: 11, ItemType: models.ItemTypeAddon, Name: "Lunch Plan", Quantity: 1, TotalCents: 1500, AddonID: &addonID}),
		},
		tournaments: 1,
		addons:      1,
	}

	result := CheckUserSync(7, rec)
	if len(result.Issues) != 0 {
		t.Fatalf("issues = %+v, want none", result.Issues)
	}
	if result.PaidOrderItems != 2 {
		t.Fatalf("paid order items = %d, want 2", result.PaidOrderItems)
	}
}
