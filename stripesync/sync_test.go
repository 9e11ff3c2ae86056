package stripesync

import (
	"testing"

	"github.com/cactuscup/admin_backend/models"
)

func TestBuildSyncPlanDiff(t *testing.T) {
	order := &models.Order{
		ID:         1,
		TotalCents: 4500,
		Items: []models.OrderItem{
			{ID: 10, Name: "Longsword Open", Quantity: 1, TotalCents: 4000},
			{ID: 11, Name: "Stale Item", Quantity: 1, TotalCents: 500},
		},
	}
	remote := &RemoteTransaction{
		SessionID:   "cs_1",
		AmountCents: 7000,
		LineItems: []RemoteLineItem{
			{Name: "Longsword Open", Quantity: 1, AmountCents: 5000}, // amount changed
			{Name: "Lunch Plan", Quantity: 2, AmountCents: 2000},     // new
			// Stale Item absent remotely
		},
	}

	plan := BuildSyncPlan(order, remote)

	if len(plan.Updates) != 1 || plan.Updates[0].Item.ID != 10 {
		t.Fatalf("updates = %+v, want single update of item 10", plan.Updates)
	}
	if plan.Updates[0].AmountCents != 5000 {
		t.Fatalf("update amount = %d, want 5000", plan.Updates[0].AmountCents)
	}
	if len(plan.Creates) != 1 || plan.Creates[0].Name != "Lunch Plan" {
		t.Fatalf("creates = %+v, want single create of Lunch Plan", plan.Creates)
	}
	if len(plan.Deletes) != 1 || plan.Deletes[0].ID != 11 {
		t.Fatalf("deletes = %+v, want single delete of item 11", plan.Deletes)
	}
	if plan.NewTotalCents != 7000 {
		t.Fatalf("new total = %d, want 7000", plan.NewTotalCents)
	}
}

// Applying the plan and re-diffing must yield an empty plan: the repair
// is idempotent against an unchanged remote transaction.
func TestBuildSyncPlanIdempotent(t *testing.T) {
	remote := &RemoteTransaction{
		SessionID:   "cs_1",
		AmountCents: 7000,
		LineItems: []RemoteLineItem{
			{Name: "Longsword Open", Quantity: 1, AmountCents: 5000},
			{Name: "Lunch Plan", Quantity: 2, AmountCents: 2000},
		},
	}

	// the order as it looks after a first sync run
	synced := &models.Order{
		ID:         1,
		TotalCents: 7000,
		Items: []models.OrderItem{
			{ID: 10, Name: "Longsword Open", Quantity: 1, TotalCents: 5000},
			{ID: 12, Name: "Lunch Plan", Quantity: 2, TotalCents: 2000},
		},
	}

	plan := BuildSyncPlan(synced, remote)
	if !plan.Empty() {
		t.Fatalf("second plan not empty: updates=%d creates=%d deletes=%d",
			len(plan.Updates), len(plan.Creates), len(plan.Deletes))
	}
	if plan.NewTotalCents != synced.TotalCents {
		t.Fatalf("new total = %d, want unchanged %d", plan.NewTotalCents, synced.TotalCents)
	}
}

func TestBuildSyncPlanQuantityChange(t *testing.T) {
	order := &models.Order{
		ID:         1,
		TotalCents: 1500,
		Items: []models.OrderItem{
			{ID: 10, Name: "T-shirt", Quantity: 1, TotalCents: 1500},
		},
	}
	remote := &RemoteTransaction{
		SessionID:   "cs_1",
		AmountCents: 3000,
		LineItems:   []RemoteLineItem{{Name: "T-shirt", Quantity: 2, AmountCents: 3000}},
	}

	plan := BuildSyncPlan(order, remote)
	if len(plan.Updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(plan.Updates))
	}
	if plan.Updates[0].Quantity != 2 || plan.Updates[0].AmountCents != 3000 {
		t.Fatalf("update = %+v, want quantity 2 amount 3000", plan.Updates[0])
	}
	if len(plan.Creates) != 0 || len(plan.Deletes) != 0 {
		t.Fatalf("unexpected creates/deletes: %+v %+v", plan.Creates, plan.Deletes)
	}
}

func TestParseRemoteTransactionRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"session_id": `},
		{"no ids", `{"amount_cents": 100}`},
		{"negative amount", `{"session_id": "cs_1", "amount_cents": -5}`},
		{"nameless line item", `{"session_id": "cs_1", "amount_cents": 100, "line_items": [{"quantity": 1, "amount_cents": 100}]}`},
		{"zero quantity", `{"session_id": "cs_1", "amount_cents": 100, "line_items": [{"name": "X", "quantity": 0, "amount_cents": 100}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRemoteTransaction([]byte(tt.raw)); err == nil {
				t.Fatalf("ParseRemoteTransaction accepted %s", tt.raw)
			}
		})
	}

	good := `{"session_id": "cs_1", "payment_intent_id": "pi_1", "amount_cents": 3000,
		"line_items": [{"name": "T-shirt", "quantity": 2, "amount_cents": 3000}]}`
	txn, err := ParseRemoteTransaction([]byte(good))
	if err != nil {
		t.Fatalf("ParseRemoteTransaction: %v", err)
	}
	if txn.AmountCents != 3000 || len(txn.LineItems) != 1 {
		t.Fatalf("parsed = %+v", txn)
	}
}
