package stripesync

import (
	"context"
	"errors"
	"testing"

	"github.com/cactuscup/admin_backend/models"
)

// fakeLedger serves canned transactions keyed by payment intent or
// session id, and can fail lookups on demand.
type fakeLedger struct {
	byPaymentIntent map[string]*RemoteTransaction
	bySession       map[string]*RemoteTransaction
	lookupErr       error
	calls           int
}

func (f *fakeLedger) TransactionForOrder(ctx context.Context, order *models.Order) (*RemoteTransaction, error) {
	f.calls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if txn, ok := f.byPaymentIntent[order.PaymentIntentID]; ok {
		return txn, nil
	}
	if txn, ok := f.bySession[order.CheckoutSessionID]; ok {
		return txn, nil
	}
	return nil, nil
}

func (f *fakeLedger) TransactionsForUser(ctx context.Context, userID int) ([]*RemoteTransaction, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var results []*RemoteTransaction
	for _, txn := range f.byPaymentIntent {
		if txn.UserID == userID {
			results = append(results, txn)
		}
	}
	return results, nil
}

func (f *fakeLedger) AllTransactions(ctx context.Context) ([]*RemoteTransaction, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var results []*RemoteTransaction
	for _, txn := range f.byPaymentIntent {
		results = append(results, txn)
	}
	return results, nil
}

func completedOrder(id, userID int, paymentIntentID string, totalCents int64, items ...models.OrderItem) *models.Order {
	return &models.Order{
		ID:              id,
		OrderNumber:     "CC-TEST",
		UserID:          userID,
		Status:          models.OrderStatusCompleted,
		PaymentIntentID: paymentIntentID,
		TotalCents:      totalCents,
		Items:           items,
	}
}

func TestClassifyOrder(t *testing.T) {
	matchingRemote := &RemoteTransaction{
		PaymentIntentID: "pi_1",
		AmountCents:     3000,
		LineItems:       []RemoteLineItem{{Name: "T-shirt", Quantity: 2, AmountCents: 3000}},
	}

	tests := []struct {
		name   string
		order  *models.Order
		remote *RemoteTransaction
		err    error
		want   string
	}{
		{
			name: "totals and items agree",
			order: completedOrder(1, 1, "pi_1", 3000,
				models.OrderItem{Name: "T-shirt", Quantity: 2, TotalCents: 3000}),
			remote: matchingRemote,
			want:   StatusMatch,
		},
		{
			name: "total differs",
			order: completedOrder(2, 1, "pi_1", 2500,
				models.OrderItem{Name: "T-shirt", Quantity: 2, TotalCents: 2500}),
			remote: matchingRemote,
			want:   StatusMismatch,
		},
		{
			name: "item set differs",
			order: completedOrder(3, 1, "pi_1", 3000,
				models.OrderItem{Name: "Hoodie", Quantity: 1, TotalCents: 3000}),
			remote: matchingRemote,
			want:   StatusMismatch,
		},
		{
			name: "non-terminal status is pending",
			order: &models.Order{
				ID: 4, UserID: 1, Status: models.OrderStatusPending,
				PaymentIntentID: "pi_1", TotalCents: 3000,
			},
			remote: matchingRemote,
			want:   StatusPending,
		},
		{
			name:  "completed with no remote record",
			order: completedOrder(5, 1, "pi_missing", 5000),
			want:  StatusNoStripeData,
		},
		{
			name:  "lookup failure",
			order: completedOrder(6, 1, "pi_1", 3000),
			err:   errors.New("stripe unavailable"),
			want:  StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyOrder(tt.order, tt.remote, tt.err)
			if got.Status != tt.want {
				t.Fatalf("ClassifyOrder status = %q, want %q (details %v)", got.Status, tt.want, got.Details)
			}
		})
	}
}

// A completed order with no remote record must never come back as
// mismatch.
func TestNoStripeDataIsNotMismatch(t *testing.T) {
	order := completedOrder(1, 7, "pi_nowhere", 5000,
		models.OrderItem{Name: "Fighter Pass", Quantity: 1, TotalCents: 5000})

	got := ClassifyOrder(order, nil, nil)
	if got.Status != StatusNoStripeData {
		t.Fatalf("status = %q, want %q", got.Status, StatusNoStripeData)
	}
}

func TestMatchRequiresQuantityAgreement(t *testing.T) {
	remote := &RemoteTransaction{
		PaymentIntentID: "pi_1",
		AmountCents:     3000,
		LineItems:       []RemoteLineItem{{Name: "T-shirt", Quantity: 3, AmountCents: 3000}},
	}
	order := completedOrder(1, 1, "pi_1", 3000,
		models.OrderItem{Name: "T-shirt", Quantity: 2, TotalCents: 3000})

	got := ClassifyOrder(order, remote, nil)
	if got.Status != StatusMismatch {
		t.Fatalf("status = %q, want %q", got.Status, StatusMismatch)
	}
}

// Scenario: user A matches a 3000-cent remote transaction, user B has
// 5000 cents with nothing on the ledger. The merged summary must sum
// the per-user results exactly.
func TestVerifyOrdersAggregation(t *testing.T) {
	ctx := context.Background()

	ledger := &fakeLedger{
		byPaymentIntent: map[string]*RemoteTransaction{
			"pi_a": {
				PaymentIntentID: "pi_a",
				UserID:          1,
				AmountCents:     3000,
				LineItems:       []RemoteLineItem{{Name: "T-shirt", Quantity: 2, AmountCents: 3000}},
			},
		},
	}

	userA := VerifyOrders(ctx, ledger, 1, []*models.Order{
		completedOrder(1, 1, "pi_a", 3000,
			models.OrderItem{Name: "T-shirt", Quantity: 2, TotalCents: 3000}),
	})
	userB := VerifyOrders(ctx, ledger, 2, []*models.Order{
		completedOrder(2, 2, "pi_b", 5000,
			models.OrderItem{Name: "Fighter Pass", Quantity: 1, TotalCents: 5000}),
	})

	if userA.Summary.MatchedOrders != 1 {
		t.Fatalf("user A matched = %d, want 1", userA.Summary.MatchedOrders)
	}
	if userB.Summary.NoStripeDataOrders != 1 {
		t.Fatalf("user B no_stripe_data = %d, want 1", userB.Summary.NoStripeDataOrders)
	}

	var total VerificationSummary
	total.merge(userA.Summary)
	total.merge(userB.Summary)

	if total.TotalOrders != 2 {
		t.Fatalf("total orders = %d, want 2", total.TotalOrders)
	}
	if total.MatchedOrders != 1 || total.NoStripeDataOrders != 1 {
		t.Fatalf("summary = %+v, want 1 matched and 1 no_stripe_data", total)
	}
	if total.MatchedOrders != userA.Summary.MatchedOrders+userB.Summary.MatchedOrders {
		t.Fatalf("merged matched diverges from per-user sum")
	}
}

// Pending orders never reach the ledger.
func TestPendingOrdersSkipRemoteLookup(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}

	result := VerifyOrders(ctx, ledger, 1, []*models.Order{
		{ID: 1, UserID: 1, Status: models.OrderStatusPending, PaymentIntentID: "pi_x", TotalCents: 100},
	})

	if ledger.calls != 0 {
		t.Fatalf("ledger consulted %d times for pending order, want 0", ledger.calls)
	}
	if result.Summary.PendingOrders != 1 {
		t.Fatalf("pending = %d, want 1", result.Summary.PendingOrders)
	}
}
