package stripesync

import (
	"context"
	"errors"
	"testing"
)

type fakeRefunder struct {
	calls     int
	gotIntent string
	gotAmount *int64
	gotReason string
	result    *RefundResult
	err       error
}

func (f *fakeRefunder) Refund(ctx context.Context, paymentIntentID string, amountCents *int64, reason string) (*RefundResult, error) {
	f.calls++
	f.gotIntent = paymentIntentID
	f.gotAmount = amountCents
	f.gotReason = reason
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestApplyRefundSkippedWhenNotRequested(t *testing.T) {
	refunder := &fakeRefunder{}
	result := &RemoveRegistrationResult{Removed: true}

	applyRefund(context.Background(), refunder, &RemoveRegistrationInput{Refund: false}, "pi_1", 4000, result)

	if refunder.calls != 0 {
		t.Fatalf("refunder invoked %d times, want 0", refunder.calls)
	}
	if result.RefundError != "" || result.Refunded {
		t.Fatalf("result = %+v, want untouched", result)
	}
}

func TestApplyRefundUsesRecordedAmount(t *testing.T) {
	refunder := &fakeRefunder{result: &RefundResult{Success: true, RefundID: "re_1", AmountCents: 4000, Status: "succeeded"}}
	result := &RemoveRegistrationResult{Removed: true}

	applyRefund(context.Background(), refunder, &RemoveRegistrationInput{Refund: true, Reason: "duplicate entry"}, "pi_1", 4000, result)

	if refunder.calls != 1 {
		t.Fatalf("refunder invoked %d times, want 1", refunder.calls)
	}
	if refunder.gotIntent != "pi_1" {
		t.Fatalf("payment intent = %q, want pi_1", refunder.gotIntent)
	}
	if refunder.gotAmount == nil || *refunder.gotAmount != 4000 {
		t.Fatalf("amount = %v, want 4000", refunder.gotAmount)
	}
	if refunder.gotReason != "duplicate entry" {
		t.Fatalf("reason = %q", refunder.gotReason)
	}
	if !result.Refunded || result.Refund == nil || result.Refund.RefundID != "re_1" {
		t.Fatalf("result = %+v", result)
	}
	if result.PartialSuccess() {
		t.Fatal("clean refund reported as partial success")
	}
}

func TestApplyRefundPartialAmountOverride(t *testing.T) {
	override := int64(1500)
	refunder := &fakeRefunder{result: &RefundResult{Success: true, AmountCents: 1500}}
	result := &RemoveRegistrationResult{Removed: true}

	applyRefund(context.Background(), refunder, &RemoveRegistrationInput{Refund: true, AmountCents: &override}, "pi_1", 4000, result)

	if refunder.gotAmount == nil || *refunder.gotAmount != 1500 {
		t.Fatalf("amount = %v, want override 1500", refunder.gotAmount)
	}
}

// A failed refund after the row is gone must surface as a partial
// success, never as a rollback.
func TestApplyRefundFailureIsPartialSuccess(t *testing.T) {
	refunder := &fakeRefunder{err: errors.New("stripe: charge already refunded")}
	result := &RemoveRegistrationResult{Removed: true, ItemsRemoved: 1}

	applyRefund(context.Background(), refunder, &RemoveRegistrationInput{Refund: true}, "pi_1", 4000, result)

	if !result.Removed {
		t.Fatal("removal flag lost")
	}
	if result.Refunded {
		t.Fatal("failed refund marked refunded")
	}
	if result.RefundError == "" {
		t.Fatal("refund error not recorded")
	}
	if !result.PartialSuccess() {
		t.Fatal("partial success not reported")
	}
}

func TestApplyRefundWithoutPaymentIntent(t *testing.T) {
	refunder := &fakeRefunder{}
	result := &RemoveRegistrationResult{Removed: true}

	applyRefund(context.Background(), refunder, &RemoveRegistrationInput{Refund: true}, "", 4000, result)

	if refunder.calls != 0 {
		t.Fatalf("refunder invoked %d times, want 0", refunder.calls)
	}
	if result.RefundError == "" {
		t.Fatal("missing payment intent not reported")
	}
}

func TestProcessAdminRefundValidation(t *testing.T) {
	refunder := &fakeRefunder{result: &RefundResult{Success: true}}

	if _, err := ProcessAdminRefund(context.Background(), refunder, &AdminRefundInput{}); err == nil {
		t.Fatal("empty payment intent accepted")
	}

	bad := int64(0)
	if _, err := ProcessAdminRefund(context.Background(), refunder, &AdminRefundInput{PaymentIntentID: "pi_1", AmountCents: &bad}); err == nil {
		t.Fatal("non-positive amount accepted")
	}
	if refunder.calls != 0 {
		t.Fatalf("refunder invoked %d times during validation, want 0", refunder.calls)
	}

	amount := int64(2500)
	refund, err := ProcessAdminRefund(context.Background(), refunder, &AdminRefundInput{PaymentIntentID: "pi_1", AmountCents: &amount, Reason: "goodwill"})
	if err != nil {
		t.Fatalf("valid refund rejected: %v", err)
	}
	if refund == nil || !refund.Success {
		t.Fatalf("refund = %+v", refund)
	}
}
