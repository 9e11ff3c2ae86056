package stripesync

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cactuscup/admin_backend/models"
	"github.com/stripe/stripe-go/v83"
)

// StripeLedger reads the payment processor's records through the Stripe
// API. Calls are throttled through a shared tick so bulk operations do
// not hammer the API; this mirrors the deliberately sequential design of
// the admin tooling.
type StripeLedger struct {
	sc      *stripe.Client
	limiter <-chan time.Time
}

var _ LedgerSource = (*StripeLedger)(nil)
var _ Refunder = (*StripeLedger)(nil)

func NewStripeLedger() (*StripeLedger, error) {
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	rps := 5
	if v := os.Getenv("STRIPE_REQUESTS_PER_SECOND"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			rps = parsed
		}
	}

	return &StripeLedger{
		sc:      stripe.NewClient(apiKey),
		limiter: time.Tick(time.Second / time.Duration(rps)),
	}, nil
}

func (l *StripeLedger) wait() {
	<-l.limiter
}

func (l *StripeLedger) TransactionForOrder(ctx context.Context, order *models.Order) (*RemoteTransaction, error) {
	if order.CheckoutSessionID != "" {
		return l.transactionBySession(ctx, order.CheckoutSessionID)
	}
	if order.PaymentIntentID != "" {
		return l.transactionByPaymentIntent(ctx, order.PaymentIntentID)
	}
	return nil, nil
}

func (l *StripeLedger) transactionBySession(ctx context.Context, sessionID string) (*RemoteTransaction, error) {
	l.wait()
	session, err := l.sc.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("stripe session lookup failed: %w", err)
	}
	return l.buildTransaction(ctx, session)
}

func (l *StripeLedger) transactionByPaymentIntent(ctx context.Context, paymentIntentID string) (*RemoteTransaction, error) {
	l.wait()
	params := &stripe.CheckoutSessionListParams{}
	params.PaymentIntent = stripe.String(paymentIntentID)
	for session, err := range l.sc.V1CheckoutSessions.List(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("stripe session list failed: %w", err)
		}
		return l.buildTransaction(ctx, session)
	}
	return nil, nil
}

func (l *StripeLedger) TransactionsForUser(ctx context.Context, userID int) ([]*RemoteTransaction, error) {
	all, err := l.AllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	var results []*RemoteTransaction
	for _, txn := range all {
		if txn.UserID == userID {
			results = append(results, txn)
		}
	}
	return results, nil
}

func (l *StripeLedger) AllTransactions(ctx context.Context) ([]*RemoteTransaction, error) {
	l.wait()
	var results []*RemoteTransaction
	params := &stripe.CheckoutSessionListParams{}
	params.Status = stripe.String(string(stripe.CheckoutSessionStatusComplete))
	for session, err := range l.sc.V1CheckoutSessions.List(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("stripe session list failed: %w", err)
		}
		txn, err := l.buildTransaction(ctx, session)
		if err != nil {
			return nil, err
		}
		results = append(results, txn)
	}
	return results, nil
}

// buildTransaction projects a checkout session plus its line items into
// the comparator's shape, validating at the boundary.
func (l *StripeLedger) buildTransaction(ctx context.Context, session *stripe.CheckoutSession) (*RemoteTransaction, error) {
	txn := &RemoteTransaction{
		SessionID:   session.ID,
		Status:      string(session.Status),
		AmountCents: session.AmountTotal,
		Currency:    string(session.Currency),
		CreatedAt:   session.Created,
	}
	if session.PaymentIntent != nil {
		txn.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil {
		txn.CustomerEmail = session.CustomerDetails.Email
	}
	if userID, ok := session.Metadata["user_id"]; ok {
		if parsed, err := strconv.Atoi(userID); err == nil {
			txn.UserID = parsed
		}
	}

	l.wait()
	lineParams := &stripe.CheckoutSessionListLineItemsParams{}
	lineParams.Session = stripe.String(session.ID)
	for item, err := range l.sc.V1CheckoutSessions.ListLineItems(ctx, lineParams) {
		if err != nil {
			return nil, fmt.Errorf("stripe line item list failed: %w", err)
		}
		txn.LineItems = append(txn.LineItems, RemoteLineItem{
			Name:        item.Description,
			Quantity:    item.Quantity,
			AmountCents: item.AmountTotal,
		})
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	return txn, nil
}

func (l *StripeLedger) Refund(ctx context.Context, paymentIntentID string, amountCents *int64, reason string) (*RefundResult, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("payment intent id is required")
	}

	l.wait()
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if amountCents != nil {
		params.Amount = stripe.Int64(*amountCents)
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}

	refund, err := l.sc.V1Refunds.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}

	return &RefundResult{
		Success:     true,
		RefundID:    refund.ID,
		AmountCents: refund.Amount,
		Status:      string(refund.Status),
	}, nil
}
