package stripesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cactuscup/admin_backend/models"
)

// verification statuses assigned to each order
const (
	StatusMatch        = "match"
	StatusMismatch     = "mismatch"
	StatusPending      = "pending"
	StatusNoStripeData = "no_stripe_data"
	StatusError        = "error"
)

// sync issue kinds
const (
	IssueMissingRegistration  = "missing_registration"
	IssueOrphanedRegistration = "orphaned_registration"
	IssueMissingAddonLink     = "missing_addon_link"
)

// RemoteTransaction is a read-only projection of a Stripe checkout
// session / payment intent. Never persisted; fetched on demand.
type RemoteTransaction struct {
	SessionID       string           `json:"session_id"`
	PaymentIntentID string           `json:"payment_intent_id"`
	UserID          int              `json:"user_id"`
	CustomerEmail   string           `json:"customer_email"`
	Status          string           `json:"status"`
	AmountCents     int64            `json:"amount_cents"`
	Currency        string           `json:"currency"`
	LineItems       []RemoteLineItem `json:"line_items"`
	CreatedAt       int64            `json:"created_at"`
}

type RemoteLineItem struct {
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
}

// Validate rejects shapes the comparator cannot reason about. A failed
// validation is reported as status "error", never silently skipped.
func (t *RemoteTransaction) Validate() error {
	if t.SessionID == "" && t.PaymentIntentID == "" {
		return errors.New("remote transaction has no session or payment intent id")
	}
	if t.AmountCents < 0 {
		return fmt.Errorf("remote transaction %s has negative amount", t.ref())
	}
	for i, li := range t.LineItems {
		if li.Name == "" {
			return fmt.Errorf("remote transaction %s line item %d has no name", t.ref(), i)
		}
		if li.Quantity <= 0 {
			return fmt.Errorf("remote transaction %s line item %q has non-positive quantity", t.ref(), li.Name)
		}
		if li.AmountCents < 0 {
			return fmt.Errorf("remote transaction %s line item %q has negative amount", t.ref(), li.Name)
		}
	}
	return nil
}

func (t *RemoteTransaction) ref() string {
	if t.SessionID != "" {
		return t.SessionID
	}
	return t.PaymentIntentID
}

// ParseRemoteTransaction decodes and validates a raw ledger payload.
func ParseRemoteTransaction(raw json.RawMessage) (*RemoteTransaction, error) {
	var txn RemoteTransaction
	if err := json.Unmarshal(raw, &txn); err != nil {
		return nil, fmt.Errorf("unparseable remote transaction: %w", err)
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	return &txn, nil
}

// LedgerSource abstracts the payment processor's records so verification
// and repair are testable with fakes.
type LedgerSource interface {
	// TransactionForOrder resolves the remote transaction referenced by the
	// order's payment intent / checkout session ids. Returns (nil, nil)
	// when the ledger has no record.
	TransactionForOrder(ctx context.Context, order *models.Order) (*RemoteTransaction, error)
	// TransactionsForUser returns every remote transaction attributable to
	// the user.
	TransactionsForUser(ctx context.Context, userID int) ([]*RemoteTransaction, error)
	// AllTransactions returns every completed remote transaction.
	AllTransactions(ctx context.Context) ([]*RemoteTransaction, error)
}

type RefundResult struct {
	Success     bool   `json:"success"`
	RefundID    string `json:"refund_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Refunder issues refunds against the payment processor.
type Refunder interface {
	Refund(ctx context.Context, paymentIntentID string, amountCents *int64, reason string) (*RefundResult, error)
}

// OrderVerification is the per-order comparator result.
type OrderVerification struct {
	OrderID     int                `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      int                `json:"user_id"`
	Status      string             `json:"status"`
	LocalCents  int64              `json:"local_cents"`
	RemoteCents int64              `json:"remote_cents"`
	Details     []string           `json:"details,omitempty"`
	Remote      *RemoteTransaction `json:"remote,omitempty"`
}

// VerificationSummary aggregates per-order results.
type VerificationSummary struct {
	TotalOrders        int `json:"total_orders"`
	MatchedOrders      int `json:"matched_orders"`
	MismatchedOrders   int `json:"mismatched_orders"`
	PendingOrders      int `json:"pending_orders"`
	NoStripeDataOrders int `json:"no_stripe_data_orders"`
	ErrorOrders        int `json:"error_orders"`
}

func (s *VerificationSummary) add(status string) {
	s.TotalOrders++
	switch status {
	case StatusMatch:
		s.MatchedOrders++
	case StatusMismatch:
		s.MismatchedOrders++
	case StatusPending:
		s.PendingOrders++
	case StatusNoStripeData:
		s.NoStripeDataOrders++
	case StatusError:
		s.ErrorOrders++
	}
}

func (s *VerificationSummary) merge(other VerificationSummary) {
	s.TotalOrders += other.TotalOrders
	s.MatchedOrders += other.MatchedOrders
	s.MismatchedOrders += other.MismatchedOrders
	s.PendingOrders += other.PendingOrders
	s.NoStripeDataOrders += other.NoStripeDataOrders
	s.ErrorOrders += other.ErrorOrders
}

// UserVerification is the per-user verification report.
type UserVerification struct {
	UserID  int                 `json:"user_id"`
	Summary VerificationSummary `json:"summary"`
	Orders  []OrderVerification `json:"orders"`
}

// BulkProgress is delivered to the progress callback after each user.
type BulkProgress struct {
	UsersProcessed int `json:"users_processed"`
	TotalUsers     int `json:"total_users"`
	CurrentUserID  int `json:"current_user_id"`
}

// BulkVerificationResult aggregates per-user results into a global summary.
type BulkVerificationResult struct {
	TotalUsers int                 `json:"total_users"`
	Summary    VerificationSummary `json:"summary"`
	Users      []UserVerification  `json:"users"`
}

// SyncIssue is derived, never persisted.
type SyncIssue struct {
	IssueType   string `json:"issue_type"`
	ItemType    string `json:"item_type"`
	ItemName    string `json:"item_name"`
	OrderItemID int    `json:"order_item_id,omitempty"`
	UserID      int    `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
}
