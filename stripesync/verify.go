package stripesync

import (
	"context"
	"fmt"
	"sort"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
)

const moduleName = "stripesync"

// ClassifyOrder assigns one verification status to an order given the
// outcome of the remote lookup. Pure so it is testable without a
// database or a live ledger.
//
//   - pending: the order has no terminal payment status yet; the ledger
//     is not consulted for classification.
//   - error: the remote lookup itself failed.
//   - no_stripe_data: terminal order, ledger has no record. Never
//     reported as mismatch.
//   - match: totals equal (integer cents) and line item name+quantity
//     multisets agree. Anything else is mismatch.
func ClassifyOrder(order *models.Order, remote *RemoteTransaction, lookupErr error) OrderVerification {
	result := OrderVerification{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		LocalCents:  order.TotalCents,
	}

	if !models.IsTerminalOrderStatus(order.Status) {
		result.Status = StatusPending
		return result
	}

	if lookupErr != nil {
		result.Status = StatusError
		result.Details = append(result.Details, lookupErr.Error())
		return result
	}

	if remote == nil {
		result.Status = StatusNoStripeData
		return result
	}

	result.Remote = remote
	result.RemoteCents = remote.AmountCents

	details := compareOrder(order, remote)
	if len(details) == 0 {
		result.Status = StatusMatch
	} else {
		result.Status = StatusMismatch
		result.Details = details
	}
	return result
}

// compareOrder returns one detail line per discrepancy; empty means match.
func compareOrder(order *models.Order, remote *RemoteTransaction) []string {
	var details []string

	if order.TotalCents != remote.AmountCents {
		details = append(details,
			fmt.Sprintf("total mismatch: local %d cents, remote %d cents", order.TotalCents, remote.AmountCents))
	}

	localSet := itemMultiset(order)
	remoteSet := make(map[string]int64, len(remote.LineItems))
	for _, li := range remote.LineItems {
		remoteSet[itemKey(li.Name, li.Quantity)] += li.Quantity
	}

	for key, qty := range localSet {
		if remoteSet[key] != qty {
			details = append(details, fmt.Sprintf("local item not on ledger: %s", key))
		}
	}
	for key, qty := range remoteSet {
		if localSet[key] != qty {
			details = append(details, fmt.Sprintf("ledger item not in order: %s", key))
		}
	}

	sort.Strings(details)
	return details
}

func itemMultiset(order *models.Order) map[string]int64 {
	set := make(map[string]int64, len(order.Items))
	for _, item := range order.Items {
		set[itemKey(item.Name, int64(item.Quantity))] += int64(item.Quantity)
	}
	return set
}

func itemKey(name string, quantity int64) string {
	return fmt.Sprintf("%s x%d", name, quantity)
}

// matchTransaction finds the remote transaction belonging to an order,
// by payment intent first, then checkout session.
func matchTransaction(order *models.Order, txns []*RemoteTransaction) *RemoteTransaction {
	if order.PaymentIntentID != "" {
		for _, txn := range txns {
			if txn.PaymentIntentID == order.PaymentIntentID {
				return txn
			}
		}
	}
	if order.CheckoutSessionID != "" {
		for _, txn := range txns {
			if txn.SessionID == order.CheckoutSessionID {
				return txn
			}
		}
	}
	return nil
}

// VerifyOrders classifies a slice of orders against the ledger. Pure
// over its inputs apart from per-order remote lookups.
func VerifyOrders(ctx context.Context, ledger LedgerSource, userID int, orders []*models.Order) UserVerification {
	result := UserVerification{UserID: userID}

	for _, order := range orders {
		var remote *RemoteTransaction
		var lookupErr error
		// pending orders skip the remote lookup entirely
		if models.IsTerminalOrderStatus(order.Status) {
			remote, lookupErr = ledger.TransactionForOrder(ctx, order)
		}
		verification := ClassifyOrder(order, remote, lookupErr)
		result.Orders = append(result.Orders, verification)
		result.Summary.add(verification.Status)
	}
	return result
}

// VerifyUserOrders fetches the user's orders and classifies each one.
// Read-only; no repair side effects.
func VerifyUserOrders(ctx context.Context, ledger LedgerSource, userID int) (*UserVerification, error) {
	orders, err := models.GetOrdersForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := VerifyOrders(ctx, ledger, userID, orders)
	return &result, nil
}

// ProgressFunc receives progress after each user in a bulk run.
type ProgressFunc func(BulkProgress)

// BulkVerifyOrders verifies every user with at least one order,
// strictly sequentially. One user's failure is recorded as error
// results for that user's orders and never aborts the remaining users.
func BulkVerifyOrders(ctx context.Context, ledger LedgerSource, progressFn ProgressFunc) (*BulkVerificationResult, error) {
	logger := config.GetLogger()

	userIDs, err := models.GetOrderUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &BulkVerificationResult{TotalUsers: len(userIDs)}

	for i, userID := range userIDs {
		userResult, err := VerifyUserOrders(ctx, ledger, userID)
		if err != nil {
			// isolate the failure: report this user's orders as errors
			config.LogError(logger, moduleName, "BulkVerifyOrders", "verify user", userID, err)
			userResult = &UserVerification{UserID: userID}
			orders, fetchErr := models.GetOrdersForUser(ctx, userID)
			if fetchErr == nil {
				for _, order := range orders {
					verification := ClassifyOrder(order, nil, err)
					userResult.Orders = append(userResult.Orders, verification)
					userResult.Summary.add(verification.Status)
				}
			}
		}

		result.Users = append(result.Users, *userResult)
		result.Summary.merge(userResult.Summary)

		if progressFn != nil {
			progressFn(BulkProgress{
				UsersProcessed: i + 1,
				TotalUsers:     len(userIDs),
				CurrentUserID:  userID,
			})
		}
	}

	return result, nil
}
