package stripesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cactuscup-admin")

// RunPubSubPayload is published when a bulk reconciliation run is
// queued and delivered back through the Pub/Sub push endpoint.
type RunPubSubPayload struct {
	RunId uint `json:"run_id"`
}

const bulkRunLockKey = "lock:reconciliation-run"

// RunProgressKey is the redis key live bulk-run progress is published
// under while the run executes.
func RunProgressKey(runId uint) string {
	return fmt.Sprintf("ReconciliationRun:Progress:%d", runId)
}

// QueueBulkRun creates the bookkeeping row and publishes the run.
func QueueBulkRun(ctx context.Context, requestedBy string) (*models.ReconciliationRun, error) {
	run, err := models.CreateReconciliationRun(ctx, models.RunTriggeredQueued, requestedBy)
	if err != nil {
		return nil, err
	}

	payload := RunPubSubPayload{RunId: run.ID}
	if _, err := config.PublishReconciliationRun(ctx, payload); err != nil {
		run.MarkFinished(ctx, models.RunStatusFailed)
		return nil, err
	}
	return run, nil
}

// ProcessQueuedRun executes one queued bulk verification run. A redis
// lock keeps concurrent Pub/Sub redeliveries from running the same
// verification twice; losing the lock is not an error, the message is
// simply acked.
func ProcessQueuedRun(ctx context.Context, ledger LedgerSource, payload json.RawMessage) error {
	var runPayload RunPubSubPayload
	if err := json.Unmarshal(payload, &runPayload); err != nil {
		return err
	}
	if runPayload.RunId == 0 {
		return errors.New("invalid payload")
	}

	locker := config.GetRedisLock()
	lock, err := locker.Obtain(ctx, bulkRunLockKey, 30*time.Minute, nil)
	if err == redislock.ErrNotObtained {
		return nil
	}
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	run, err := models.GetReconciliationRun(ctx, runPayload.RunId)
	if err != nil {
		return err
	}
	// redelivery of a finished run
	if run.Status != models.RunStatusQueued {
		return nil
	}

	return ExecuteRun(ctx, ledger, run)
}

// ExecuteRun drives a bulk verification, persisting counters, errors
// and the exported report against the run row.
func ExecuteRun(ctx context.Context, ledger LedgerSource, run *models.ReconciliationRun) error {
	logger := config.GetLogger()

	ctx, span := tracer.Start(ctx, "stripesync.ExecuteRun")
	defer span.End()

	if err := run.MarkRunning(ctx); err != nil {
		return err
	}

	result, err := BulkVerifyOrders(ctx, ledger, func(progress BulkProgress) {
		logger.WithField("run_id", run.ID).
			WithField("users_processed", progress.UsersProcessed).
			WithField("total_users", progress.TotalUsers).
			Info("bulk verification progress")
		// best effort, polled by the run detail endpoint
		value := fmt.Sprintf("%d/%d", progress.UsersProcessed, progress.TotalUsers)
		if err := config.SetRedisValue(RunProgressKey(run.ID), value, time.Hour); err != nil {
			config.LogError(logger, moduleName, "ExecuteRun", "publish progress", run.ID, err)
		}
	})
	if err != nil {
		config.LogError(logger, moduleName, "ExecuteRun", "bulk verify", run.ID, err)
		run.ErrorCount++
		return run.MarkFinished(ctx, models.RunStatusFailed)
	}

	run.TotalUsers = result.TotalUsers
	run.TotalOrders = result.Summary.TotalOrders
	run.MatchedOrders = result.Summary.MatchedOrders
	run.MismatchedOrders = result.Summary.MismatchedOrders
	run.PendingOrders = result.Summary.PendingOrders
	run.NoStripeDataOrders = result.Summary.NoStripeDataOrders
	run.ErrorOrders = result.Summary.ErrorOrders

	for _, user := range result.Users {
		for _, order := range user.Orders {
			if order.Status != StatusError {
				continue
			}
			run.ErrorCount++
			message := "remote lookup failed"
			if len(order.Details) > 0 {
				message = order.Details[0]
			}
			if err := models.CreateRunError(ctx, run.ID, user.UserID, order.OrderID, message); err != nil {
				config.LogError(logger, moduleName, "ExecuteRun", "persist run error", order.OrderID, err)
			}
		}
	}

	reportUrl, err := ExportVerificationReport(ctx, result)
	if err != nil {
		// report export failure downgrades, never fails the run
		config.LogError(logger, moduleName, "ExecuteRun", "export report", run.ID, err)
	} else {
		run.ReportUrl = reportUrl
	}

	status := models.RunStatusSuccess
	if run.ErrorCount > 0 {
		status = models.RunStatusPartial
	}
	if err := config.RemoveRedisKey(RunProgressKey(run.ID)); err != nil {
		config.LogError(logger, moduleName, "ExecuteRun", "clear progress", run.ID, err)
	}
	return run.MarkFinished(ctx, status)
}
