package models

import (
	"context"
	"time"

	"github.com/cactuscup/admin_backend/config"
)

const (
	RunStatusQueued  = "queued"
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusPartial = "partial"
)

const (
	RunTriggeredManual = "manual"
	RunTriggeredQueued = "queued"
	RunTriggeredCLI    = "cli"
)

// ReconciliationRun is the persisted bookkeeping row for one bulk
// verification run, manual or queued through Pub/Sub.
type ReconciliationRun struct {
	ID                 uint       `gorm:"primary_key" json:"id"`
	Status             string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy        string     `gorm:"size:20" json:"triggered_by"`
	RequestedBy        string     `gorm:"size:100" json:"requested_by"`
	TotalUsers         int        `json:"total_users"`
	TotalOrders        int        `json:"total_orders"`
	MatchedOrders      int        `json:"matched_orders"`
	MismatchedOrders   int        `json:"mismatched_orders"`
	PendingOrders      int        `json:"pending_orders"`
	NoStripeDataOrders int        `json:"no_stripe_data_orders"`
	ErrorOrders        int        `json:"error_orders"`
	ErrorCount         int        `json:"error_count"`
	ReportUrl          string     `json:"report_url"`
	StartedAt          *time.Time `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at"`
	DurationMs         int64      `json:"duration_ms"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type ReconciliationRunError struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	RunId     uint      `gorm:"index;not null" json:"run_id"`
	UserID    int       `gorm:"index" json:"user_id"`
	OrderID   int       `gorm:"index" json:"order_id"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateReconciliationRun(ctx context.Context, triggeredBy, requestedBy string) (*ReconciliationRun, error) {
	run := ReconciliationRun{
		Status:      RunStatusQueued,
		TriggeredBy: triggeredBy,
		RequestedBy: requestedBy,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (run *ReconciliationRun) MarkRunning(ctx context.Context) error {
	now := time.Now().UTC()
	run.Status = RunStatusRunning
	run.StartedAt = &now
	db := config.GetDB()
	return db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"Status":    run.Status,
		"StartedAt": run.StartedAt,
	}).Error
}

// MarkFinished persists the final status and counters. Callers decide
// between success, partial and failed.
func (run *ReconciliationRun) MarkFinished(ctx context.Context, status string) error {
	now := time.Now().UTC()
	run.Status = status
	run.FinishedAt = &now
	if run.StartedAt != nil {
		run.DurationMs = now.Sub(*run.StartedAt).Milliseconds()
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"Status":             run.Status,
		"FinishedAt":         run.FinishedAt,
		"DurationMs":         run.DurationMs,
		"TotalUsers":         run.TotalUsers,
		"TotalOrders":        run.TotalOrders,
		"MatchedOrders":      run.MatchedOrders,
		"MismatchedOrders":   run.MismatchedOrders,
		"PendingOrders":      run.PendingOrders,
		"NoStripeDataOrders": run.NoStripeDataOrders,
		"ErrorOrders":        run.ErrorOrders,
		"ErrorCount":         run.ErrorCount,
		"ReportUrl":          run.ReportUrl,
	}).Error
}

func CreateRunError(ctx context.Context, runId uint, userID, orderID int, message string) error {
	runErr := ReconciliationRunError{
		RunId:   runId,
		UserID:  userID,
		OrderID: orderID,
		Message: message,
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&runErr).Error
}

func GetReconciliationRun(ctx context.Context, id uint) (*ReconciliationRun, error) {
	db := config.GetDB()
	var run ReconciliationRun
	if err := db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func GetReconciliationRuns(ctx context.Context, limit int) ([]*ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	db := config.GetDB()
	var runs []*ReconciliationRun
	err := db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func GetRunErrors(ctx context.Context, runId uint) ([]*ReconciliationRunError, error) {
	db := config.GetDB()
	var errs []*ReconciliationRunError
	err := db.WithContext(ctx).Where("run_id = ?", runId).Order("id").Find(&errs).Error
	return errs, err
}
