package models

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder captures the SQL gorm generates under DryRun.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func TestRecalculateOrderTotalSumsRemainingItems(t *testing.T) {
	rec := &sqlRecorder{}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true, Logger: rec})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	if err := RecalculateOrderTotal(db, 42); err != nil {
		t.Fatalf("RecalculateOrderTotal: %v", err)
	}

	if len(rec.statements) == 0 {
		t.Fatal("no statement generated")
	}
	sql := rec.statements[len(rec.statements)-1]
	if !strings.Contains(sql, "UPDATE") || !strings.Contains(sql, "total_cents") {
		t.Fatalf("unexpected statement: %q", sql)
	}
	if !strings.Contains(sql, "COALESCE(SUM(total_cents), 0)") {
		t.Fatalf("total not derived from item sum: %q", sql)
	}
	if !strings.Contains(sql, "order_items") {
		t.Fatalf("total not derived from order items: %q", sql)
	}
}
