package utils

import (
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func openDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestApplyPreloadsRegistersEveryAssociation(t *testing.T) {
	db := openDryRunDB(t)

	dbCtx := applyPreloads(db, []string{"Items", "Instructors"})

	if got := len(dbCtx.Statement.Preloads); got != 2 {
		t.Fatalf("registered preloads = %d, want 2 (%v)", got, dbCtx.Statement.Preloads)
	}
	for _, assoc := range []string{"Items", "Instructors"} {
		if _, ok := dbCtx.Statement.Preloads[assoc]; !ok {
			t.Errorf("association %q not registered on the returned builder", assoc)
		}
	}
}

func TestApplyPreloadsNoAssociations(t *testing.T) {
	db := openDryRunDB(t)

	dbCtx := applyPreloads(db, nil)

	if got := len(dbCtx.Statement.Preloads); got != 0 {
		t.Fatalf("registered preloads = %d, want 0", got)
	}
}
