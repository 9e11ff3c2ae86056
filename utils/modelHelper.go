package utils

import (
	"context"

	"gorm.io/gorm"

	"github.com/cactuscup/admin_backend/config"
)

/* DB fetching */

// applyPreloads registers association preloads on the session.
// Preload clones the builder, so the chain is reassigned.
func applyPreloads(dbCtx *gorm.DB, associations []string) *gorm.DB {
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	return dbCtx
}

// fetch model from db
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := applyPreloads(db.WithContext(ctx), associations)
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// fetch all models from db
func FetchAllModels[T any](ctx context.Context, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := applyPreloads(db.WithContext(ctx), associations)
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return results, nil
}

// fetch all models matching condition
func FetchModelsWhere[T any](ctx context.Context, condition string, values ...interface{}) ([]*T, error) {

	db := config.GetDB()
	var results []*T
	err := db.WithContext(ctx).Where(condition, values...).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
