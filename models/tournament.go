package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

type Tournament struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description     string    `gorm:"type:text" json:"description"`
	Weapon          string    `gorm:"size:100" json:"weapon"`
	Ruleset         string    `gorm:"size:100" json:"ruleset"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents"`
	Capacity        int       `gorm:"not null;default:0" json:"capacity"`
	RegisteredCount int       `gorm:"not null;default:0" json:"registered_count"`
	ImageUrl        string    `json:"image_url"`
	StripePriceID   string    `gorm:"size:100" json:"stripe_price_id"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTournament struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Weapon        string    `json:"weapon"`
	Ruleset       string    `json:"ruleset"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	PriceCents    int64     `json:"price_cents"`
	Capacity      int       `json:"capacity"`
	ImageUrl      string    `json:"image_url"`
	StripePriceID string    `json:"stripe_price_id"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewTournament) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Tournament](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	if input.Capacity < 0 {
		return errors.New("capacity must not be negative")
	}
	return nil
}

func CreateTournament(ctx context.Context, input *NewTournament) (*Tournament, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	tournament := Tournament{
		Name:          input.Name,
		Description:   input.Description,
		Weapon:        input.Weapon,
		Ruleset:       input.Ruleset,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
		PriceCents:    input.PriceCents,
		Capacity:      input.Capacity,
		ImageUrl:      input.ImageUrl,
		StripePriceID: input.StripePriceID,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&tournament).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Tournament](); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func UpdateTournament(ctx context.Context, id int, input *NewTournament) (*Tournament, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	tournament, err := utils.FetchModel[Tournament](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&tournament).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Description":   input.Description,
		"Weapon":        input.Weapon,
		"Ruleset":       input.Ruleset,
		"StartsAt":      input.StartsAt,
		"EndsAt":        input.EndsAt,
		"PriceCents":    input.PriceCents,
		"Capacity":      input.Capacity,
		"ImageUrl":      input.ImageUrl,
		"StripePriceID": input.StripePriceID,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Tournament](); err != nil {
		return nil, err
	}
	return tournament, nil
}

func DeleteTournament(ctx context.Context, id int) (*Tournament, error) {

	result, err := utils.FetchModel[Tournament](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[TournamentRegistration](ctx, "tournament_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("tournament has registrations")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Tournament](); err != nil {
		return nil, err
	}
	return result, nil
}

func GetTournament(ctx context.Context, id int) (*Tournament, error) {
	return utils.FetchModel[Tournament](ctx, id)
}

func GetTournaments(ctx context.Context, name *string) ([]*Tournament, error) {

	filtered := name != nil && len(*name) > 0

	// first try redis cache, unfiltered listings only
	if !filtered {
		cached, err := utils.RetrieveRedisList[Tournament]()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	var results []*Tournament

	dbCtx := db.WithContext(ctx)
	if filtered {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("starts_at").Find(&results).Error
	if err != nil {
		return nil, err
	}

	// caching the result
	if !filtered {
		if err := utils.StoreRedisList[Tournament](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AdjustTournamentCapacity moves registered_count by delta inside tx.
// delta +1 on registration, -1 on removal. Never drops below zero.
func AdjustTournamentCapacity(tx *gorm.DB, tournamentId int, delta int) error {
	result := tx.Model(&Tournament{}).
		Where("id = ?", tournamentId).
		Where("registered_count + ? >= 0", delta).
		UpdateColumn("registered_count", gorm.Expr("registered_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("tournament capacity counter update failed")
	}
	return nil
}
