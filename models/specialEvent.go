package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// SpecialEvent covers ticketed evening events (gala, tavern night).
type SpecialEvent struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description     string    `gorm:"type:text" json:"description"`
	Location        string    `gorm:"size:255" json:"location"`
	StartsAt        time.Time `json:"starts_at"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents"`
	Capacity        int       `gorm:"not null;default:0" json:"capacity"`
	RegisteredCount int       `gorm:"not null;default:0" json:"registered_count"`
	ImageUrl        string    `json:"image_url"`
	StripePriceID   string    `gorm:"size:100" json:"stripe_price_id"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSpecialEvent struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	StartsAt      time.Time `json:"starts_at"`
	PriceCents    int64     `json:"price_cents"`
	Capacity      int       `json:"capacity"`
	ImageUrl      string    `json:"image_url"`
	StripePriceID string    `json:"stripe_price_id"`
}

func (input *NewSpecialEvent) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[SpecialEvent](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func CreateSpecialEvent(ctx context.Context, input *NewSpecialEvent) (*SpecialEvent, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	event := SpecialEvent{
		Name:          input.Name,
		Description:   input.Description,
		Location:      input.Location,
		StartsAt:      input.StartsAt,
		PriceCents:    input.PriceCents,
		Capacity:      input.Capacity,
		ImageUrl:      input.ImageUrl,
		StripePriceID: input.StripePriceID,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&event).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[SpecialEvent](); err != nil {
		return nil, err
	}
	return &event, nil
}

func UpdateSpecialEvent(ctx context.Context, id int, input *NewSpecialEvent) (*SpecialEvent, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	event, err := utils.FetchModel[SpecialEvent](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Description":   input.Description,
		"Location":      input.Location,
		"StartsAt":      input.StartsAt,
		"PriceCents":    input.PriceCents,
		"Capacity":      input.Capacity,
		"ImageUrl":      input.ImageUrl,
		"StripePriceID": input.StripePriceID,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[SpecialEvent](); err != nil {
		return nil, err
	}
	return event, nil
}

func DeleteSpecialEvent(ctx context.Context, id int) (*SpecialEvent, error) {

	result, err := utils.FetchModel[SpecialEvent](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SpecialEventRegistration](ctx, "special_event_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("special event has registrations")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[SpecialEvent](); err != nil {
		return nil, err
	}
	return result, nil
}

func GetSpecialEvent(ctx context.Context, id int) (*SpecialEvent, error) {
	return utils.FetchModel[SpecialEvent](ctx, id)
}

func GetSpecialEvents(ctx context.Context, name *string) ([]*SpecialEvent, error) {

	filtered := name != nil && len(*name) > 0

	if !filtered {
		cached, err := utils.RetrieveRedisList[SpecialEvent]()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	var results []*SpecialEvent

	dbCtx := db.WithContext(ctx)
	if filtered {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("starts_at").Find(&results).Error
	if err != nil {
		return nil, err
	}

	if !filtered {
		if err := utils.StoreRedisList[SpecialEvent](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func AdjustSpecialEventCapacity(tx *gorm.DB, eventId int, delta int) error {
	result := tx.Model(&SpecialEvent{}).
		Where("id = ?", eventId).
		Where("registered_count + ? >= 0", delta).
		UpdateColumn("registered_count", gorm.Expr("registered_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("special event capacity counter update failed")
	}
	return nil
}
