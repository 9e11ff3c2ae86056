package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// Addon is a purchasable extra (lunch plan, merch bundle, gear rental).
type Addon struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description   string    `gorm:"type:text" json:"description"`
	PriceCents    int64     `gorm:"not null;default:0" json:"price_cents"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
	QuantitySold  int       `gorm:"not null;default:0" json:"quantity_sold"`
	ImageUrl      string    `json:"image_url"`
	StripePriceID string    `gorm:"size:100" json:"stripe_price_id"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAddon struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	Stock         int    `json:"stock"`
	ImageUrl      string `json:"image_url"`
	StripePriceID string `json:"stripe_price_id"`
}

func (input *NewAddon) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Addon](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	if input.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

func CreateAddon(ctx context.Context, input *NewAddon) (*Addon, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	addon := Addon{
		Name:          input.Name,
		Description:   input.Description,
		PriceCents:    input.PriceCents,
		Stock:         input.Stock,
		ImageUrl:      input.ImageUrl,
		StripePriceID: input.StripePriceID,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&addon).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Addon](); err != nil {
		return nil, err
	}
	return &addon, nil
}

func UpdateAddon(ctx context.Context, id int, input *NewAddon) (*Addon, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	addon, err := utils.FetchModel[Addon](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&addon).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Description":   input.Description,
		"PriceCents":    input.PriceCents,
		"Stock":         input.Stock,
		"ImageUrl":      input.ImageUrl,
		"StripePriceID": input.StripePriceID,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Addon](); err != nil {
		return nil, err
	}
	return addon, nil
}

func DeleteAddon(ctx context.Context, id int) (*Addon, error) {

	result, err := utils.FetchModel[Addon](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[AddonPurchase](ctx, "addon_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("addon has purchases")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Addon](); err != nil {
		return nil, err
	}
	return result, nil
}

func GetAddon(ctx context.Context, id int) (*Addon, error) {
	return utils.FetchModel[Addon](ctx, id)
}

func GetAddons(ctx context.Context, name *string) ([]*Addon, error) {

	filtered := name != nil && len(*name) > 0

	if !filtered {
		cached, err := utils.RetrieveRedisList[Addon]()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	var results []*Addon

	dbCtx := db.WithContext(ctx)
	if filtered {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}

	if !filtered {
		if err := utils.StoreRedisList[Addon](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AdjustAddonSold moves quantity_sold by delta inside tx.
func AdjustAddonSold(tx *gorm.DB, addonId int, delta int) error {
	result := tx.Model(&Addon{}).
		Where("id = ?", addonId).
		Where("quantity_sold + ? >= 0", delta).
		UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("addon sold counter update failed")
	}
	return nil
}
