package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
)

type Organizer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Role      string    `gorm:"size:100" json:"role"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	PhotoUrl  string    `json:"photo_url"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrganizer struct {
	Name      string `json:"name" binding:"required"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	PhotoUrl  string `json:"photo_url"`
	SortOrder int    `json:"sort_order"`
}

func (input *NewOrganizer) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Organizer](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	return nil
}

func CreateOrganizer(ctx context.Context, input *NewOrganizer) (*Organizer, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	organizer := Organizer{
		Name:      input.Name,
		Role:      input.Role,
		Email:     input.Email,
		Phone:     input.Phone,
		PhotoUrl:  input.PhotoUrl,
		SortOrder: input.SortOrder,
		IsActive:  utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&organizer).Error
	if err != nil {
		return nil, err
	}
	return &organizer, nil
}

func UpdateOrganizer(ctx context.Context, id int, input *NewOrganizer) (*Organizer, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	organizer, err := utils.FetchModel[Organizer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&organizer).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Role":      input.Role,
		"Email":     input.Email,
		"Phone":     input.Phone,
		"PhotoUrl":  input.PhotoUrl,
		"SortOrder": input.SortOrder,
	}).Error
	if err != nil {
		return nil, err
	}
	return organizer, nil
}

func DeleteOrganizer(ctx context.Context, id int) (*Organizer, error) {

	result, err := utils.FetchModel[Organizer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetOrganizer(ctx context.Context, id int) (*Organizer, error) {
	return utils.FetchModel[Organizer](ctx, id)
}

func GetOrganizers(ctx context.Context) ([]*Organizer, error) {

	db := config.GetDB()
	var results []*Organizer
	err := db.WithContext(ctx).Order("sort_order, name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
