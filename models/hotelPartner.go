package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
)

type HotelPartner struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Address     string    `gorm:"size:255" json:"address"`
	Phone       string    `gorm:"size:20" json:"phone"`
	BookingUrl  string    `gorm:"size:255" json:"booking_url"`
	BookingCode string    `gorm:"size:100" json:"booking_code"`
	RateCents   int64     `gorm:"not null;default:0" json:"rate_cents"`
	Notes       string    `gorm:"type:text" json:"notes"`
	ImageUrl    string    `json:"image_url"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHotelPartner struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	BookingUrl  string `json:"booking_url"`
	BookingCode string `json:"booking_code"`
	RateCents   int64  `json:"rate_cents"`
	Notes       string `json:"notes"`
	ImageUrl    string `json:"image_url"`
}

func (input *NewHotelPartner) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[HotelPartner](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.RateCents < 0 {
		return errors.New("rate must not be negative")
	}
	return nil
}

func CreateHotelPartner(ctx context.Context, input *NewHotelPartner) (*HotelPartner, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hotel := HotelPartner{
		Name:        input.Name,
		Address:     input.Address,
		Phone:       input.Phone,
		BookingUrl:  input.BookingUrl,
		BookingCode: input.BookingCode,
		RateCents:   input.RateCents,
		Notes:       input.Notes,
		ImageUrl:    input.ImageUrl,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&hotel).Error
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func UpdateHotelPartner(ctx context.Context, id int, input *NewHotelPartner) (*HotelPartner, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	hotel, err := utils.FetchModel[HotelPartner](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&hotel).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Address":     input.Address,
		"Phone":       input.Phone,
		"BookingUrl":  input.BookingUrl,
		"BookingCode": input.BookingCode,
		"RateCents":   input.RateCents,
		"Notes":       input.Notes,
		"ImageUrl":    input.ImageUrl,
	}).Error
	if err != nil {
		return nil, err
	}
	return hotel, nil
}

func DeleteHotelPartner(ctx context.Context, id int) (*HotelPartner, error) {

	result, err := utils.FetchModel[HotelPartner](ctx, id)
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

func GetHotelPartner(ctx context.Context, id int) (*HotelPartner, error) {
	return utils.FetchModel[HotelPartner](ctx, id)
}

func GetHotelPartners(ctx context.Context) ([]*HotelPartner, error) {

	db := config.GetDB()
	var results []*HotelPartner
	err := db.WithContext(ctx).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
