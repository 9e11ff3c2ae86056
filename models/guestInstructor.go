package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
)

type GuestInstructor struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	School    string    `gorm:"size:255" json:"school"`
	Bio       string    `gorm:"type:text" json:"bio"`
	PhotoUrl  string    `json:"photo_url"`
	Website   string    `gorm:"size:255" json:"website"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGuestInstructor struct {
	Name      string `json:"name" binding:"required"`
	School    string `json:"school"`
	Bio       string `json:"bio"`
	PhotoUrl  string `json:"photo_url"`
	Website   string `json:"website"`
	SortOrder int    `json:"sort_order"`
}

func CreateGuestInstructor(ctx context.Context, input *NewGuestInstructor) (*GuestInstructor, error) {

	if err := utils.ValidateUnique[GuestInstructor](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	instructor := GuestInstructor{
		Name:      input.Name,
		School:    input.School,
		Bio:       input.Bio,
		PhotoUrl:  input.PhotoUrl,
		Website:   input.Website,
		SortOrder: input.SortOrder,
		IsActive:  utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func UpdateGuestInstructor(ctx context.Context, id int, input *NewGuestInstructor) (*GuestInstructor, error) {

	if err := utils.ValidateUnique[GuestInstructor](ctx, "name", input.Name, id); err != nil {
		return nil, err
	}

	instructor, err := utils.FetchModel[GuestInstructor](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&instructor).Updates(map[string]interface{}{
		"Name":      input.Name,
		"School":    input.School,
		"Bio":       input.Bio,
		"PhotoUrl":  input.PhotoUrl,
		"Website":   input.Website,
		"SortOrder": input.SortOrder,
	}).Error
	if err != nil {
		return nil, err
	}
	return instructor, nil
}

func DeleteGuestInstructor(ctx context.Context, id int) (*GuestInstructor, error) {

	result, err := utils.FetchModel[GuestInstructor](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var linked int64
	err = db.WithContext(ctx).Table("activity_instructors").
		Where("guest_instructor_id = ?", id).Count(&linked).Error
	if err != nil {
		return nil, err
	}
	if linked > 0 {
		return nil, errors.New("instructor is assigned to activities")
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetGuestInstructor(ctx context.Context, id int) (*GuestInstructor, error) {
	return utils.FetchModel[GuestInstructor](ctx, id)
}

func GetGuestInstructors(ctx context.Context) ([]*GuestInstructor, error) {

	db := config.GetDB()
	var results []*GuestInstructor
	err := db.WithContext(ctx).Order("sort_order, name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
