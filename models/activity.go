package models

import (
	"context"
	"errors"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// Activity is a non-competitive bookable slot (workshops, sparring blocks).
type Activity struct {
	ID              int               `gorm:"primary_key" json:"id"`
	Name            string            `gorm:"size:255;not null" json:"name" binding:"required"`
	Description     string            `gorm:"type:text" json:"description"`
	Location        string            `gorm:"size:255" json:"location"`
	StartsAt        time.Time         `json:"starts_at"`
	EndsAt          time.Time         `json:"ends_at"`
	PriceCents      int64             `gorm:"not null;default:0" json:"price_cents"`
	Capacity        int               `gorm:"not null;default:0" json:"capacity"`
	RegisteredCount int               `gorm:"not null;default:0" json:"registered_count"`
	ImageUrl        string            `json:"image_url"`
	StripePriceID   string            `gorm:"size:100" json:"stripe_price_id"`
	Instructors     []GuestInstructor `gorm:"many2many:activity_instructors" json:"instructors"`
	IsActive        *bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewActivity struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	PriceCents    int64     `json:"price_cents"`
	Capacity      int       `json:"capacity"`
	ImageUrl      string    `json:"image_url"`
	StripePriceID string    `json:"stripe_price_id"`
	InstructorIds []int     `json:"instructor_ids"`
}

// check all referenced instructors exist
func mapActivityInstructorInput(ctx context.Context, ids []int) ([]GuestInstructor, error) {
	instructors := make([]GuestInstructor, 0, len(ids))
	if len(ids) == 0 {
		return instructors, nil
	}
	for _, id := range ids {
		instructors = append(instructors, GuestInstructor{ID: id})
	}
	if err := utils.ValidateResourcesId[GuestInstructor](ctx, ids); err != nil {
		return nil, errors.New("instructor not found")
	}
	return instructors, nil
}

func (input *NewActivity) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Activity](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func CreateActivity(ctx context.Context, input *NewActivity) (*Activity, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	instructors, err := mapActivityInstructorInput(ctx, input.InstructorIds)
	if err != nil {
		return nil, err
	}

	activity := Activity{
		Name:          input.Name,
		Description:   input.Description,
		Location:      input.Location,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
		PriceCents:    input.PriceCents,
		Capacity:      input.Capacity,
		ImageUrl:      input.ImageUrl,
		StripePriceID: input.StripePriceID,
		Instructors:   instructors,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Create(&activity).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Activity](); err != nil {
		return nil, err
	}
	return &activity, nil
}

func UpdateActivity(ctx context.Context, id int, input *NewActivity) (*Activity, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	activity, err := utils.FetchModel[Activity](ctx, id)
	if err != nil {
		return nil, err
	}

	instructors, err := mapActivityInstructorInput(ctx, input.InstructorIds)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&activity).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Description":   input.Description,
		"Location":      input.Location,
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
	if err := db.WithContext(ctx).Model(activity).Association("Instructors").Replace(&instructors); err != nil {
		return nil, err
	}
	activity.Instructors = instructors
	if err := utils.RemoveRedisList[Activity](); err != nil {
		return nil, err
	}
	return activity, nil
}

func DeleteActivity(ctx context.Context, id int) (*Activity, error) {

	result, err := utils.FetchModel[Activity](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[ActivityRegistration](ctx, "activity_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("activity has registrations")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).Association("Instructors").Clear(); err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Activity](); err != nil {
		return nil, err
	}
	return result, nil
}

func GetActivity(ctx context.Context, id int) (*Activity, error) {
	db := config.GetDB()
	var result Activity
	err := db.WithContext(ctx).Preload("Instructors").First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func GetActivities(ctx context.Context, name *string) ([]*Activity, error) {

	filtered := name != nil && len(*name) > 0

	if !filtered {
		cached, err := utils.RetrieveRedisList[Activity]()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	var results []*Activity

	dbCtx := db.WithContext(ctx).Preload("Instructors")
	if filtered {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("starts_at").Find(&results).Error
	if err != nil {
		return nil, err
	}

	if !filtered {
		if err := utils.StoreRedisList[Activity](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func AdjustActivityCapacity(tx *gorm.DB, activityId int, delta int) error {
	result := tx.Model(&Activity{}).
		Where("id = ?", activityId).
		Where("registered_count + ? >= 0", delta).
		UpdateColumn("registered_count", gorm.Expr("registered_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("activity capacity counter update failed")
	}
	return nil
}
