package models

import (
	"context"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
)

type Sponsor struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Tier      string    `gorm:"size:20" json:"tier"`
	Website   string    `gorm:"size:255" json:"website"`
	LogoUrl   string    `json:"logo_url"`
	Blurb     string    `gorm:"type:text" json:"blurb"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSponsor struct {
	Name      string `json:"name" binding:"required"`
	Tier      string `json:"tier"`
	Website   string `json:"website"`
	LogoUrl   string `json:"logo_url"`
	Blurb     string `json:"blurb"`
	SortOrder int    `json:"sort_order"`
}

func (input *NewSponsor) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Sponsor](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// logos are uploaded first, so a dangling url is an input mistake
	if input.LogoUrl != "" {
		if err := utils.CheckImageExistInGCS(input.LogoUrl); err != nil {
			return err
		}
	}
	return nil
}

func CreateSponsor(ctx context.Context, input *NewSponsor) (*Sponsor, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	sponsor := Sponsor{
		Name:      input.Name,
		Tier:      input.Tier,
		Website:   input.Website,
		LogoUrl:   input.LogoUrl,
		Blurb:     input.Blurb,
		SortOrder: input.SortOrder,
		IsActive:  utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&sponsor).Error
	if err != nil {
		return nil, err
	}
	return &sponsor, nil
}

func UpdateSponsor(ctx context.Context, id int, input *NewSponsor) (*Sponsor, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	sponsor, err := utils.FetchModel[Sponsor](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&sponsor).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Tier":      input.Tier,
		"Website":   input.Website,
		"LogoUrl":   input.LogoUrl,
		"Blurb":     input.Blurb,
		"SortOrder": input.SortOrder,
	}).Error
	if err != nil {
		return nil, err
	}
	return sponsor, nil
}

func DeleteSponsor(ctx context.Context, id int) (*Sponsor, error) {

	result, err := utils.FetchModel[Sponsor](ctx, id)
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

func GetSponsor(ctx context.Context, id int) (*Sponsor, error) {
	return utils.FetchModel[Sponsor](ctx, id)
}

func GetSponsors(ctx context.Context) ([]*Sponsor, error) {

	db := config.GetDB()
	var results []*Sponsor
	err := db.WithContext(ctx).Order("sort_order, name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
