package models

import (
	"context"
	"time"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"gorm.io/gorm"
)

// SiteSettings is a single-row table. GetSiteSettings creates the row
// on first read so the admin console never sees a missing record.
type SiteSettings struct {
	ID                   int       `gorm:"primary_key" json:"id"`
	EventName            string    `gorm:"size:255;not null;default:'Cactus Cup'" json:"event_name"`
	EventYear            int       `json:"event_year"`
	Venue                string    `gorm:"size:255" json:"venue"`
	VenueAddress         string    `gorm:"size:255" json:"venue_address"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	RegistrationOpen     *bool     `gorm:"not null;default:false" json:"registration_open"`
	WaiverUrl            string    `json:"waiver_url"`
	ContactEmail         string    `gorm:"size:100" json:"contact_email"`
	BannerImageUrl       string    `json:"banner_image_url"`
	AnnouncementText     string    `gorm:"type:text" json:"announcement_text"`
	RefundPolicyText     string    `gorm:"type:text" json:"refund_policy_text"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSiteSettings struct {
	EventName            string    `json:"event_name" binding:"required"`
	EventYear            int       `json:"event_year"`
	Venue                string    `json:"venue"`
	VenueAddress         string    `json:"venue_address"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	RegistrationOpen     *bool     `json:"registration_open"`
	WaiverUrl            string    `json:"waiver_url"`
	ContactEmail         string    `json:"contact_email"`
	BannerImageUrl       string    `json:"banner_image_url"`
	AnnouncementText     string    `json:"announcement_text"`
	RefundPolicyText     string    `json:"refund_policy_text"`
}

/*
caches:
	SiteSettings:1
*/

func GetSiteSettings(ctx context.Context) (*SiteSettings, error) {

	cached, err := utils.RetrieveRedis[SiteSettings](1)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var settings SiteSettings
	err = db.WithContext(ctx).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = SiteSettings{EventName: "Cactus Cup"}
		if err := db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := utils.StoreRedis[SiteSettings](&settings, 1); err != nil {
		return nil, err
	}
	return &settings, nil
}

func UpdateSiteSettings(ctx context.Context, input *NewSiteSettings) (*SiteSettings, error) {

	settings, err := GetSiteSettings(ctx)
	if err != nil {
		return nil, err
	}

	registrationOpen := input.RegistrationOpen
	if registrationOpen == nil {
		registrationOpen = utils.NewFalse()
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&settings).Updates(map[string]interface{}{
		"EventName":            input.EventName,
		"EventYear":            input.EventYear,
		"Venue":                input.Venue,
		"VenueAddress":         input.VenueAddress,
		"RegistrationOpensAt":  input.RegistrationOpensAt,
		"RegistrationClosesAt": input.RegistrationClosesAt,
		"RegistrationOpen":     registrationOpen,
		"WaiverUrl":            input.WaiverUrl,
		"ContactEmail":         input.ContactEmail,
		"BannerImageUrl":       input.BannerImageUrl,
		"AnnouncementText":     input.AnnouncementText,
		"RefundPolicyText":     input.RefundPolicyText,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisItem[SiteSettings](1); err != nil {
		return nil, err
	}
	return settings, nil
}
