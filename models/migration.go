package models

import (
	"log"

	"github.com/cactuscup/admin_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Tournament{}, &Activity{}, &SpecialEvent{}, &EventTier{}, &Addon{},
		&Sponsor{}, &HotelPartner{}, &GuestInstructor{}, &Organizer{},
		&SiteSettings{}, &Image{},
		&Order{}, &OrderItem{},
		&TournamentRegistration{}, &ActivityRegistration{}, &EventRegistration{},
		&SpecialEventRegistration{}, &AddonPurchase{},
		&ReconciliationRun{}, &ReconciliationRunError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
