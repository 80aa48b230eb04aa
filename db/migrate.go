package db

import (
	"fmt"
	"log"

	"github.com/careloop/childcare-clinic/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.Doctor{},
		&models.Appointment{},
		&models.AppointmentActivity{},
		&models.Prescription{},
		&models.PrescriptionMedication{},
		&models.Meeting{},
		&models.MeetingParticipant{},
		&models.OAuthToken{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
