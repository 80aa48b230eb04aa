package main

import (
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"

	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/models"
)

// Development seeding: a handful of doctors and patients with a known
// password, plus a spread of appointments in every status.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	db.Migrate()
	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	doctors := seedDoctors(string(hash), 5)
	patients := seedPatients(string(hash), 20)
	seedAppointments(doctors, patients, 40)

	log.Println("seed complete")
}

func seedDoctors(passwordHash string, count int) []models.Doctor {
	log.Printf("seeding %d doctors", count)

	specializations := []string{
		"Pediatrics",
		"Child Psychology",
		"Speech Therapy",
		"Occupational Therapy",
		"Developmental Pediatrics",
	}

	doctors := make([]models.Doctor, 0, count)
	for i := 0; i < count; i++ {
		doctor := models.Doctor{
			FirstName:      gofakeit.FirstName(),
			LastName:       gofakeit.LastName(),
			Specialization: specializations[i%len(specializations)],
			Email:          gofakeit.Email(),
			Password:       passwordHash,
			IsActive:       true,
		}
		if err := db.DB.Create(&doctor).Error; err != nil {
			log.Fatalf("seed doctor: %v", err)
		}
		doctors = append(doctors, doctor)
	}

	log.Println("doctors seeded")
	return doctors
}

func seedPatients(passwordHash string, count int) []models.User {
	log.Printf("seeding %d patients", count)

	patients := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		patient := models.User{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Password:  passwordHash,
		}
		if err := db.DB.Create(&patient).Error; err != nil {
			log.Fatalf("seed patient: %v", err)
		}
		patients = append(patients, patient)
	}

	log.Println("patients seeded")
	return patients
}

func seedAppointments(doctors []models.Doctor, patients []models.User, count int) {
	log.Printf("seeding %d appointments", count)

	types := []models.ConsultationType{
		models.TypeInitialConsultation,
		models.TypeFollowUp,
		models.TypeTherapySession,
		models.TypeAssessment,
	}
	modes := []models.AppointmentMode{
		models.ModeVideoCall,
		models.ModeInPerson,
		models.ModePhoneCall,
	}
	statuses := []models.AppointmentStatus{
		models.StatusRequested,
		models.StatusConfirmed,
		models.StatusConfirmed,
		models.StatusCompleted,
		models.StatusCancelled,
	}

	slots := []models.TimeSlot{
		{Start: "09:00", End: "09:30"},
		{Start: "10:00", End: "10:45"},
		{Start: "11:30", End: "12:00"},
		{Start: "14:00", End: "14:30"},
		{Start: "16:00", End: "17:00"},
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		status := statuses[i%len(statuses)]

		// Closed appointments sit in the past, open ones in the coming days.
		dayOffset := gofakeit.Number(2, 14)
		if status == models.StatusCompleted || status == models.StatusCancelled {
			dayOffset = -gofakeit.Number(1, 14)
		}

		appointment := models.Appointment{
			PatientID:       patients[gofakeit.Number(0, len(patients)-1)].ID,
			DoctorID:        doctors[gofakeit.Number(0, len(doctors)-1)].ID,
			AppointmentDate: now.AddDate(0, 0, dayOffset),
			TimeSlot:        slots[gofakeit.Number(0, len(slots)-1)],
			Type:            types[gofakeit.Number(0, len(types)-1)],
			Mode:            modes[gofakeit.Number(0, len(modes)-1)],
			Status:          status,
			Notes:           gofakeit.Sentence(8),
		}
		if err := db.DB.Create(&appointment).Error; err != nil {
			log.Fatalf("seed appointment: %v", err)
		}
	}

	log.Println("appointments seeded")
}
