package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/models"
	"github.com/careloop/childcare-clinic/utils"
)

// RequestAppointment creates a new appointment in Requested status.
func RequestAppointment(c *fiber.Ctx) error {
	patientID, actorType, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}
	if actorType != models.ActorPatient {
		return utils.Respond(c, utils.Forbidden("Only patients can request appointments"))
	}

	var input struct {
		DoctorID        uint            `json:"doctor_id"`
		AppointmentDate string          `json:"appointment_date"`
		TimeSlot        models.TimeSlot `json:"time_slot"`
		Type            string          `json:"type"`
		Mode            string          `json:"mode"`
		Notes           string          `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Respond(c, utils.Validation("Failed to parse request body"))
	}

	if input.DoctorID == 0 || input.AppointmentDate == "" || input.TimeSlot.Start == "" || input.TimeSlot.End == "" || input.Type == "" {
		return utils.Respond(c, utils.Validation("Missing required fields"))
	}
	if appErr := input.TimeSlot.Validate(); appErr != nil {
		return utils.Respond(c, appErr)
	}

	loc := utils.ClinicLocation()
	date, err := time.ParseInLocation("2006-01-02", input.AppointmentDate, loc)
	if err != nil {
		return utils.Respond(c, utils.Validation("Appointment date must be in YYYY-MM-DD format"))
	}

	now := time.Now().In(loc)
	start := utils.AtClock(date, input.TimeSlot.Start, loc)
	if !start.After(now) {
		return utils.Respond(c, utils.Validation("Appointment date must be in the future"))
	}

	var doctor models.Doctor
	if err := db.DB.Where("id = ? AND is_active = ?", input.DoctorID, true).First(&doctor).Error; err != nil {
		return utils.Respond(c, utils.NotFound("Doctor not found"))
	}
	var patient models.User
	if err := db.DB.First(&patient, patientID).Error; err != nil {
		return utils.Respond(c, utils.NotFound("Patient not found"))
	}

	mode := models.AppointmentMode(input.Mode)
	if mode == "" {
		mode = models.ModeVideoCall
	}

	appointment := models.Appointment{
		PatientID:       patientID,
		DoctorID:        input.DoctorID,
		AppointmentDate: date,
		TimeSlot:        input.TimeSlot,
		Type:            models.ConsultationType(input.Type),
		Mode:            mode,
		Status:          models.StatusRequested,
		Notes:           input.Notes,
		ActivityLog: []models.AppointmentActivity{{
			Action:    models.ActionCreated,
			ActorID:   patientID,
			ActorType: models.ActorPatient,
			Timestamp: now,
			Details:   "Appointment requested by patient " + patient.FullName(),
		}},
	}

	if err := db.DB.Create(&appointment).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to create appointment", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Appointment requested successfully",
		"appointment": appointment,
	})
}

// AcceptAppointment confirms a requested appointment. Doctor only.
func AcceptAppointment(c *fiber.Ctx) error {
	return transitionAppointment(c, func(a *models.Appointment, actorID uint, now time.Time) *utils.Error {
		return a.Accept(actorID, now)
	}, "Appointment confirmed successfully")
}

// DeclineAppointment cancels a requested appointment. Doctor only.
func DeclineAppointment(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)

	return transitionAppointment(c, func(a *models.Appointment, actorID uint, now time.Time) *utils.Error {
		return a.Decline(actorID, body.Reason, now)
	}, "Appointment declined successfully")
}

// CancelAppointment cancels a requested or confirmed appointment. Patient
// only, at least 24 hours before the start.
func CancelAppointment(c *fiber.Ctx) error {
	return transitionAppointment(c, func(a *models.Appointment, actorID uint, now time.Time) *utils.Error {
		return a.CancelByPatient(actorID, now)
	}, "Appointment cancelled successfully")
}

// CloseAppointment marks a confirmed appointment Completed or No Show.
func CloseAppointment(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.Respond(c, utils.Validation("Failed to parse request body"))
	}

	return transitionAppointment(c, func(a *models.Appointment, actorID uint, now time.Time) *utils.Error {
		return a.Close(actorID, models.AppointmentStatus(body.Status), now)
	}, "Appointment status updated successfully")
}

// transitionAppointment loads the appointment, applies a state-machine
// transition for the authenticated actor and persists the result together
// with the activity entry the transition appended.
func transitionAppointment(c *fiber.Ctx, apply func(*models.Appointment, uint, time.Time) *utils.Error, okMessage string) error {
	actorID, _, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Respond(c, utils.Validation("Invalid appointment ID"))
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Respond(c, utils.NotFound("Appointment not found"))
		}
		return utils.Respond(c, utils.Internal("Failed to load appointment", err))
	}

	now := time.Now().In(utils.ClinicLocation())
	if appErr := apply(&appointment, actorID, now); appErr != nil {
		return utils.Respond(c, appErr)
	}

	if err := saveAppointmentGraph(db.DB, &appointment); err != nil {
		return utils.Respond(c, utils.Internal("Failed to update appointment", err))
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     okMessage,
		"appointment": appointment,
	})
}

// GetAppointment returns one appointment visible to its doctor or patient.
func GetAppointment(c *fiber.Ctx) error {
	actorID, actorType, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Respond(c, utils.Validation("Invalid appointment ID"))
	}

	var appointment models.Appointment
	if err := db.DB.Preload("Doctor").Preload("Patient").Preload("ActivityLog").First(&appointment, id).Error; err != nil {
		return utils.Respond(c, utils.NotFound("Appointment not found"))
	}
	if !appointment.InvolvesActor(actorID, actorType) {
		return utils.Respond(c, utils.Forbidden("You are not authorized to view this appointment"))
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"appointment": appointment,
	})
}

// GetPatientAppointments lists the authenticated patient's appointments,
// newest first.
func GetPatientAppointments(c *fiber.Ctx) error {
	patientID, actorType, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}
	if actorType != models.ActorPatient {
		return utils.Respond(c, utils.Forbidden("Only patients can access this endpoint"))
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("appointment_date desc").
		Find(&appointments).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to fetch appointments", err))
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"appointments": appointments,
	})
}

// GetDoctorPendingAppointments lists appointment requests waiting on the
// authenticated doctor.
func GetDoctorPendingAppointments(c *fiber.Ctx) error {
	doctorID, _, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Patient").
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusRequested).
		Order("appointment_date asc").
		Find(&appointments).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to fetch appointment requests", err))
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"count":        len(appointments),
		"appointments": appointments,
	})
}

// GetAvailableDoctors lists active doctors, optionally by specialization.
func GetAvailableDoctors(c *fiber.Ctx) error {
	query := db.DB.Where("is_active = ?", true)
	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("specialization = ?", specialization)
	}

	var doctors []models.Doctor
	if err := query.Order("first_name asc").Find(&doctors).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to fetch available doctors", err))
	}

	// Password hashes stay out of listings.
	for i := range doctors {
		doctors[i].Password = ""
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(doctors),
		"doctors": doctors,
	})
}
