package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/gcal"
	"github.com/careloop/childcare-clinic/models"
	"github.com/careloop/childcare-clinic/redis"
	"github.com/careloop/childcare-clinic/utils"
)

const generateLockTTL = 30 * time.Second

// GenerateMeeting creates (or idempotently returns) the Google Meet link for
// a confirmed appointment. Only the assigned doctor can generate.
func GenerateMeeting(c *fiber.Ctx) error {
	doctorID, actorType, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}
	if actorType != models.ActorDoctor {
		return utils.Respond(c, utils.Forbidden("Only the assigned doctor can generate meeting links"))
	}

	appointmentID, err := c.ParamsInt("appointmentId")
	if err != nil {
		return utils.Respond(c, utils.Validation("Invalid appointment ID"))
	}

	var appointment models.Appointment
	if err := db.DB.Preload("Doctor").Preload("Patient").First(&appointment, appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Respond(c, utils.NotFound("Appointment not found"))
		}
		return utils.Respond(c, utils.Internal("Failed to load appointment", err))
	}

	if appointment.DoctorID != doctorID {
		return utils.Respond(c, utils.Forbidden("Only the assigned doctor can generate meeting links"))
	}
	if appointment.Status != models.StatusConfirmed {
		return utils.Respond(c, utils.InvalidState("Only confirmed appointments can have meeting links"))
	}

	var (
		meeting  *models.Meeting
		existing bool
	)

	// The lock serializes generation per appointment so two near-simultaneous
	// requests cannot both pass the idempotency check and create two provider
	// events.
	lockErr := redis.WithAppointmentLock(appointment.ID, generateLockTTL, func() error {
		var err error
		meeting, existing, err = resolveMeeting(gormMeetingRecords{db: db.DB}, appointment.ID, func() (*models.Meeting, error) {
			return createMeeting(c, &appointment, doctorID)
		})
		return err
	})

	if lockErr != nil {
		if errors.Is(lockErr, redis.ErrLockNotAcquired) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Meeting generation already in progress, please retry",
			})
		}
		return utils.Respond(c, lockErr)
	}

	status := fiber.StatusCreated
	message := "Google Meet created successfully"
	if existing {
		status = fiber.StatusOK
		message = "Meeting already exists for this appointment"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"meetingInfo": fiber.Map{
			"meetingId":  meeting.MeetingID,
			"accessCode": meeting.AccessCode,
			"link":       meeting.GoogleMeetLink,
		},
	})
}

// meetingRecords is the lookup surface generation needs; tests supply an
// in-memory one.
type meetingRecords interface {
	FindLinked(appointmentID uint) (*models.Meeting, error)
}

// resolveMeeting returns the appointment's existing linked meeting or creates
// a new one. A second call for the same appointment hands back the meeting the
// first call produced without another provider invocation.
func resolveMeeting(records meetingRecords, appointmentID uint, create func() (*models.Meeting, error)) (*models.Meeting, bool, error) {
	existing, err := records.FindLinked(appointmentID)
	if err != nil {
		return nil, false, utils.Internal("Failed to look up meeting", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	created, err := create()
	if err != nil {
		return nil, false, err
	}
	return created, false, nil
}

// gormMeetingRecords finds real linked meetings in Postgres. Test meetings
// never satisfy the idempotency check.
type gormMeetingRecords struct {
	db *gorm.DB
}

func (r gormMeetingRecords) FindLinked(appointmentID uint) (*models.Meeting, error) {
	var meeting models.Meeting
	err := r.db.Where("appointment_id = ? AND google_meet_link <> '' AND is_test = ?", appointmentID, false).
		First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// createMeeting performs the provider call and persists the new meeting
// record together with the appointment's embedded summary.
func createMeeting(c *fiber.Ctx, appointment *models.Appointment, doctorID uint) (*models.Meeting, error) {
	token, appErr := gcal.Tokens.Valid(c.Context(), doctorID)
	if appErr != nil {
		return nil, appErr
	}

	loc := utils.ClinicLocation()
	start := appointment.StartAt(loc)
	end := appointment.EndAt(loc)
	now := time.Now().In(loc)

	summary := "Medical Consultation - " + appointment.Patient.FullName()
	description := fmt.Sprintf("Appointment with Dr. %s\n\nPatient: %s\nType: %s\nMode: %s",
		appointment.Doctor.FullName(), appointment.Patient.FullName(), appointment.Type, appointment.Mode)

	event, appErr := gcal.CreateMeetEvent(c.Context(), token, gcal.EventDetails{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         end,
		TimeZone:    loc.String(),
		Attendees:   []string{appointment.Doctor.Email, appointment.Patient.Email},
	})
	if appErr != nil {
		return nil, appErr
	}

	meeting := &models.Meeting{
		AppointmentID:         appointment.ID,
		PatientEmail:          appointment.Patient.Email,
		DoctorEmail:           appointment.Doctor.Email,
		Summary:               summary,
		Description:           description,
		StartTime:             &start,
		EndTime:               &end,
		GoogleMeetLink:        event.MeetLink,
		GoogleCalendarEventID: event.EventID,
		MeetingID:             event.MeetingID,
		AccessCode:            event.AccessCode,
		Status:                models.MeetingScheduled,
		Participants: []models.MeetingParticipant{
			{ActorID: appointment.DoctorID, ActorType: models.ActorDoctor, Status: models.ParticipantInvited},
			{ActorID: appointment.PatientID, ActorType: models.ActorPatient, Status: models.ParticipantInvited},
		},
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meeting).Error; err != nil {
			return err
		}
		appointment.MarkLinkGenerated(event.MeetLink, event.AccessCode, doctorID, now)
		return saveAppointmentGraph(tx, appointment)
	})
	if err != nil {
		return nil, utils.Internal("Failed to save meeting", err)
	}

	// Fire-and-forget: a notification failure never fails generation.
	go utils.NotifyMeetingLink(
		appointment.Patient.Email,
		appointment.Patient.FullName(),
		appointment.Doctor.FullName(),
		event.MeetLink,
		event.AccessCode,
		start.Format("2006-01-02 15:04"),
	)

	log.Printf("Google Meet created for appointment %d: %s", appointment.ID, meeting.MeetingID)
	return meeting, nil
}

// CheckMeeting reports whether the appointment's meeting can be joined now.
func CheckMeeting(c *fiber.Ctx) error {
	actorID, actorType, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	appointmentID, err := c.ParamsInt("appointmentId")
	if err != nil {
		return utils.Respond(c, utils.Validation("Invalid appointment ID"))
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, appointmentID).Error; err != nil {
		return utils.Respond(c, utils.NotFound("Appointment not found"))
	}
	if !appointment.InvolvesActor(actorID, actorType) {
		return utils.Respond(c, utils.Forbidden("You are not authorized to access this meeting"))
	}

	var count int64
	db.DB.Model(&models.Meeting{}).
		Where("appointment_id = ? AND google_meet_link <> ''", appointment.ID).
		Count(&count)
	hasLink := count > 0

	now := time.Now().In(utils.ClinicLocation())
	isToday, canJoin := appointment.JoinWindow(now)

	message := "Meeting is not active at this time"
	if appointment.Status != models.StatusConfirmed {
		message = "Appointment is not confirmed"
	} else if canJoin {
		message = "Meeting is active and can be joined"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"isToday": isToday,
		"canJoin": canJoin,
		"hasLink": hasLink,
		"message": message,
	})
}

// JoinMeeting records the actor joining and returns the link to open.
func JoinMeeting(c *fiber.Ctx) error {
	meeting, _, actorID, actorType, appErr := loadMeetingForActor(c)
	if appErr != nil {
		return utils.Respond(c, appErr)
	}

	now := time.Now().In(utils.ClinicLocation())
	meeting.Join(actorID, actorType, now)

	if err := db.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(meeting).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to join meeting", err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully joined the meeting",
		"meetingInfo": fiber.Map{
			"meetingId":  meeting.MeetingID,
			"accessCode": meeting.AccessCode,
			"link":       meeting.GoogleMeetLink,
		},
	})
}

// LeaveMeeting records the actor leaving; the last leaver completes the
// meeting.
func LeaveMeeting(c *fiber.Ctx) error {
	meeting, _, actorID, actorType, appErr := loadMeetingForActor(c)
	if appErr != nil {
		return utils.Respond(c, appErr)
	}

	now := time.Now().In(utils.ClinicLocation())
	meeting.Leave(actorID, actorType, now)

	if err := db.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(meeting).Error; err != nil {
		return utils.Respond(c, utils.Internal("Failed to leave meeting", err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully left the meeting",
	})
}

// GetMeetingDetails returns meeting and appointment info for either party.
func GetMeetingDetails(c *fiber.Ctx) error {
	meeting, appointment, _, _, appErr := loadMeetingForActor(c)
	if appErr != nil {
		return utils.Respond(c, appErr)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"meetingInfo": fiber.Map{
			"meetingId":             meeting.MeetingID,
			"accessCode":            meeting.AccessCode,
			"link":                  meeting.GoogleMeetLink,
			"status":                meeting.Status,
			"googleCalendarEventId": meeting.GoogleCalendarEventID,
			"startTime":             meeting.StartTime,
			"endTime":               meeting.EndTime,
		},
		"appointmentInfo": fiber.Map{
			"id":       appointment.ID,
			"date":     appointment.AppointmentDate,
			"timeSlot": appointment.TimeSlot,
			"type":     appointment.Type,
			"mode":     appointment.Mode,
			"status":   appointment.Status,
		},
	})
}

// GetAllMeetings lists meetings for doctor dashboards, newest first.
func GetAllMeetings(c *fiber.Ctx) error {
	var meetings []models.Meeting
	if err := db.DB.Order("created_at desc").Find(&meetings).Error; err != nil {
		return utils.Respond(c, utils.Internal("Error fetching meetings", err))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"meetings": meetings,
	})
}

// loadMeetingForActor resolves the meeting and appointment for a
// parameterized meeting route and authorizes the actor as one of the two
// appointment parties.
func loadMeetingForActor(c *fiber.Ctx) (*models.Meeting, *models.Appointment, uint, models.ActorType, *utils.Error) {
	actorID, actorType, ok := actorFromLocals(c)
	if !ok {
		return nil, nil, 0, "", utils.Unauthorized("Authenticated user not found in context")
	}

	appointmentID, err := c.ParamsInt("appointmentId")
	if err != nil {
		return nil, nil, 0, "", utils.Validation("Invalid appointment ID")
	}

	var meeting models.Meeting
	if err := db.DB.Preload("Participants").
		Where("appointment_id = ?", appointmentID).
		Order("created_at desc").
		First(&meeting).Error; err != nil {
		return nil, nil, 0, "", utils.NotFound("Meeting not found")
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, uint(appointmentID)).Error; err != nil {
		return nil, nil, 0, "", utils.NotFound("Appointment not found")
	}
	if !appointment.InvolvesActor(actorID, actorType) {
		return nil, nil, 0, "", utils.Forbidden("You are not authorized to access this meeting")
	}

	return &meeting, &appointment, actorID, actorType, nil
}
