package models

import (
	"fmt"
	"time"

	"github.com/careloop/childcare-clinic/utils"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusRequested AppointmentStatus = "Requested"
	// StatusScheduled is a legacy value kept for wire compatibility with
	// older clients. No transition produces it.
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusNoShow    AppointmentStatus = "No Show"
)

type ConsultationType string

const (
	TypeInitialConsultation ConsultationType = "Initial Consultation"
	TypeFollowUp            ConsultationType = "Follow Up"
	TypeTherapySession      ConsultationType = "Therapy Session"
	TypeAssessment          ConsultationType = "Assessment"
)

type AppointmentMode string

const (
	ModeInPerson  AppointmentMode = "In-person"
	ModeVideoCall AppointmentMode = "Video Call"
	ModePhoneCall AppointmentMode = "Phone Call"
)

type ActorType string

const (
	ActorPatient ActorType = "patient"
	ActorDoctor  ActorType = "doctor"
)

type ActivityAction string

const (
	ActionCreated           ActivityAction = "Created"
	ActionConfirmed         ActivityAction = "Confirmed"
	ActionCancelled         ActivityAction = "Cancelled"
	ActionCompleted         ActivityAction = "Completed"
	ActionNoShow            ActivityAction = "No Show"
	ActionMeetingGenerated  ActivityAction = "Meeting Link Generated"
	ActionPrescriptionAdded ActivityAction = "Prescription Added"
	ActionReminderSent      ActivityAction = "Reminder Sent"
)

// TimeSlot holds the local wall-clock bounds of an appointment on its
// scheduled day, in HH:MM form.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks the HH:MM format and start<end ordering.
func (s TimeSlot) Validate() *utils.Error {
	sh, sm, ok := utils.ParseClock(s.Start)
	if !ok {
		return utils.Validation("Time must be in HH:MM format")
	}
	eh, em, ok := utils.ParseClock(s.End)
	if !ok {
		return utils.Validation("Time must be in HH:MM format")
	}
	if sh*60+sm >= eh*60+em {
		return utils.Validation("End time must be after start time")
	}
	return nil
}

// MeetingSummary is the denormalized copy of meeting info embedded on the
// appointment once a link has been generated.
type MeetingSummary struct {
	Link        string     `json:"link"`
	AccessCode  string     `json:"access_code"`
	IsGenerated bool       `json:"is_generated"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// AppointmentActivity is one entry of the append-only audit trail.
type AppointmentActivity struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	AppointmentID uint           `json:"appointment_id"`
	Action        ActivityAction `json:"action"`
	ActorID       uint           `json:"actor_id"`
	ActorType     ActorType      `json:"actor_type"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       string         `json:"details"`
}

type PrescriptionMedication struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	PrescriptionID uint   `json:"prescription_id"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
}

type Prescription struct {
	ID            uint                     `json:"id" gorm:"primaryKey"`
	AppointmentID uint                     `json:"appointment_id"`
	Medications   []PrescriptionMedication `json:"medications"`
	Instructions  string                   `json:"instructions"`
	IssuedAt      *time.Time               `json:"issued_at,omitempty"`
}

type Appointment struct {
	gorm.Model
	PatientID       uint                  `json:"patient_id"`
	Patient         User                  `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID        uint                  `json:"doctor_id"`
	Doctor          Doctor                `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	AppointmentDate time.Time             `json:"appointment_date"`
	TimeSlot        TimeSlot              `json:"time_slot" gorm:"embedded;embeddedPrefix:slot_"`
	Type            ConsultationType      `json:"type"`
	Mode            AppointmentMode       `json:"mode"`
	Status          AppointmentStatus     `json:"status"`
	Notes           string                `json:"notes"`
	Meeting         MeetingSummary        `json:"meeting" gorm:"embedded;embeddedPrefix:meeting_"`
	Prescription    *Prescription         `json:"prescription,omitempty"`
	ActivityLog     []AppointmentActivity `json:"activity_log,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusRequested
	}
	if a.Mode == "" {
		a.Mode = ModeVideoCall
	}
	return nil
}

// isTerminal reports whether no further status transitions are allowed.
func (a *Appointment) isTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (a *Appointment) logActivity(action ActivityAction, actorID uint, actorType ActorType, now time.Time, details string) {
	a.ActivityLog = append(a.ActivityLog, AppointmentActivity{
		AppointmentID: a.ID,
		Action:        action,
		ActorID:       actorID,
		ActorType:     actorType,
		Timestamp:     now,
		Details:       details,
	})
}

// StartAt returns the appointment's full start timestamp in loc.
func (a *Appointment) StartAt(loc *time.Location) time.Time {
	return utils.AtClock(a.AppointmentDate, a.TimeSlot.Start, loc)
}

// EndAt returns the appointment's full end timestamp in loc.
func (a *Appointment) EndAt(loc *time.Location) time.Time {
	return utils.AtClock(a.AppointmentDate, a.TimeSlot.End, loc)
}

// Accept moves a requested appointment to Confirmed. Only the assigned
// doctor may accept.
func (a *Appointment) Accept(doctorID uint, now time.Time) *utils.Error {
	if a.DoctorID != doctorID {
		return utils.Forbidden("Only the assigned doctor can accept this appointment")
	}
	if a.Status != StatusRequested {
		return utils.InvalidState("Appointment request not found or already processed")
	}
	a.Status = StatusConfirmed
	a.logActivity(ActionConfirmed, doctorID, ActorDoctor, now, "Appointment confirmed by doctor")
	return nil
}

// Decline cancels a requested appointment, recording an optional reason.
func (a *Appointment) Decline(doctorID uint, reason string, now time.Time) *utils.Error {
	if a.DoctorID != doctorID {
		return utils.Forbidden("Only the assigned doctor can decline this appointment")
	}
	if a.Status != StatusRequested {
		return utils.InvalidState("Appointment request not found or already processed")
	}
	if reason == "" {
		reason = "Appointment declined by doctor"
	}
	a.Status = StatusCancelled
	a.logActivity(ActionCancelled, doctorID, ActorDoctor, now, reason)
	return nil
}

// CancelByPatient cancels a requested or confirmed appointment. Cancellation
// must happen at least 24 hours before the scheduled start.
func (a *Appointment) CancelByPatient(patientID uint, now time.Time) *utils.Error {
	if a.PatientID != patientID {
		return utils.Forbidden("Only the patient who booked this appointment can cancel it")
	}
	if a.isTerminal() {
		return utils.InvalidState("Appointment not found or cannot be cancelled")
	}
	start := a.StartAt(now.Location())
	if start.Sub(now) < 24*time.Hour {
		return utils.InvalidState("Appointments can only be cancelled at least 24 hours in advance")
	}
	a.Status = StatusCancelled
	a.logActivity(ActionCancelled, patientID, ActorPatient, now, "Appointment cancelled by patient")
	return nil
}

// Close moves a confirmed appointment to Completed or No Show.
func (a *Appointment) Close(doctorID uint, status AppointmentStatus, now time.Time) *utils.Error {
	if a.DoctorID != doctorID {
		return utils.Forbidden("Only the assigned doctor can update this appointment")
	}
	if status != StatusCompleted && status != StatusNoShow {
		return utils.Validation("Status must be 'Completed' or 'No Show'")
	}
	if a.Status != StatusConfirmed {
		return utils.InvalidState(fmt.Sprintf("Cannot move a %s appointment to %s", a.Status, status))
	}
	a.Status = status
	action := ActionCompleted
	details := "Appointment marked completed by doctor"
	if status == StatusNoShow {
		action = ActionNoShow
		details = "Patient did not attend the appointment"
	}
	a.logActivity(action, doctorID, ActorDoctor, now, details)
	return nil
}

// MarkLinkGenerated stores the embedded meeting summary and audits the
// generation. Link and access code are set together, once.
func (a *Appointment) MarkLinkGenerated(link, accessCode string, doctorID uint, now time.Time) {
	a.Meeting = MeetingSummary{
		Link:        link,
		AccessCode:  accessCode,
		IsGenerated: true,
		GeneratedAt: &now,
	}
	a.logActivity(ActionMeetingGenerated, doctorID, ActorDoctor, now, "Video meeting link generated")
}

// JoinWindow reports whether the appointment's meeting can be joined at now.
// The window opens 15 minutes before the slot start and closes 60 minutes
// after it, on the appointment day only.
func (a *Appointment) JoinWindow(now time.Time) (isToday, canJoin bool) {
	if a.Status != StatusConfirmed {
		return false, false
	}
	loc := now.Location()
	if !utils.SameDay(a.AppointmentDate, now, loc) {
		return false, false
	}
	offset := now.Sub(a.StartAt(loc)).Minutes()
	return true, offset >= -15 && offset <= 60
}

// InvolvesActor reports whether the given authenticated actor is one of the
// two parties of this appointment.
func (a *Appointment) InvolvesActor(actorID uint, actorType ActorType) bool {
	switch actorType {
	case ActorDoctor:
		return a.DoctorID == actorID
	case ActorPatient:
		return a.PatientID == actorID
	}
	return false
}
