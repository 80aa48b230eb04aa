package models

import (
	"time"

	"gorm.io/gorm"
)

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingActive    MeetingStatus = "active"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
	MeetingTest      MeetingStatus = "test"
)

type ParticipantStatus string

const (
	ParticipantInvited ParticipantStatus = "invited"
	ParticipantJoined  ParticipantStatus = "joined"
	ParticipantLeft    ParticipantStatus = "left"
)

type MeetingParticipant struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	MeetingID uint              `json:"meeting_id"`
	ActorID   uint              `json:"actor_id"`
	ActorType ActorType         `json:"actor_type"`
	JoinTime  *time.Time        `json:"join_time,omitempty"`
	LeaveTime *time.Time        `json:"leave_time,omitempty"`
	Status    ParticipantStatus `json:"status"`
}

// Meeting is the operational record of the video session backing one
// confirmed appointment. Not unique per appointment at the storage level so
// that test meetings can coexist with the real one; generation is serialized
// elsewhere to keep at most one real link.
type Meeting struct {
	gorm.Model
	AppointmentID         uint                 `json:"appointment_id" gorm:"index"`
	PatientEmail          string               `json:"patient_email"`
	DoctorEmail           string               `json:"doctor_email"`
	Summary               string               `json:"summary"`
	Description           string               `json:"description"`
	StartTime             *time.Time           `json:"start_time,omitempty"`
	EndTime               *time.Time           `json:"end_time,omitempty"`
	GoogleMeetLink        string               `json:"google_meet_link"`
	GoogleCalendarEventID string               `json:"google_calendar_event_id"`
	MeetingID             string               `json:"meeting_id"`
	AccessCode            string               `json:"access_code"`
	Status                MeetingStatus        `json:"status"`
	IsTest                bool                 `json:"is_test"`
	Participants          []MeetingParticipant `json:"participants,omitempty"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = MeetingScheduled
	}
	return nil
}

func (m *Meeting) findParticipant(actorID uint, actorType ActorType) int {
	for i := range m.Participants {
		if m.Participants[i].ActorID == actorID && m.Participants[i].ActorType == actorType {
			return i
		}
	}
	return -1
}

// Join records the actor joining, updating an existing participant entry in
// place or adding a new one. The first join activates the meeting and stamps
// its actual start time.
func (m *Meeting) Join(actorID uint, actorType ActorType, now time.Time) {
	if i := m.findParticipant(actorID, actorType); i >= 0 {
		m.Participants[i].JoinTime = &now
		m.Participants[i].Status = ParticipantJoined
	} else {
		m.Participants = append(m.Participants, MeetingParticipant{
			MeetingID: m.ID,
			ActorID:   actorID,
			ActorType: actorType,
			JoinTime:  &now,
			Status:    ParticipantJoined,
		})
	}

	if m.Status == MeetingScheduled {
		m.Status = MeetingActive
		m.StartTime = &now
	}
}

// Leave records the actor leaving. When every participant has left, the
// meeting completes and its end time is stamped.
func (m *Meeting) Leave(actorID uint, actorType ActorType, now time.Time) {
	if i := m.findParticipant(actorID, actorType); i >= 0 {
		m.Participants[i].LeaveTime = &now
		m.Participants[i].Status = ParticipantLeft
	}

	if len(m.Participants) == 0 {
		return
	}
	for i := range m.Participants {
		if m.Participants[i].Status != ParticipantLeft {
			return
		}
	}
	m.Status = MeetingCompleted
	m.EndTime = &now
}
