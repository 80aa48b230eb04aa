package models

import (
	"testing"
	"time"
)

func scheduledMeeting() *Meeting {
	return &Meeting{
		AppointmentID:  12,
		GoogleMeetLink: "https://meet.google.com/abc-defg-hij",
		MeetingID:      "abc-defg-hij",
		AccessCode:     "ABCDEFGH",
		Status:         MeetingScheduled,
		Participants: []MeetingParticipant{
			{ActorID: 7, ActorType: ActorPatient, Status: ParticipantInvited},
			{ActorID: 3, ActorType: ActorDoctor, Status: ParticipantInvited},
		},
	}
}

func TestFirstJoinActivatesMeeting(t *testing.T) {
	m := scheduledMeeting()
	now := time.Date(2026, 3, 10, 9, 50, 0, 0, time.UTC)

	m.Join(7, ActorPatient, now)

	if m.Status != MeetingActive {
		t.Fatalf("status = %s, want %s", m.Status, MeetingActive)
	}
	if m.StartTime == nil || !m.StartTime.Equal(now) {
		t.Fatalf("start time = %v, want %v", m.StartTime, now)
	}
	if m.Participants[0].Status != ParticipantJoined {
		t.Fatalf("participant status = %s", m.Participants[0].Status)
	}
	if m.Participants[0].JoinTime == nil || !m.Participants[0].JoinTime.Equal(now) {
		t.Fatalf("join time = %v", m.Participants[0].JoinTime)
	}
}

func TestSecondJoinKeepsOriginalStartTime(t *testing.T) {
	m := scheduledMeeting()
	first := time.Date(2026, 3, 10, 9, 50, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	m.Join(7, ActorPatient, first)
	m.Join(3, ActorDoctor, second)

	if !m.StartTime.Equal(first) {
		t.Fatalf("start time moved to %v", m.StartTime)
	}
	if m.Status != MeetingActive {
		t.Fatalf("status = %s", m.Status)
	}
}

func TestJoinUpdatesExistingParticipantInPlace(t *testing.T) {
	m := scheduledMeeting()
	now := time.Now()

	m.Join(7, ActorPatient, now)
	m.Join(7, ActorPatient, now.Add(time.Minute))

	if len(m.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(m.Participants))
	}
}

func TestJoinAddsUnknownParticipant(t *testing.T) {
	m := scheduledMeeting()
	m.Participants = nil

	m.Join(7, ActorPatient, time.Now())

	if len(m.Participants) != 1 || m.Participants[0].ActorID != 7 {
		t.Fatalf("participants = %+v", m.Participants)
	}
}

func TestLastLeaveCompletesMeeting(t *testing.T) {
	m := scheduledMeeting()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	m.Join(7, ActorPatient, start)
	m.Join(3, ActorDoctor, start)

	m.Leave(7, ActorPatient, end.Add(-time.Minute))
	if m.Status != MeetingActive {
		t.Fatalf("meeting completed while a participant remains, status = %s", m.Status)
	}
	if m.EndTime != nil {
		t.Fatalf("end time stamped early: %v", m.EndTime)
	}

	m.Leave(3, ActorDoctor, end)
	if m.Status != MeetingCompleted {
		t.Fatalf("status = %s, want %s", m.Status, MeetingCompleted)
	}
	if m.EndTime == nil || !m.EndTime.Equal(end) {
		t.Fatalf("end time = %v, want %v", m.EndTime, end)
	}
}

func TestLeaveIgnoresInvitedParticipants(t *testing.T) {
	m := scheduledMeeting()
	now := time.Now()

	// The doctor never joined; their entry stays invited so a single
	// patient leave must not complete the meeting.
	m.Join(7, ActorPatient, now)
	m.Leave(7, ActorPatient, now.Add(10*time.Minute))

	if m.Status == MeetingCompleted {
		t.Fatal("meeting completed with an invited participant outstanding")
	}
}

func TestLeaveUnknownActorIsNoOp(t *testing.T) {
	m := scheduledMeeting()
	now := time.Now()
	m.Join(7, ActorPatient, now)

	m.Leave(42, ActorDoctor, now.Add(time.Minute))

	if m.Status != MeetingActive || len(m.Participants) != 2 {
		t.Fatalf("meeting mutated by unknown actor: %s, %d participants", m.Status, len(m.Participants))
	}
}
