package models

import (
	"testing"
	"time"

	"github.com/careloop/childcare-clinic/utils"
)

func confirmedAppointment() *Appointment {
	return &Appointment{
		PatientID:       7,
		DoctorID:        3,
		AppointmentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:        TimeSlot{Start: "10:00", End: "10:30"},
		Type:            TypeFollowUp,
		Mode:            ModeVideoCall,
		Status:          StatusConfirmed,
	}
}

func requestedAppointment() *Appointment {
	a := confirmedAppointment()
	a.Status = StatusRequested
	return a
}

func TestTimeSlotValidate(t *testing.T) {
	cases := []struct {
		name string
		slot TimeSlot
		ok   bool
	}{
		{"valid", TimeSlot{Start: "09:00", End: "09:30"}, true},
		{"single digit hour", TimeSlot{Start: "9:00", End: "9:30"}, true},
		{"bad hour", TimeSlot{Start: "24:00", End: "24:30"}, false},
		{"bad minutes", TimeSlot{Start: "10:60", End: "11:00"}, false},
		{"not a clock", TimeSlot{Start: "morning", End: "noon"}, false},
		{"end before start", TimeSlot{Start: "11:00", End: "10:00"}, false},
		{"zero length", TimeSlot{Start: "10:00", End: "10:00"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.slot.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid slot, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error for %+v", tc.slot)
			}
		})
	}
}

func TestAcceptConfirmsRequestedAppointment(t *testing.T) {
	a := requestedAppointment()
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	if err := a.Accept(3, now); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Fatalf("status = %s, want %s", a.Status, StatusConfirmed)
	}
	if len(a.ActivityLog) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(a.ActivityLog))
	}
	entry := a.ActivityLog[0]
	if entry.Action != ActionConfirmed || entry.ActorID != 3 || entry.ActorType != ActorDoctor {
		t.Fatalf("unexpected activity entry %+v", entry)
	}
}

func TestAcceptRejectsWrongDoctor(t *testing.T) {
	a := requestedAppointment()

	err := a.Accept(99, time.Now())
	if err == nil || err.Kind != utils.KindForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if a.Status != StatusRequested {
		t.Fatalf("status changed to %s on rejected accept", a.Status)
	}
}

func TestAcceptRejectsNonRequestedStatus(t *testing.T) {
	for _, status := range []AppointmentStatus{StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow} {
		a := requestedAppointment()
		a.Status = status
		if err := a.Accept(3, time.Now()); err == nil {
			t.Errorf("accept succeeded from %s", status)
		}
	}
}

func TestDeclineRecordsReason(t *testing.T) {
	a := requestedAppointment()
	now := time.Now()

	if err := a.Decline(3, "Out of office that week", now); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if a.Status != StatusCancelled {
		t.Fatalf("status = %s, want %s", a.Status, StatusCancelled)
	}
	if a.ActivityLog[0].Details != "Out of office that week" {
		t.Fatalf("details = %q", a.ActivityLog[0].Details)
	}
}

func TestDeclineDefaultsReason(t *testing.T) {
	a := requestedAppointment()
	if err := a.Decline(3, "", time.Now()); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if a.ActivityLog[0].Details == "" {
		t.Fatal("expected a default decline reason")
	}
}

func TestCancelByPatientEnforcesLeadTime(t *testing.T) {
	a := confirmedAppointment()

	// 23 hours before the 10:00 start on March 10.
	tooLate := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	err := a.CancelByPatient(7, tooLate)
	if err == nil || err.Kind != utils.KindInvalidState {
		t.Fatalf("expected invalid_state inside 24h, got %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Fatalf("status changed to %s on rejected cancel", a.Status)
	}

	// 25 hours before.
	earlyEnough := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	if err := a.CancelByPatient(7, earlyEnough); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if a.Status != StatusCancelled {
		t.Fatalf("status = %s, want %s", a.Status, StatusCancelled)
	}
}

func TestCancelByPatientRejectsOtherPatients(t *testing.T) {
	a := confirmedAppointment()
	err := a.CancelByPatient(8, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	if err == nil || err.Kind != utils.KindForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestCancelByPatientRejectsTerminalStates(t *testing.T) {
	early := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, status := range []AppointmentStatus{StatusCompleted, StatusCancelled, StatusNoShow} {
		a := confirmedAppointment()
		a.Status = status
		if err := a.CancelByPatient(7, early); err == nil {
			t.Errorf("cancel succeeded from %s", status)
		}
	}
}

func TestCloseTransitions(t *testing.T) {
	now := time.Now()

	a := confirmedAppointment()
	if err := a.Close(3, StatusCompleted, now); err != nil {
		t.Fatalf("close to completed failed: %v", err)
	}
	if a.Status != StatusCompleted || a.ActivityLog[0].Action != ActionCompleted {
		t.Fatalf("unexpected state after close: %s, %+v", a.Status, a.ActivityLog)
	}

	a = confirmedAppointment()
	if err := a.Close(3, StatusNoShow, now); err != nil {
		t.Fatalf("close to no-show failed: %v", err)
	}
	if a.Status != StatusNoShow || a.ActivityLog[0].Action != ActionNoShow {
		t.Fatalf("unexpected state after no-show close: %s", a.Status)
	}
}

func TestCloseRejectsInvalidTargets(t *testing.T) {
	a := confirmedAppointment()
	if err := a.Close(3, StatusCancelled, time.Now()); err == nil {
		t.Fatal("close accepted Cancelled as a target status")
	}
	if err := a.Close(3, StatusRequested, time.Now()); err == nil {
		t.Fatal("close accepted Requested as a target status")
	}

	a.Status = StatusRequested
	if err := a.Close(3, StatusCompleted, time.Now()); err == nil {
		t.Fatal("close succeeded on a Requested appointment")
	}
}

func TestEveryTransitionAppendsOneActivityEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := requestedAppointment()
	if err := a.Accept(3, now); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if err := a.Close(3, StatusCompleted, now); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if len(a.ActivityLog) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(a.ActivityLog))
	}
}

func TestJoinWindowBoundaries(t *testing.T) {
	a := confirmedAppointment()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		isToday bool
		canJoin bool
	}{
		{"16 minutes early", start.Add(-16 * time.Minute), true, false},
		{"15 minutes early", start.Add(-15 * time.Minute), true, true},
		{"at start", start, true, true},
		{"60 minutes after", start.Add(60 * time.Minute), true, true},
		{"61 minutes after", start.Add(61 * time.Minute), true, false},
		{"day before", start.AddDate(0, 0, -1), false, false},
		{"day after", start.AddDate(0, 0, 1), false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isToday, canJoin := a.JoinWindow(tc.now)
			if isToday != tc.isToday || canJoin != tc.canJoin {
				t.Fatalf("JoinWindow = (%v, %v), want (%v, %v)", isToday, canJoin, tc.isToday, tc.canJoin)
			}
		})
	}
}

func TestJoinWindowRequiresConfirmedStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	for _, status := range []AppointmentStatus{StatusRequested, StatusCompleted, StatusCancelled, StatusNoShow} {
		a := confirmedAppointment()
		a.Status = status
		if isToday, canJoin := a.JoinWindow(start); isToday || canJoin {
			t.Errorf("JoinWindow open for %s appointment", status)
		}
	}
}

func TestMarkLinkGenerated(t *testing.T) {
	a := confirmedAppointment()
	now := time.Now()

	a.MarkLinkGenerated("https://meet.google.com/abc-defg-hij", "ABCDEFGH", 3, now)

	if !a.Meeting.IsGenerated {
		t.Fatal("meeting not marked generated")
	}
	if a.Meeting.Link != "https://meet.google.com/abc-defg-hij" || a.Meeting.AccessCode != "ABCDEFGH" {
		t.Fatalf("unexpected meeting summary %+v", a.Meeting)
	}
	if a.Meeting.GeneratedAt == nil || !a.Meeting.GeneratedAt.Equal(now) {
		t.Fatalf("generated_at = %v", a.Meeting.GeneratedAt)
	}
	if len(a.ActivityLog) != 1 || a.ActivityLog[0].Action != ActionMeetingGenerated {
		t.Fatalf("unexpected activity log %+v", a.ActivityLog)
	}
}

func TestInvolvesActor(t *testing.T) {
	a := confirmedAppointment()

	if !a.InvolvesActor(7, ActorPatient) || !a.InvolvesActor(3, ActorDoctor) {
		t.Fatal("parties not recognized")
	}
	if a.InvolvesActor(3, ActorPatient) || a.InvolvesActor(7, ActorDoctor) {
		t.Fatal("actor id matched against the wrong role")
	}
	if a.InvolvesActor(42, ActorDoctor) {
		t.Fatal("unrelated doctor recognized")
	}
}
