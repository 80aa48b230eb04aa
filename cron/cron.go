package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/models"
	"github.com/careloop/childcare-clinic/utils"
)

// StartCronJobs initializes and starts the cron scheduler for appointment reminders
func StartCronJobs() {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()
	// Run every minute to check for appointments in the next hour
	_, err := c.AddFunc("* * * * *", sendAppointmentReminders)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment reminders")
}

// sendAppointmentReminders mails patients whose confirmed appointment starts
// in roughly one hour.
func sendAppointmentReminders() {
	loc := utils.ClinicLocation()
	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 2)

	// Slot times are wall-clock strings, so fetch today's and tomorrow's
	// confirmed appointments and filter by the combined start timestamp.
	var appointments []models.Appointment
	err := db.DB.Preload("Patient").Preload("Doctor").
		Where("status = ? AND appointment_date >= ? AND appointment_date < ?",
			models.StatusConfirmed, dayStart, dayEnd).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	for _, appointment := range appointments {
		start := appointment.StartAt(loc)
		if start.Before(startWindow) || start.After(endWindow) {
			continue
		}
		if err := sendReminderEmail(&appointment, start); err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appointment.ID, appointment.Patient.Email)
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(appointment *models.Appointment, start time.Time) error {
	subject := fmt.Sprintf("Reminder: Upcoming Appointment - %s", appointment.Type)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Type:</strong> %s</li>
			<li><strong>Mode:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>If your consultation is a video call, the meeting link can be joined from 15 minutes before the start time.</p>
		<p>Best regards,</p>
		<p>Your Childcare Clinic Team</p>
	`, appointment.Patient.FullName(), appointment.Doctor.FullName(),
		appointment.Type, appointment.Mode,
		start.Format("2006-01-02 15:04"),
		appointment.EndAt(start.Location()).Format("2006-01-02 15:04"))

	return utils.SendEmail(appointment.Patient.Email, subject, body)
}
