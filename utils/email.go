package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// NotifyMeetingLink mails the patient their consultation link. Dispatch is
// fire-and-forget: callers run it in a goroutine and a failure here must
// never fail link generation.
func NotifyMeetingLink(patientEmail, patientName, doctorName, link, accessCode string, startTime string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your video consultation with Dr. %s is ready.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Starts at:</strong> %s</li>
			<li><strong>Meeting link:</strong> <a href="%s">%s</a></li>
			<li><strong>Access code:</strong> %s</li>
		</ul>
		<p>You can join from 15 minutes before the scheduled time.</p>
		<p>Best regards,</p>
		<p>Your Childcare Clinic Team</p>
	`, patientName, doctorName, startTime, link, link, accessCode)

	if err := SendEmail(patientEmail, "Your Video Consultation Link", body); err != nil {
		log.Printf("Failed to send meeting link email to %s: %v", patientEmail, err)
	}
}
