package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careloop/childcare-clinic/controllers"
	"github.com/careloop/childcare-clinic/middleware"
)

// SetupMeetingRoutes configures meeting and Google OAuth routes
func SetupMeetingRoutes(app *fiber.App) {
	meeting := app.Group("/meetings")

	// Google OAuth routes - registered first to avoid conflicts with
	// parameterized routes. The callback is unauthenticated: Google calls it.
	meeting.Get("/google/auth", middleware.Protected(), middleware.RequireRole("doctor"), controllers.GetGoogleAuthURL)
	meeting.Get("/google/callback", controllers.HandleGoogleCallback)
	meeting.Get("/oauth-status", middleware.Protected(), middleware.RequireRole("doctor"), controllers.GetOAuthStatus)

	meeting.Get("/", middleware.Protected(), middleware.RequireRole("doctor"), controllers.GetAllMeetings)

	// Parameterized routes last
	meeting.Post("/generate/:appointmentId", middleware.Protected(), controllers.GenerateMeeting)
	meeting.Get("/check/:appointmentId", middleware.Protected(), controllers.CheckMeeting)
	meeting.Post("/join/:appointmentId", middleware.Protected(), controllers.JoinMeeting)
	meeting.Post("/leave/:appointmentId", middleware.Protected(), controllers.LeaveMeeting)
	meeting.Get("/:appointmentId", middleware.Protected(), controllers.GetMeetingDetails)
}
