package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careloop/childcare-clinic/controllers"
	"github.com/careloop/childcare-clinic/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/appointments", middleware.Protected())

	// Patient routes - must come before parameterized ones
	appointment.Get("/patient", controllers.GetPatientAppointments)
	appointment.Post("/request", controllers.RequestAppointment)
	appointment.Put("/cancel/:id", controllers.CancelAppointment)

	// Doctor routes
	appointment.Get("/doctor/pending", middleware.RequireRole("doctor"), controllers.GetDoctorPendingAppointments)
	appointment.Get("/doctors", controllers.GetAvailableDoctors)
	appointment.Put("/accept/:id", middleware.RequireRole("doctor"), controllers.AcceptAppointment)
	appointment.Put("/decline/:id", middleware.RequireRole("doctor"), controllers.DeclineAppointment)
	appointment.Put("/status/:id", middleware.RequireRole("doctor"), controllers.CloseAppointment)

	appointment.Get("/:id", controllers.GetAppointment)
}
