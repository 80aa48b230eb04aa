package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careloop/childcare-clinic/controllers"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	auth.Post("/login", controllers.Login)
}
