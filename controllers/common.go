package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/careloop/childcare-clinic/models"
)

// actorFromLocals reads the authenticated actor set by the JWT middleware.
func actorFromLocals(c *fiber.Ctx) (uint, models.ActorType, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return 0, "", false
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return 0, "", false
	}
	switch role {
	case "doctor":
		return userID, models.ActorDoctor, true
	case "patient":
		return userID, models.ActorPatient, true
	}
	return 0, "", false
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Authenticated user not found in context",
	})
}

// saveAppointmentGraph persists an appointment together with its activity log
// and prescription. Doctor and patient rows are reference data owned
// elsewhere; preloaded copies must never be written back.
func saveAppointmentGraph(gdb *gorm.DB, appointment *models.Appointment) error {
	return gdb.Omit("Doctor", "Patient").
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(appointment).Error
}
