package controllers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/models"
)

// Login authenticates a patient or doctor and issues a JWT. Account
// creation is handled by the registration service, not here.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.Role != "doctor" && input.Role != "patient" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Role must be 'doctor' or 'patient'",
		})
	}

	var (
		id     uint
		hashed string
		name   string
	)
	if input.Role == "doctor" {
		var doctor models.Doctor
		if db.DB.Where("email = ? AND is_active = ?", input.Email, true).First(&doctor).RowsAffected == 0 {
			return invalidCredentials(c)
		}
		id, hashed, name = doctor.ID, doctor.Password, doctor.FullName()
	} else {
		var user models.User
		if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
			return invalidCredentials(c)
		}
		id, hashed, name = user.ID, user.Password, user.FullName()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(input.Password)); err != nil {
		return invalidCredentials(c)
	}

	claims := jwt.MapClaims{
		"id":   id,
		"role": input.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key"
	}
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to sign token",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   signed,
		"user": fiber.Map{
			"id":   id,
			"name": name,
			"role": input.Role,
		},
	})
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Invalid credentials",
	})
}
