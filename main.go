package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/careloop/childcare-clinic/cron"
	"github.com/careloop/childcare-clinic/db"
	"github.com/careloop/childcare-clinic/gcal"
	"github.com/careloop/childcare-clinic/redis"
	"github.com/careloop/childcare-clinic/routes"
)

func main() {
	app := fiber.New()
	db.Init()
	redis.InitRedis()
	gcal.InitTokens(db.DB)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Childcare Clinic API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupMeetingRoutes(app)

	cron.StartCronJobs()

	app.Listen(":8000")
	fmt.Println("Server started on port 8000")
}
