package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/repurpose/internal/middleware"
)

// NewApp builds the Fiber application with global middleware and all routes.
func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  h.config.HTTPTimeout,
		WriteTimeout: h.config.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS())

	SetupRoutes(app, h)
	return app
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers) {
	if h.metrics != nil {
		app.Get("/metrics", h.metrics.Handler())
	}

	// path used by existing browser clients
	app.Post("/generate-content", h.Generate)

	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)
	api.Post("/generate", h.Generate)

	content := api.Group("/content")
	{
		content.Post("", h.SaveContent)
		content.Get("", h.ListContent)
		content.Get("/:id", h.GetContent)
		content.Delete("/:id", h.DeleteContent)
		content.Post("/:id/schedule", h.ScheduleContent)
		content.Delete("/:id/schedule", h.UnscheduleContent)
		content.Post("/:id/repurpose", h.RepurposeContent)
		content.Get("/:id/copy", h.CopyContent)
		content.Get("/:id/posts", h.ListPosts)
	}

	api.Get("/calendar", h.Calendar)

	connections := api.Group("/connections")
	{
		connections.Get("", h.ListConnections)
		connections.Post("", h.CreateConnection)
		connections.Patch("/:id", h.UpdateConnection)
		connections.Delete("/:id", h.DeleteConnection)
	}

	admin := api.Group("/admin", middleware.AdminOnly(h.config.AdminAPIKey))
	{
		admin.Post("/dispatch", h.Dispatch)
		admin.Get("/archive/:id", h.GetArchived)
		admin.Delete("/cache", h.ClearCache)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
