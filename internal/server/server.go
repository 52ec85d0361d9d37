package server

import (
	"log"

	"browser-connector-be/internal/bootstrap"
	"browser-connector-be/internal/config"
	"browser-connector-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Recording payloads arrive as one base64 data URL, so the limit has to
	// cover a whole capture.
	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024, // 512MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Static
	app.Static("/recordings-static", "./"+cfg.Storage.RecordingsDir)

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Connector is listening on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// The extension addresses every endpoint at the root, so routes are not
// grouped under a prefix.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.IdentityController.RegisterRoutes(app)
	c.RecordingController.RegisterRoutes(app)
	c.ScreenshotController.RegisterRoutes(app)
	c.TelemetryController.RegisterRoutes(app)

	c.StreamHandler.RegisterRoutes(app)
}
