package server

import (
	"log"

	"ai-coursebuilder-be/internal/bootstrap"
	"ai-coursebuilder-be/internal/config"
	"ai-coursebuilder-be/internal/pkg/serverutils"
	ws "ai-coursebuilder-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // uploads can carry slide decks and audio
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

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
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ConstructorController.RegisterRoutes(api)
	c.TutorController.RegisterRoutes(api)
	c.CourseController.RegisterRoutes(api)

	// Step-event stream: one connection per watched session.
	app.Use("/ws", serverutils.JwtMiddleware, func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(func(conn *websocket.Conn) {
		sessionID := conn.Params("id")
		userID := uuid.Nil
		if raw, ok := conn.Locals("user_id").(string); ok {
			if id, err := uuid.Parse(raw); err == nil {
				userID = id
			}
		}
		ws.ServeWs(c.WebSocketHub, c.StepBus, conn, userID, sessionID)
	}))
}
