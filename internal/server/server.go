package server

import (
	"log"

	"classguard-be/internal/bootstrap"
	"classguard-be/internal/config"
	"classguard-be/internal/pkg/serverutils"

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
	app := fiber.New(fiber.Config{
		// Screen frames arrive base64-encoded over the socket; keep the
		// HTTP surface aligned with the same ceiling.
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, cfg, container)

	srv := &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
	container.BindShutdown(srv.Stop)
	return srv
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"code":    fiber.StatusOK,
			"message": "ok",
		})
	})

	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)

	jwtGuard := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	c.AiController.RegisterRoutes(api, jwtGuard, serverutils.RequireRole("teacher"))

	c.MonitorHandler.RegisterRoutes(app)
}
