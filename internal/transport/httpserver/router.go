// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"game-search-service/internal/transport/httpserver/dto"
	"game-search-service/internal/transport/httpserver/handler"
	"game-search-service/internal/transport/httpserver/middleware"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	AppName   string
	BodyLimit int
	Probes    []middleware.Probe
}

// Server wraps the fiber app.
type Server struct {
	App    *fiber.App
	logger *zap.Logger
}

// NewServer creates the HTTP server with every route registered.
func NewServer(cfg ServerConfig, search *handler.SearchHandler, admin *handler.AdminHandler, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: true,
	})

	// Probes stay reachable even if later middleware misbehaves.
	app.Use(middleware.NewHealthCheck(cfg.Probes...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(compress.New())

	registerRoutes(app, search, admin)

	return &Server{App: app, logger: logger}
}

func registerRoutes(app *fiber.App, search *handler.SearchHandler, admin *handler.AdminHandler) {
	v1 := app.Group("/api/v1")

	v1.Get("/games/search", search.Search)

	a := v1.Group("/admin")
	a.Get("/resilience", admin.Resilience)
	a.Post("/resilience/reset", admin.ResetResilience)
	a.Post("/sync", admin.Sync)
	a.Get("/policies", admin.Policies)
	a.Put("/policies", admin.SavePolicy)
	a.Post("/policies/reload", admin.ReloadPolicies)
	a.Delete("/cache", admin.ClearCache)
}

// errorHandler renders errors that escaped the handlers. 404s are logged at
// debug, other 4xx at warn and 5xx at error.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("status", code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		}
		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("route not found", fields...)
		case code >= fiber.StatusInternalServerError:
			logger.Error("server error", fields...)
		default:
			logger.Warn("client error", fields...)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start listens on port until Shutdown.
func (s *Server) Start(port int) error {
	s.logger.Info("starting HTTP server", zap.Int("port", port))
	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully stops the server, giving in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.App.ShutdownWithContext(ctx)
}
