package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codecoach/codecoach-api/internal/config"
	"github.com/codecoach/codecoach-api/internal/handler"
	"github.com/codecoach/codecoach-api/internal/middleware"
	"github.com/codecoach/codecoach-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	SubmissionHandler *handler.SubmissionHandler
	TutorHandler      *handler.TutorHandler
	APIKeyHandler     *handler.APIKeyHandler
	ProblemHandler    *handler.ProblemHandler
	JWTMiddleware     fiber.Handler
	TutorChatLimiter  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := app.Group("/api/Auth")
		deps.AuthHandler.Register(auth)
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/UserSubmissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.TutorHandler != nil {
		chatLimiter := deps.TutorChatLimiter
		if chatLimiter == nil {
			chatLimiter = middleware.RateLimit("tutor_chat", 10, time.Minute)
		}
		conversations := app.Group("/api/AIConversations", jwtMiddleware)
		deps.TutorHandler.Register(conversations, chatLimiter)
	}

	if deps.APIKeyHandler != nil {
		keys := app.Group("/api/APIKeys", jwtMiddleware)
		deps.APIKeyHandler.Register(keys)
	}

	if deps.ProblemHandler != nil {
		problems := app.Group("/api/ProblemManagement", jwtMiddleware)
		deps.ProblemHandler.Register(problems)
	}
}
