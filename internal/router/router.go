package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sahayak-edu/sahayak-api/internal/config"
	"github.com/sahayak-edu/sahayak-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContentHandler    *handler.ContentHandler
	WorksheetHandler  *handler.WorksheetHandler
	KnowledgeHandler  *handler.KnowledgeHandler
	VisualHandler     *handler.VisualHandler
	AssessmentHandler *handler.AssessmentHandler
	LessonHandler     *handler.LessonHandler
	DashboardHandler  *handler.DashboardHandler
	SessionHandler    *handler.SessionHandler
	PreferenceHandler *handler.PreferenceHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.SessionHandler != nil {
		sessionGroup := api.Group("/session")
		deps.SessionHandler.Register(sessionGroup, sessionGroup.Group("", jwtMiddleware))
	}

	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(api.Group("/content", jwtMiddleware))
	}

	if deps.WorksheetHandler != nil {
		deps.WorksheetHandler.Register(api.Group("/worksheets", jwtMiddleware))
	}

	if deps.KnowledgeHandler != nil {
		deps.KnowledgeHandler.Register(api.Group("/knowledge", jwtMiddleware))
	}

	if deps.VisualHandler != nil {
		deps.VisualHandler.Register(api.Group("/visuals", jwtMiddleware))
	}

	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api.Group("/assessment", jwtMiddleware))
	}

	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(api.Group("/lessons", jwtMiddleware))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}

	if deps.PreferenceHandler != nil {
		deps.PreferenceHandler.Register(api.Group("/preferences", jwtMiddleware))
	}
}
