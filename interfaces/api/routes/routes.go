package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/middleware"
	"github.com/cjnghn/drone-topview-analysis/pkg/config"
	"github.com/cjnghn/drone-topview-analysis/pkg/metrics"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config, m *metrics.Metrics) {
	SetupHealthRoutes(app, h.Health, cfg.App.Name, m)

	api := app.Group("/api/v1", middleware.RateLimiter(&cfg.RateLimit))

	SetupVideoRoutes(api, h)
	SetupTrackingRoutes(api, h)
	SetupFrameRoutes(api, h)
	SetupIntersectionRoutes(api, h)
	SetupIngestRoutes(api, h)
	SetupLogRoutes(api, h)

	// WebSocket routes need app, not the api group
	SetupWebSocketRoutes(app)
}
