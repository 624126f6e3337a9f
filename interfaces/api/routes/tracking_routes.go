package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
)

func SetupTrackingRoutes(router fiber.Router, h *handlers.Handlers) {
	tracking := router.Group("/tracking")

	tracking.Get("/", h.Track.ListTracks)
	tracking.Get("/:id", h.Track.GetTrack)
	tracking.Delete("/:id", h.Track.DeleteTrack)
	tracking.Get("/:id/trajectory", h.Track.Trajectory)
}
