package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
)

func SetupVideoRoutes(router fiber.Router, h *handlers.Handlers) {
	videos := router.Group("/videos")

	videos.Get("/", h.Video.ListVideos)
	videos.Get("/:id", h.Video.GetVideo)
	videos.Delete("/:id", h.Video.DeleteVideo)
	videos.Get("/:id/track-positions", h.Video.TrackPositions)
}
