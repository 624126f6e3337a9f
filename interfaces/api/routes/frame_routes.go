package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
)

// SetupFrameRoutes registers frames and the detections hanging off them
func SetupFrameRoutes(router fiber.Router, h *handlers.Handlers) {
	frames := router.Group("/frames")
	frames.Get("/", h.Frame.ListFrames)
	frames.Get("/:id", h.Frame.GetFrame)
	frames.Delete("/:id", h.Frame.DeleteFrame)
	frames.Get("/:id/detections", h.Frame.Detections)

	detections := router.Group("/detections")
	detections.Get("/:id", h.Frame.GetDetection)
	detections.Delete("/:id", h.Frame.DeleteDetection)
}
