package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
)

func SetupIntersectionRoutes(router fiber.Router, h *handlers.Handlers) {
	intersections := router.Group("/intersections")

	intersections.Get("/", h.Intersection.ListIntersections)
	// Registered before /:id so "time-range" is not parsed as an id
	intersections.Get("/time-range", h.Intersection.TimeRange)
	intersections.Get("/:id", h.Intersection.GetIntersection)
	intersections.Delete("/:id", h.Intersection.DeleteIntersection)
}
