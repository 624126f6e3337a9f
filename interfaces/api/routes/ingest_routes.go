package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
)

func SetupIngestRoutes(router fiber.Router, h *handlers.Handlers) {
	jobs := router.Group("/ingest-jobs")

	jobs.Post("/", h.IngestJob.CreateJob)
	jobs.Get("/", h.IngestJob.ListJobs)
	jobs.Get("/:id", h.IngestJob.GetJob)
}
