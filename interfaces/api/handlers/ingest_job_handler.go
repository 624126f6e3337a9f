package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

type IngestJobHandler struct {
	jobService services.IngestJobService
	validate   *validator.Validate
}

func NewIngestJobHandler(jobService services.IngestJobService) *IngestJobHandler {
	return &IngestJobHandler{
		jobService: jobService,
		validate:   validator.New(),
	}
}

// CreateJob queues the ingestion of a descriptor + video pair already on the server
// @Summary Enqueue ingestion
// @Tags Ingest
// @Accept json
// @Produce json
// @Param request body dto.EnqueueIngestRequest true "Input paths"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/v1/ingest-jobs [post]
func (h *IngestJobHandler) CreateJob(c *fiber.Ctx) error {
	var req dto.EnqueueIngestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "json_path and video_path are required", err)
	}

	job, err := h.jobService.Enqueue(c.UserContext(), req.JSONPath, req.VideoPath, models.IngestSourceAPI)
	if err != nil {
		return serviceError(c, "Failed to enqueue ingestion", err)
	}

	return utils.CreatedResponse(c, "Ingestion queued", dto.IngestJobToResponse(job))
}

// ListJobs
// @Summary List ingestion jobs
// @Tags Ingest
// @Success 200 {object} utils.Response
// @Router /api/v1/ingest-jobs [get]
func (h *IngestJobHandler) ListJobs(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	jobs, total, err := h.jobService.ListJobs(c.UserContext(), page, limit)
	if err != nil {
		return serviceError(c, "Failed to list ingestion jobs", err)
	}

	return utils.PaginatedResponse(c, "Ingestion jobs retrieved successfully",
		dto.IngestJobsToResponse(jobs), dto.NewPageMeta(total, page, limit))
}

// GetJob returns status, progress and, once finished, the ingestion summary
// @Summary Get ingestion job
// @Tags Ingest
// @Param id path string true "Job ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/ingest-jobs/{id} [get]
func (h *IngestJobHandler) GetJob(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	job, err := h.jobService.GetJob(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get ingestion job", err)
	}

	return utils.SuccessResponse(c, "Ingestion job retrieved successfully", dto.IngestJobToResponse(job))
}
