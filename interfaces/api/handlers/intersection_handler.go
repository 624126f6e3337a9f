package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

type IntersectionHandler struct {
	intersectionService services.IntersectionService
}

func NewIntersectionHandler(intersectionService services.IntersectionService) *IntersectionHandler {
	return &IntersectionHandler{
		intersectionService: intersectionService,
	}
}

// ListIntersections
// @Summary List intersections
// @Tags Intersections
// @Param video_id query string false "Video ID (alias: video)"
// @Param track1 query string false "First track ID"
// @Param track2 query string false "Second track ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/intersections [get]
func (h *IntersectionHandler) ListIntersections(c *fiber.Ctx) error {
	videoID, err := queryUUID(c, "video_id", "video")
	if err != nil {
		return badRequest(c, err)
	}
	track1, err := queryUUID(c, "track1")
	if err != nil {
		return badRequest(c, err)
	}
	track2, err := queryUUID(c, "track2")
	if err != nil {
		return badRequest(c, err)
	}
	page, limit := pageParams(c)

	items, total, err := h.intersectionService.ListIntersections(c.UserContext(), repositories.IntersectionFilter{
		VideoID:  videoID,
		Track1ID: track1,
		Track2ID: track2,
	}, page, limit)
	if err != nil {
		return serviceError(c, "Failed to list intersections", err)
	}

	return utils.PaginatedResponse(c, "Intersections retrieved successfully", items, dto.NewPageMeta(total, page, limit))
}

// TimeRange returns a video's intersections with start_time <= timestamp <= end_time
// @Summary Intersections in a time range
// @Tags Intersections
// @Param video_id query string true "Video ID"
// @Param start_time query number false "Range start" default(0)
// @Param end_time query number false "Range end" default(0)
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /api/v1/intersections/time-range [get]
func (h *IntersectionHandler) TimeRange(c *fiber.Ctx) error {
	videoID, err := queryUUID(c, "video_id", "video")
	if err != nil {
		return badRequest(c, err)
	}
	if videoID == nil {
		return badRequest(c, fmt.Errorf("%w: video_id is required", services.ErrInvalidParameter))
	}
	start, err := queryFloat(c, "start_time")
	if err != nil {
		return badRequest(c, err)
	}
	end, err := queryFloat(c, "end_time")
	if err != nil {
		return badRequest(c, err)
	}

	items, err := h.intersectionService.TimeRange(c.UserContext(), *videoID, start, end)
	if err != nil {
		return serviceError(c, "Failed to get intersections", err)
	}

	return utils.SuccessResponse(c, "Intersections retrieved successfully", items)
}

// GetIntersection
// @Summary Get intersection
// @Tags Intersections
// @Param id path string true "Intersection ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/intersections/{id} [get]
func (h *IntersectionHandler) GetIntersection(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	item, err := h.intersectionService.GetIntersection(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get intersection", err)
	}

	return utils.SuccessResponse(c, "Intersection retrieved successfully", item)
}

// DeleteIntersection
// @Summary Delete intersection
// @Tags Intersections
// @Param id path string true "Intersection ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/intersections/{id} [delete]
func (h *IntersectionHandler) DeleteIntersection(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.intersectionService.DeleteIntersection(c.UserContext(), id); err != nil {
		return serviceError(c, "Failed to delete intersection", err)
	}

	return utils.SuccessResponse(c, "Intersection deleted successfully", nil)
}
