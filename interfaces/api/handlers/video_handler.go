package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

type VideoHandler struct {
	videoService services.VideoService
}

func NewVideoHandler(videoService services.VideoService) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
	}
}

// ListVideos returns videos with their track and frame counts
// @Summary List videos
// @Tags Videos
// @Produce json
// @Param search query string false "Case-insensitive title filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} utils.Response
// @Router /api/v1/videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	videos, total, err := h.videoService.ListVideos(c.UserContext(), c.Query("search"), page, limit)
	if err != nil {
		return serviceError(c, "Failed to list videos", err)
	}

	return utils.PaginatedResponse(c, "Videos retrieved successfully",
		dto.VideoStatsListToResponse(videos), dto.NewPageMeta(total, page, limit))
}

// GetVideo returns one video with its aggregates
// @Summary Get video
// @Tags Videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/v1/videos/{id} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	video, err := h.videoService.GetVideo(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get video", err)
	}

	return utils.SuccessResponse(c, "Video retrieved successfully", dto.VideoStatsToResponse(video))
}

// DeleteVideo removes a video with everything recorded for it
// @Summary Delete video
// @Tags Videos
// @Param id path string true "Video ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.videoService.DeleteVideo(c.UserContext(), id); err != nil {
		return serviceError(c, "Failed to delete video", err)
	}

	return utils.SuccessResponse(c, "Video deleted successfully", nil)
}

// TrackPositions averages each track's detections up to a timestamp
// @Summary Track positions at a timestamp
// @Tags Videos
// @Produce json
// @Param id path string true "Video ID"
// @Param timestamp query number false "Cutoff timestamp" default(0)
// @Success 200 {object} utils.Response
// @Router /api/v1/videos/{id}/track-positions [get]
func (h *VideoHandler) TrackPositions(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	cutoff, err := queryFloat(c, "timestamp")
	if err != nil {
		return badRequest(c, err)
	}

	positions, err := h.videoService.TrackPositions(c.UserContext(), id, cutoff)
	if err != nil {
		return serviceError(c, "Failed to compute track positions", err)
	}

	return utils.SuccessResponse(c, "Track positions retrieved successfully", positions)
}
