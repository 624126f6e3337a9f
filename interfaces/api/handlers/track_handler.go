package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

type TrackHandler struct {
	trackService services.TrackService
}

func NewTrackHandler(trackService services.TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
	}
}

// ListTracks
// @Summary List tracks
// @Tags Tracking
// @Produce json
// @Param video_id query string false "Video ID (alias: video)"
// @Param track_id query int false "External track id"
// @Success 200 {object} utils.Response
// @Router /api/v1/tracking [get]
func (h *TrackHandler) ListTracks(c *fiber.Ctx) error {
	videoID, err := queryUUID(c, "video_id", "video")
	if err != nil {
		return badRequest(c, err)
	}
	trackID, err := queryInt(c, "track_id")
	if err != nil {
		return badRequest(c, err)
	}
	page, limit := pageParams(c)

	tracks, total, err := h.trackService.ListTracks(c.UserContext(), repositories.TrackFilter{
		VideoID: videoID,
		TrackID: trackID,
	}, page, limit)
	if err != nil {
		return serviceError(c, "Failed to list tracks", err)
	}

	return utils.PaginatedResponse(c, "Tracks retrieved successfully", tracks, dto.NewPageMeta(total, page, limit))
}

// GetTrack
// @Summary Get track
// @Tags Tracking
// @Param id path string true "Track ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/tracking/{id} [get]
func (h *TrackHandler) GetTrack(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	track, err := h.trackService.GetTrack(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get track", err)
	}

	return utils.SuccessResponse(c, "Track retrieved successfully", track)
}

// DeleteTrack
// @Summary Delete track with its detections and intersections
// @Tags Tracking
// @Param id path string true "Track ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/tracking/{id} [delete]
func (h *TrackHandler) DeleteTrack(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.trackService.DeleteTrack(c.UserContext(), id); err != nil {
		return serviceError(c, "Failed to delete track", err)
	}

	return utils.SuccessResponse(c, "Track deleted successfully", nil)
}

// Trajectory returns the track's detections ordered by frame timestamp
// @Summary Track trajectory
// @Tags Tracking
// @Param id path string true "Track ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/tracking/{id}/trajectory [get]
func (h *TrackHandler) Trajectory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	seq, err := h.trackService.Trajectory(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get trajectory", err)
	}

	points := make([]models.TrajectoryPoint, 0)
	for point, err := range seq {
		if err != nil {
			return serviceError(c, "Failed to read trajectory", err)
		}
		points = append(points, point)
	}

	return utils.SuccessResponse(c, "Trajectory retrieved successfully", points)
}
