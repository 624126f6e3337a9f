package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/utils"
)

// FrameHandler serves frames and the detections attached to them
type FrameHandler struct {
	frameService services.FrameService
}

func NewFrameHandler(frameService services.FrameService) *FrameHandler {
	return &FrameHandler{
		frameService: frameService,
	}
}

// ListFrames
// @Summary List frames
// @Tags Frames
// @Param video_id query string false "Video ID (alias: video)"
// @Param frame_index query int false "Frame index"
// @Success 200 {object} utils.Response
// @Router /api/v1/frames [get]
func (h *FrameHandler) ListFrames(c *fiber.Ctx) error {
	videoID, err := queryUUID(c, "video_id", "video")
	if err != nil {
		return badRequest(c, err)
	}
	frameIndex, err := queryInt(c, "frame_index")
	if err != nil {
		return badRequest(c, err)
	}
	page, limit := pageParams(c)

	frames, total, err := h.frameService.ListFrames(c.UserContext(), repositories.FrameFilter{
		VideoID:    videoID,
		FrameIndex: frameIndex,
	}, page, limit)
	if err != nil {
		return serviceError(c, "Failed to list frames", err)
	}

	return utils.PaginatedResponse(c, "Frames retrieved successfully", frames, dto.NewPageMeta(total, page, limit))
}

// GetFrame
// @Summary Get frame
// @Tags Frames
// @Param id path string true "Frame ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/frames/{id} [get]
func (h *FrameHandler) GetFrame(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	frame, err := h.frameService.GetFrame(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get frame", err)
	}

	return utils.SuccessResponse(c, "Frame retrieved successfully", frame)
}

// DeleteFrame
// @Summary Delete frame with its detections
// @Tags Frames
// @Param id path string true "Frame ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/frames/{id} [delete]
func (h *FrameHandler) DeleteFrame(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.frameService.DeleteFrame(c.UserContext(), id); err != nil {
		return serviceError(c, "Failed to delete frame", err)
	}

	return utils.SuccessResponse(c, "Frame deleted successfully", nil)
}

// Detections
// @Summary Detections of a frame
// @Tags Frames
// @Param id path string true "Frame ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/frames/{id}/detections [get]
func (h *FrameHandler) Detections(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	detections, err := h.frameService.Detections(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get detections", err)
	}

	return utils.SuccessResponse(c, "Detections retrieved successfully", detections)
}

// GetDetection
// @Summary Get detection
// @Tags Detections
// @Param id path string true "Detection ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/detections/{id} [get]
func (h *FrameHandler) GetDetection(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	detection, err := h.frameService.GetDetection(c.UserContext(), id)
	if err != nil {
		return serviceError(c, "Failed to get detection", err)
	}

	return utils.SuccessResponse(c, "Detection retrieved successfully", detection)
}

// DeleteDetection
// @Summary Delete detection
// @Tags Detections
// @Param id path string true "Detection ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/detections/{id} [delete]
func (h *FrameHandler) DeleteDetection(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.frameService.DeleteDetection(c.UserContext(), id); err != nil {
		return serviceError(c, "Failed to delete detection", err)
	}

	return utils.SuccessResponse(c, "Detection deleted successfully", nil)
}
