package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

type FrameServiceImpl struct {
	frameRepo     repositories.FrameRepository
	detectionRepo repositories.DetectionRepository
}

func NewFrameService(frameRepo repositories.FrameRepository, detectionRepo repositories.DetectionRepository) services.FrameService {
	return &FrameServiceImpl{
		frameRepo:     frameRepo,
		detectionRepo: detectionRepo,
	}
}

func (s *FrameServiceImpl) GetFrame(ctx context.Context, id uuid.UUID) (*models.Frame, error) {
	frame, err := s.frameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return frame, nil
}

func (s *FrameServiceImpl) ListFrames(ctx context.Context, filter repositories.FrameFilter, page, limit int) ([]models.Frame, int64, error) {
	offset, limit := paginate(page, limit)
	return s.frameRepo.List(ctx, filter, offset, limit)
}

func (s *FrameServiceImpl) Detections(ctx context.Context, frameID uuid.UUID) ([]models.FrameDetection, error) {
	if _, err := s.frameRepo.GetByID(ctx, frameID); err != nil {
		return nil, notFound(err)
	}
	return s.detectionRepo.ListByFrame(ctx, frameID)
}

func (s *FrameServiceImpl) DeleteFrame(ctx context.Context, id uuid.UUID) error {
	return notFound(s.frameRepo.Delete(ctx, id))
}

func (s *FrameServiceImpl) GetDetection(ctx context.Context, id uuid.UUID) (*models.Detection, error) {
	detection, err := s.detectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return detection, nil
}

func (s *FrameServiceImpl) DeleteDetection(ctx context.Context, id uuid.UUID) error {
	return notFound(s.detectionRepo.Delete(ctx, id))
}
