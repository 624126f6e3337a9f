package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type FrameService interface {
	GetFrame(ctx context.Context, id uuid.UUID) (*models.Frame, error)
	ListFrames(ctx context.Context, filter repositories.FrameFilter, page, limit int) ([]models.Frame, int64, error)
	Detections(ctx context.Context, frameID uuid.UUID) ([]models.FrameDetection, error)
	DeleteFrame(ctx context.Context, id uuid.UUID) error

	GetDetection(ctx context.Context, id uuid.UUID) (*models.Detection, error)
	DeleteDetection(ctx context.Context, id uuid.UUID) error
}
