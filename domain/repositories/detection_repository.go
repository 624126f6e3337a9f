package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

type DetectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Detection, error)
	ListByFrame(ctx context.Context, frameID uuid.UUID) ([]models.FrameDetection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
