package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// FrameFilter narrows frame listings; nil fields are ignored
type FrameFilter struct {
	VideoID    *uuid.UUID
	FrameIndex *int
}

type FrameRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Frame, error)
	List(ctx context.Context, filter FrameFilter, offset, limit int) ([]models.Frame, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
