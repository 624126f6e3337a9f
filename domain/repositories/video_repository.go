package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

type VideoRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	GetByTitle(ctx context.Context, title string) (*models.Video, error)
	GetStatsByID(ctx context.Context, id uuid.UUID) (*models.VideoStats, error)
	ListWithStats(ctx context.Context, search string, offset, limit int) ([]models.VideoStats, int64, error)
	// Delete removes the video and everything it owns in one transaction
	Delete(ctx context.Context, id uuid.UUID) error
}
