package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// IntersectionFilter narrows intersection listings; nil fields are ignored
type IntersectionFilter struct {
	VideoID  *uuid.UUID
	Track1ID *uuid.UUID
	Track2ID *uuid.UUID
}

type IntersectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.IntersectionView, error)
	List(ctx context.Context, filter IntersectionFilter, offset, limit int) ([]models.IntersectionView, int64, error)
	// TimeRange returns the intersections of a video with start <= timestamp <= end, ascending
	TimeRange(ctx context.Context, videoID uuid.UUID, start, end float64) ([]models.IntersectionView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
