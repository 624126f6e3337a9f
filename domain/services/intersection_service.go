package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type IntersectionService interface {
	GetIntersection(ctx context.Context, id uuid.UUID) (*models.IntersectionView, error)
	ListIntersections(ctx context.Context, filter repositories.IntersectionFilter, page, limit int) ([]models.IntersectionView, int64, error)
	// TimeRange returns the intersections of a video with start <= timestamp <= end, ascending
	TimeRange(ctx context.Context, videoID uuid.UUID, start, end float64) ([]models.IntersectionView, error)
	DeleteIntersection(ctx context.Context, id uuid.UUID) error
}
