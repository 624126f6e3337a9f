package serviceimpl

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

type IntersectionServiceImpl struct {
	intersectionRepo repositories.IntersectionRepository
}

func NewIntersectionService(intersectionRepo repositories.IntersectionRepository) services.IntersectionService {
	return &IntersectionServiceImpl{intersectionRepo: intersectionRepo}
}

func (s *IntersectionServiceImpl) GetIntersection(ctx context.Context, id uuid.UUID) (*models.IntersectionView, error) {
	intersection, err := s.intersectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return intersection, nil
}

func (s *IntersectionServiceImpl) ListIntersections(ctx context.Context, filter repositories.IntersectionFilter, page, limit int) ([]models.IntersectionView, int64, error) {
	offset, limit := paginate(page, limit)
	return s.intersectionRepo.List(ctx, filter, offset, limit)
}

func (s *IntersectionServiceImpl) TimeRange(ctx context.Context, videoID uuid.UUID, start, end float64) ([]models.IntersectionView, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start_time %v is after end_time %v", services.ErrInvalidParameter, start, end)
	}

	intersections, err := s.intersectionRepo.TimeRange(ctx, videoID, start, end)
	if err != nil {
		logger.QueryError("time_range_failed", "Failed to query intersections", err, map[string]interface{}{
			"video_id": videoID.String(),
		})
		return nil, err
	}

	logger.Query("time_range", "Intersections in time range", map[string]interface{}{
		"video_id": videoID.String(),
		"start":    start,
		"end":      end,
		"count":    len(intersections),
	})
	return intersections, nil
}

func (s *IntersectionServiceImpl) DeleteIntersection(ctx context.Context, id uuid.UUID) error {
	return notFound(s.intersectionRepo.Delete(ctx, id))
}
