package serviceimpl

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

type TrackServiceImpl struct {
	trackRepo repositories.TrackRepository
}

func NewTrackService(trackRepo repositories.TrackRepository) services.TrackService {
	return &TrackServiceImpl{trackRepo: trackRepo}
}

func (s *TrackServiceImpl) GetTrack(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	track, err := s.trackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return track, nil
}

func (s *TrackServiceImpl) ListTracks(ctx context.Context, filter repositories.TrackFilter, page, limit int) ([]models.Track, int64, error) {
	offset, limit := paginate(page, limit)
	return s.trackRepo.List(ctx, filter, offset, limit)
}

// Trajectory checks the track eagerly; the rows are only read while the sequence is ranged over
func (s *TrackServiceImpl) Trajectory(ctx context.Context, trackingID uuid.UUID) (iter.Seq2[models.TrajectoryPoint, error], error) {
	if _, err := s.trackRepo.GetByID(ctx, trackingID); err != nil {
		return nil, notFound(err)
	}
	return s.trackRepo.Trajectory(ctx, trackingID), nil
}

func (s *TrackServiceImpl) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	return notFound(s.trackRepo.Delete(ctx, id))
}
