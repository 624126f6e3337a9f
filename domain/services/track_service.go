package services

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type TrackService interface {
	GetTrack(ctx context.Context, id uuid.UUID) (*models.Track, error)
	ListTracks(ctx context.Context, filter repositories.TrackFilter, page, limit int) ([]models.Track, int64, error)
	// Trajectory returns a restartable sequence of the track's detections in time order
	Trajectory(ctx context.Context, trackingID uuid.UUID) (iter.Seq2[models.TrajectoryPoint, error], error)
	DeleteTrack(ctx context.Context, id uuid.UUID) error
}
