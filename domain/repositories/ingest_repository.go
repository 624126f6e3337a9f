package repositories

import (
	"context"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// IngestStore is the write surface available inside one ingestion transaction.
// The GetOrCreate methods report whether a new row was inserted; when a row with
// the same natural key exists it is loaded into the argument unchanged.
type IngestStore interface {
	FindVideoByTitle(ctx context.Context, title string) (*models.Video, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	GetOrCreateTrack(ctx context.Context, track *models.Track) (bool, error)
	GetOrCreateFrame(ctx context.Context, frame *models.Frame) (bool, error)
	GetOrCreateDetection(ctx context.Context, detection *models.Detection) (bool, error)
	GetOrCreateIntersection(ctx context.Context, intersection *models.Intersection) (bool, error)
}

type IngestRepository interface {
	// WithinTransaction runs fn in a single transaction; any error rolls everything back
	WithinTransaction(ctx context.Context, fn func(store IngestStore) error) error
}
