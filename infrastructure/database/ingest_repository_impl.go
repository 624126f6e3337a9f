package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type IngestRepositoryImpl struct {
	db *gorm.DB
}

func NewIngestRepository(db *gorm.DB) repositories.IngestRepository {
	return &IngestRepositoryImpl{db: db}
}

func (r *IngestRepositoryImpl) WithinTransaction(ctx context.Context, fn func(store repositories.IngestStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ingestStore{tx: tx})
	})
}

// ingestStore binds the write operations to one transaction
type ingestStore struct {
	tx *gorm.DB
}

func (s *ingestStore) FindVideoByTitle(ctx context.Context, title string) (*models.Video, error) {
	var videos []models.Video
	err := s.tx.WithContext(ctx).Where("title = ?", title).Limit(1).Find(&videos).Error
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &videos[0], nil
}

func (s *ingestStore) CreateVideo(ctx context.Context, video *models.Video) error {
	return s.tx.WithContext(ctx).Create(video).Error
}

func (s *ingestStore) GetOrCreateTrack(ctx context.Context, track *models.Track) (bool, error) {
	return getOrCreate(ctx, s.tx, track, "video_id = ? AND track_id = ?", track.VideoID, track.TrackID)
}

func (s *ingestStore) GetOrCreateFrame(ctx context.Context, frame *models.Frame) (bool, error) {
	return getOrCreate(ctx, s.tx, frame, "video_id = ? AND frame_index = ?", frame.VideoID, frame.FrameIndex)
}

func (s *ingestStore) GetOrCreateDetection(ctx context.Context, detection *models.Detection) (bool, error) {
	return getOrCreate(ctx, s.tx, detection, "frame_id = ? AND tracking_id = ?", detection.FrameID, detection.TrackingID)
}

func (s *ingestStore) GetOrCreateIntersection(ctx context.Context, intersection *models.Intersection) (bool, error) {
	return getOrCreate(ctx, s.tx, intersection,
		"video_id = ? AND track1_id = ? AND track2_id = ? AND frame_index = ?",
		intersection.VideoID, intersection.Track1ID, intersection.Track2ID, intersection.FrameIndex)
}

// getOrCreate loads the row matching the natural key into row, or inserts row.
// String conditions keep zero values such as track id 0 in the key.
func getOrCreate[T any](ctx context.Context, tx *gorm.DB, row *T, query string, args ...interface{}) (bool, error) {
	if row == nil {
		return false, errors.New("getOrCreate: nil row")
	}

	var existing []T
	if err := tx.WithContext(ctx).Where(query, args...).Limit(1).Find(&existing).Error; err != nil {
		return false, err
	}
	if len(existing) > 0 {
		*row = existing[0]
		return false, nil
	}

	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
