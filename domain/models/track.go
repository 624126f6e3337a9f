package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Track is one tracked object across the frames of a video.
// (video_id, track_id) is unique; rows are never updated after creation.
type Track struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	VideoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tracks_video_track,priority:1" json:"video"`
	TrackID int       `gorm:"not null;uniqueIndex:idx_tracks_video_track,priority:2" json:"track_id"`

	FrameStart     int     `gorm:"not null" json:"frame_start"`
	FrameEnd       int     `gorm:"not null" json:"frame_end"`
	TimestampStart float64 `gorm:"not null" json:"timestamp_start"`
	TimestampEnd   float64 `gorm:"not null" json:"timestamp_end"`
	StartPoint     Point   `json:"start_point"`
	EndPoint       Point   `json:"end_point"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Detections []Detection `gorm:"foreignKey:TrackingID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Track) TableName() string {
	return "tracks"
}

func (t *Track) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
