package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Frame is one sampled instant of drone telemetry
type Frame struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	VideoID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_frames_video_index,priority:1" json:"video"`
	FrameIndex int       `gorm:"not null;uniqueIndex:idx_frames_video_index,priority:2" json:"frame_index"`
	Timestamp  float64   `gorm:"not null;index" json:"timestamp"`

	// Drone pose
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Altitude  float64 `gorm:"not null" json:"altitude"`
	Heading   float64 `gorm:"not null" json:"heading"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Detections []Detection `gorm:"foreignKey:FrameID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Frame) TableName() string {
	return "frames"
}

func (f *Frame) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
