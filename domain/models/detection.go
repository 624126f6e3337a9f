package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Detection is one observation of a Track in a Frame
type Detection struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	FrameID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_detections_frame_tracking,priority:1" json:"frame"`
	TrackingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_detections_frame_tracking,priority:2;index" json:"tracking"`

	ClassID    int     `gorm:"not null" json:"class_id"`
	BBox       BBox    `gorm:"column:bbox" json:"bbox"`
	Confidence float64 `gorm:"not null" json:"confidence"` // Expected in [0,1], not enforced
	WorldSpeed float64 `gorm:"not null" json:"world_speed"`
	Latitude   float64 `gorm:"not null" json:"latitude"`
	Longitude  float64 `gorm:"not null" json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Detection) TableName() string {
	return "detections"
}

func (d *Detection) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
