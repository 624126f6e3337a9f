package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is the root aggregate; everything else is owned by it
type Video struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	Title    string    `gorm:"size:255;not null;uniqueIndex" json:"title"` // Base filename of the asset
	FilePath string    `gorm:"size:1024;not null" json:"file"`              // Storage key of the managed asset

	// Flight window in absolute seconds
	StartTime float64 `gorm:"not null" json:"start_time"`
	EndTime   float64 `gorm:"not null" json:"end_time"`

	StartLatitude  float64 `gorm:"not null" json:"start_latitude"`
	StartLongitude float64 `gorm:"not null" json:"start_longitude"`
	EndLatitude    float64 `gorm:"not null" json:"end_latitude"`
	EndLongitude   float64 `gorm:"not null" json:"end_longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tracks        []Track        `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	Frames        []Frame        `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	Intersections []Intersection `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Video) TableName() string {
	return "videos"
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Duration returns the flight length in seconds
func (v *Video) Duration() float64 {
	return v.EndTime - v.StartTime
}
