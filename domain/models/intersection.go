package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const IntersectionPointCenter = "center"

// Intersection is a point where the paths of two tracks of one video crossed
type Intersection struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	VideoID    uuid.UUID `gorm:"type:uuid;not null;index:idx_intersections_pair,priority:1;uniqueIndex:idx_intersections_event,priority:1" json:"video"`
	Track1ID   uuid.UUID `gorm:"type:uuid;not null;index:idx_intersections_pair,priority:2;uniqueIndex:idx_intersections_event,priority:2" json:"track1"`
	Track2ID   uuid.UUID `gorm:"type:uuid;not null;index:idx_intersections_pair,priority:3;uniqueIndex:idx_intersections_event,priority:3" json:"track2"`
	FrameIndex int       `gorm:"not null;uniqueIndex:idx_intersections_event,priority:4" json:"frame_index"`
	Timestamp  float64   `gorm:"not null;index" json:"timestamp"`

	IntersectionPoint     Point   `json:"intersection_point"`
	IntersectionPointType string  `gorm:"size:50;not null;default:'center'" json:"intersection_point_type"`
	Latitude              float64 `gorm:"not null" json:"latitude"`
	Longitude             float64 `gorm:"not null" json:"longitude"`
	TimeDifference        float64 `gorm:"not null" json:"time_difference"` // Seconds between the two tracks passing the point

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Track1 *Track `gorm:"foreignKey:Track1ID;constraint:OnDelete:CASCADE" json:"-"`
	Track2 *Track `gorm:"foreignKey:Track2ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Intersection) TableName() string {
	return "intersections"
}

func (i *Intersection) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.IntersectionPointType == "" {
		i.IntersectionPointType = IntersectionPointCenter
	}
	return nil
}
