package models

import "github.com/google/uuid"

// Read-only projections produced by the query layer.

// VideoStats is a video together with its aggregate counts
type VideoStats struct {
	Video
	TrackingCount int64 `json:"tracking_count"`
	FrameCount    int64 `json:"frame_count"`
}

// TrackPosition is the per-track aggregate of detections up to a cutoff timestamp.
// The Last* fields hold averages over all qualifying detections, not the latest one.
type TrackPosition struct {
	TrackingID    uuid.UUID `json:"tracking_id"`
	TrackID       int       `json:"track_id"`
	LastLatitude  float64   `json:"last_latitude"`
	LastLongitude float64   `json:"last_longitude"`
	LastSpeed     float64   `json:"last_speed"`
}

// TrajectoryPoint is one detection of a track projected onto time and place
type TrajectoryPoint struct {
	Timestamp  float64 `json:"timestamp"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	WorldSpeed float64 `json:"world_speed"`
}

// FrameDetection is a detection of a frame projected for display
type FrameDetection struct {
	TrackingID uuid.UUID `json:"tracking_id"`
	TrackID    int       `json:"track_id"`
	ClassID    int       `json:"class_id"`
	BBox       BBox      `gorm:"column:bbox" json:"bbox"`
	Confidence float64   `json:"confidence"`
	WorldSpeed float64   `json:"world_speed"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
}

// IntersectionView is an intersection with the external ids of both tracks
type IntersectionView struct {
	Intersection
	TrackID1 int `gorm:"column:track_id1" json:"track_id1"`
	TrackID2 int `gorm:"column:track_id2" json:"track_id2"`
}
