package dto

import (
	"time"

	"github.com/google/uuid"
)

// IngestDescriptor is the JSON document produced by the video-analytics pipeline.
// Scalar fields are pointers so that a missing key is distinguishable from zero.
type IngestDescriptor struct {
	StartTime     *float64                 `json:"start_time" validate:"required"`
	EndTime       *float64                 `json:"end_time" validate:"required"`
	StartLocation *GeoLocation             `json:"start_location" validate:"required"`
	EndLocation   *GeoLocation             `json:"end_location" validate:"required"`
	Tracking      []TrackDescriptor        `json:"tracking" validate:"required,dive"`
	Frames        []FrameDescriptor        `json:"frames" validate:"required,dive"`
	Intersections []IntersectionDescriptor `json:"intersections" validate:"required,dive"`
}

type GeoLocation struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type TrackDescriptor struct {
	TrackID        *int      `json:"track_id" validate:"required"`
	FrameStart     *int      `json:"frame_start" validate:"required"`
	FrameEnd       *int      `json:"frame_end" validate:"required"`
	StartPoint     []float64 `json:"start_point" validate:"required,min=2,max=3"`
	EndPoint       []float64 `json:"end_point" validate:"required,min=2,max=3"`
	TimestampStart *float64  `json:"timestamp_start" validate:"required"`
	TimestampEnd   *float64  `json:"timestamp_end" validate:"required"`
}

type DroneState struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Altitude  *float64 `json:"altitude" validate:"required"`
	Heading   *float64 `json:"heading" validate:"required"`
}

type FrameDescriptor struct {
	FrameIndex *int                  `json:"frame_index" validate:"required"`
	Timestamp  *float64              `json:"timestamp" validate:"required"`
	DroneState *DroneState           `json:"drone_state" validate:"required"`
	Detections []DetectionDescriptor `json:"detections" validate:"required,dive"`
}

type DetectionDescriptor struct {
	TrackID        *int         `json:"track_id" validate:"required"`
	ClassID        *int         `json:"class_id" validate:"required"`
	BBox           []float64    `json:"bbox" validate:"required,len=4"`
	Confidence     *float64     `json:"confidence" validate:"required"`
	WorldSpeed     *float64     `json:"world_speed" validate:"required"`
	GPSCoordinates *GeoLocation `json:"gps_coordinates" validate:"required"`
}

type IntersectionDescriptor struct {
	TrackID1              *int         `json:"track_id1" validate:"required"`
	TrackID2              *int         `json:"track_id2" validate:"required"`
	FrameIndex            *int         `json:"frame_index" validate:"required"`
	Timestamp             *float64     `json:"timestamp" validate:"required"`
	IntersectionPoint     []float64    `json:"intersection_point" validate:"required,min=2,max=3"`
	IntersectionPointType string       `json:"intersection_point_type,omitempty"`
	GPSCoordinates        *GeoLocation `json:"gps_coordinates" validate:"required"`
	TimeDifference        *float64     `json:"time_difference" validate:"required"`
}

// TotalItems is the number of progress units of an ingestion: tracks, frames and intersections
func (d *IngestDescriptor) TotalItems() int {
	return len(d.Tracking) + len(d.Frames) + len(d.Intersections)
}

// Entity names used in counts and warnings
const (
	EntityVideo        = "video"
	EntityTrack        = "track"
	EntityFrame        = "frame"
	EntityDetection    = "detection"
	EntityIntersection = "intersection"
)

// EntityCounts summarises what happened to the records of one entity type
type EntityCounts struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Skipped  int `json:"skipped"`
}

// IngestWarning describes a record that was skipped without failing the ingestion
type IngestWarning struct {
	Entity  string `json:"entity"`
	Index   int    `json:"index"`                 // Position of the record in its JSON array
	Frame   *int   `json:"frame_index,omitempty"` // Owning frame for detections
	TrackID *int   `json:"track_id,omitempty"`    // Offending track id
	Message string `json:"message"`
}

// IngestResult is the summary of one ingestion run
type IngestResult struct {
	VideoID        uuid.UUID       `json:"video_id"`
	Title          string          `json:"title"`
	VideoCreated   bool            `json:"video_created"`
	DescriptorHash string          `json:"descriptor_hash"`
	Tracks         EntityCounts    `json:"tracks"`
	Frames         EntityCounts    `json:"frames"`
	Detections     EntityCounts    `json:"detections"`
	Intersections  EntityCounts    `json:"intersections"`
	Warnings       []IngestWarning `json:"warnings"`
	Duration       time.Duration   `json:"duration"`
}

// Skipped returns the total number of skipped records
func (r *IngestResult) Skipped() int {
	return r.Tracks.Skipped + r.Frames.Skipped + r.Detections.Skipped + r.Intersections.Skipped
}

// EnqueueIngestRequest asks the worker to ingest a descriptor + video pair already on the server
type EnqueueIngestRequest struct {
	JSONPath  string `json:"json_path" validate:"required"`
	VideoPath string `json:"video_path" validate:"required"`
}
