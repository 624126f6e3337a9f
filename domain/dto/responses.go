package dto

import (
	"time"

	"github.com/google/uuid"
)

// VideoResponse is a video with its aggregates
type VideoResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	File           string    `json:"file"`
	StartTime      float64   `json:"start_time"`
	EndTime        float64   `json:"end_time"`
	StartLatitude  float64   `json:"start_latitude"`
	StartLongitude float64   `json:"start_longitude"`
	EndLatitude    float64   `json:"end_latitude"`
	EndLongitude   float64   `json:"end_longitude"`
	TrackingCount  int64     `json:"tracking_count"`
	FrameCount     int64     `json:"frame_count"`
	Duration       float64   `json:"duration"`
}

// IngestJobResponse is the public view of an ingestion job
type IngestJobResponse struct {
	ID             uuid.UUID     `json:"id"`
	Source         string        `json:"source"`
	JSONPath       string        `json:"json_path"`
	VideoPath      string        `json:"video_path"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	TotalItems     int           `json:"total_items"`
	ProcessedItems int           `json:"processed_items"`
	SkippedItems   int           `json:"skipped_items"`
	VideoID        *uuid.UUID    `json:"video_id,omitempty"`
	Result         *IngestResult `json:"result,omitempty"`
	LastError      string        `json:"last_error,omitempty"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// PageMeta carries pagination info for list responses
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NormalizePage clamps a 1-based page and a limit to usable values
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// NewPageMeta computes pagination metadata
func NewPageMeta(total int64, page, limit int) PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
	}
	return PageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
