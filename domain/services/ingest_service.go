package services

import (
	"context"
	"time"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// IngestRequest points at a descriptor + video pair on the local filesystem
type IngestRequest struct {
	JSONPath  string
	VideoPath string
	Source    models.IngestSource
}

// IngestProgress is reported once per record group (tracks, each frame, intersections)
type IngestProgress struct {
	Stage     string `json:"stage"`
	Title     string `json:"title"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

// ProgressFunc receives ingestion progress; it must not block for long
type ProgressFunc func(IngestProgress)

// TitleLocker serializes ingestions of the same video title
type TitleLocker interface {
	// Acquire takes the lock or returns ErrIngestInProgress; release must be called once
	Acquire(ctx context.Context, title string, ttl time.Duration) (release func(), err error)
}

type IngestService interface {
	// Ingest maps a descriptor + video into the store in one transaction.
	// Fatal problems are returned as errors; skipped records are reported in the result.
	Ingest(ctx context.Context, req IngestRequest, progress ProgressFunc) (*dto.IngestResult, error)
}
