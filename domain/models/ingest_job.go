package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IngestSource string

const (
	IngestSourceCLI   IngestSource = "cli"
	IngestSourceAPI   IngestSource = "api"
	IngestSourceInbox IngestSource = "inbox"
)

type IngestJobStatus string

const (
	IngestJobStatusPending   IngestJobStatus = "pending"
	IngestJobStatusRunning   IngestJobStatus = "running"
	IngestJobStatusCompleted IngestJobStatus = "completed"
	IngestJobStatusFailed    IngestJobStatus = "failed"
)

// IngestJob records one ingestion attempt of a descriptor + video pair
type IngestJob struct {
	ID     uuid.UUID    `gorm:"primaryKey;type:uuid" json:"id"`
	Source IngestSource `gorm:"size:20;not null" json:"source"`

	// Inputs
	JSONPath       string `gorm:"size:1024;not null" json:"json_path"`
	VideoPath      string `gorm:"size:1024;not null" json:"video_path"`
	Title          string `gorm:"size:255;index" json:"title"`
	DescriptorHash string `gorm:"size:64;index" json:"descriptor_hash,omitempty"` // BLAKE2b-256 of the JSON bytes

	Status IngestJobStatus `gorm:"size:20;default:'pending';index" json:"status"`

	// Progress tracking
	TotalItems     int `gorm:"default:0" json:"total_items"`
	ProcessedItems int `gorm:"default:0" json:"processed_items"`
	SkippedItems   int `gorm:"default:0" json:"skipped_items"`

	VideoID *uuid.UUID `gorm:"type:uuid;index" json:"video_id,omitempty"`

	// Serialized dto.IngestResult
	Result    string `gorm:"type:text" json:"-"`
	LastError string `gorm:"type:text" json:"last_error,omitempty"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (IngestJob) TableName() string {
	return "ingest_jobs"
}

func (j *IngestJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = IngestJobStatusPending
	}
	return nil
}

// IsFinished reports whether the job reached a terminal status
func (j *IngestJob) IsFinished() bool {
	return j.Status == IngestJobStatusCompleted || j.Status == IngestJobStatusFailed
}
