package services

import "errors"

var (
	// ErrInputNotFound means an ingestion input file (descriptor or video) does not exist
	ErrInputNotFound = errors.New("input file not found")
	// ErrValidation means the ingestion descriptor is malformed or misses a required field
	ErrValidation = errors.New("invalid ingestion descriptor")
	// ErrIngestInProgress means another ingestion holds the lock for the same title
	ErrIngestInProgress = errors.New("ingestion already in progress for this video")
	// ErrNotFound means the entity addressed by a query does not exist
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidParameter means a query parameter has an unusable value
	ErrInvalidParameter = errors.New("invalid parameter")
)
