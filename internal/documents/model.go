package documents

import "time"

// Processing status values. Transitions only move forward:
// PENDING -> PROCESSING -> {COMPLETED, FAILED}.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Document represents an uploaded manual tracked through external analysis.
// DeviceID is empty for organization-wide ("general") documents.
type Document struct {
	ID               string
	OrganizationID   string
	DeviceID         string
	Name             string
	OriginalFilename string
	SizeBytes        int64
	Status           string
	Vectorized       bool
	ChunksProcessed  *int
	ProcessingTime   string
	CollectionName   string
	StorageKey       string
	UploadedAt       time.Time
	ProcessedAt      *time.Time
}

// ProcessingResult carries the fields a completion callback may supply.
// Nil pointers mean "not supplied" and must leave stored values untouched.
type ProcessingResult struct {
	Status          string
	ChunksProcessed *int
	ProcessingTime  *string
	CollectionName  *string
	ProcessedAt     time.Time
}

// StatusRank orders statuses along the allowed transition path.
func StatusRank(status string) int {
	switch status {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}
