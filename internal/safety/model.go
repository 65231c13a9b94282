package safety

import "time"

// Precaution is a safety precaution generated from a device manual.
type Precaution struct {
	ID             string
	OrganizationID string
	DeviceID       string
	Title          string
	Description    string
	Category       string
	Severity       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
