package devices

import "time"

// Device represents a registered IoT device owned by an organization.
type Device struct {
	ID             string
	OrganizationID string
	Name           string
	DeviceType     string
	Location       string
	Status         string
	CreatedAt      time.Time
}
