package rules

import "time"

// Rule is an automation rule generated from a device manual.
type Rule struct {
	ID             string
	OrganizationID string
	DeviceID       string
	Name           string
	Condition      string
	Action         string
	Priority       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
