package users

import "time"

// User is a directory entry used for assignment and notification targeting.
type User struct {
	ID             string
	OrganizationID string
	Email          string
	Name           string
	CreatedAt      time.Time
}
