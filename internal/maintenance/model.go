package maintenance

import (
	"strings"
	"time"
)

// Task status values. Recurring tasks cycle back to PENDING on completion;
// COMPLETED is terminal and only reached when the frequency is non-recurring.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

// Last-cycle outcome values. A recurring task that was just completed resets
// to PENDING, so the outcome marker is what keeps it visible in
// recently-completed queries.
const (
	OutcomeNone      = "NONE"
	OutcomeCompleted = "COMPLETED"
)

// Priority levels.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Task is one maintenance item for a device. Date fields hold midnight UTC;
// NextMaintenance is the sole authority for due/overdue classification.
type Task struct {
	ID               string
	OrganizationID   string
	DeviceID         string
	DeviceName       string
	TaskName         string
	ComponentName    string
	MaintenanceType  string
	Frequency        string
	LastMaintenance  *time.Time
	NextMaintenance  time.Time
	Priority         string
	Status           string
	LastCycleOutcome string
	AssignedTo       *string
	AssignedBy       *string
	AssignedAt       *time.Time
	Description      string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizePriority maps free-form priority text onto the known levels,
// case-insensitively, defaulting to MEDIUM.
func NormalizePriority(raw string) string {
	switch normalized := strings.ToUpper(strings.TrimSpace(raw)); normalized {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return normalized
	}
	return PriorityMedium
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
