package generation

import "time"

// Kinds of generation a document can be sent through. Each kind runs
// independently on the external service.
const (
	KindRules       = "rules"
	KindMaintenance = "maintenance"
	KindSafety      = "safety"
)

// Task records one accepted generation request. Results arrive later via
// the callback path, so a task only ever reports the accepted state.
type Task struct {
	ID             string    `json:"taskId"`
	OrganizationID string    `json:"-"`
	Kind           string    `json:"kind"`
	PDFName        string    `json:"pdfName"`
	DeviceID       string    `json:"deviceId,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StatusPending is the only status a dispatched task carries. Terminal
// outcomes are reconciled from callbacks, not tracked on the task.
const StatusPending = "PENDING"

// ValidKind reports whether kind names a supported generation.
func ValidKind(kind string) bool {
	switch kind {
	case KindRules, KindMaintenance, KindSafety:
		return true
	}
	return false
}
