package reconcile

// Reconciliation outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "processing_failed"
	OutcomeNoMatch   = "no_match"
)

// Result is the structured outcome of one callback. A no-match is a
// loggable condition, not an error.
type Result struct {
	Outcome    string
	Message    string
	DocumentID string
	DeviceID   string

	CreatedRules       int
	CreatedTasks       int
	CreatedPrecautions int
}
