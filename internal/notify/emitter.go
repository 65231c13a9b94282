package notify

import (
	"context"

	"iotplatform-backend/internal/shared/telemetry"
)

// Notification describes one device event worth telling users about.
// UserID targets a specific user when the event concerns one (an assignment);
// empty means the gate decides the audience from the organization and device.
type Notification struct {
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId,omitempty"`
	DeviceID       string `json:"deviceId,omitempty"`
	DeviceName     string `json:"deviceName,omitempty"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

// Notification categories emitted by reconciliation.
const (
	CategoryRulesGenerated       = "RULES_GENERATED"
	CategoryMaintenanceGenerated = "MAINTENANCE_GENERATED"
	CategorySafetyGenerated      = "SAFETY_GENERATED"
	CategoryMaintenanceDue       = "MAINTENANCE_DUE"
)

// Gate is the external preference-and-delivery collaborator. It decides per
// user whether the notification goes out; this service never sees the
// preference data itself.
type Gate interface {
	Deliver(ctx context.Context, n Notification) error
}

// Emitter sends notifications on a best-effort basis. Delivery failure must
// never fail the operation that triggered it.
type Emitter struct {
	Gate Gate
}

// Emit forwards the notification to the gate, swallowing any error after
// logging it.
func (e *Emitter) Emit(ctx context.Context, n Notification) {
	if e == nil || e.Gate == nil {
		return
	}
	if err := e.Gate.Deliver(ctx, n); err != nil {
		telemetry.Warn("notify.delivery_failed", map[string]any{
			"org_id":   n.OrganizationID,
			"category": n.Category,
			"title":    n.Title,
			"error":    err.Error(),
		})
	}
}
