package rules

import "context"

// Repo persists rules.
type Repo interface {
	// UpsertByDeviceAndName updates the rule matching (org, device, name) or
	// inserts a new one. It reports whether a new row was created, which is
	// what makes callback replays idempotent.
	UpsertByDeviceAndName(ctx context.Context, rule Rule) (bool, error)
	ListByDevice(ctx context.Context, orgID, deviceID string) ([]Rule, error)
	ListByOrg(ctx context.Context, orgID string) ([]Rule, error)
	Delete(ctx context.Context, orgID, ruleID string) error
}
