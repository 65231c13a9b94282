package devices

import "context"

// Repo defines persistence operations for devices.
type Repo interface {
	Create(ctx context.Context, device Device) error
	GetByID(ctx context.Context, orgID, deviceID string) (Device, error)
	ListByOrg(ctx context.Context, orgID string) ([]Device, error)
}
