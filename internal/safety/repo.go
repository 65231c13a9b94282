package safety

import "context"

// Repo persists safety precautions.
type Repo interface {
	// UpsertByDeviceAndTitle updates the precaution matching
	// (org, device, title) or inserts a new one, reporting whether a new row
	// was created.
	UpsertByDeviceAndTitle(ctx context.Context, precaution Precaution) (bool, error)
	ListByDevice(ctx context.Context, orgID, deviceID string) ([]Precaution, error)
	ListByOrg(ctx context.Context, orgID string) ([]Precaution, error)
	Delete(ctx context.Context, orgID, precautionID string) error
}
