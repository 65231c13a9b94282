package maintenance

import (
	"context"
	"time"
)

// Repo persists maintenance tasks. Rows are mutated only through the
// service's lifecycle operations so the lastMaintenance/nextMaintenance/
// status invariants hold.
type Repo interface {
	Create(ctx context.Context, task Task) error
	GetByID(ctx context.Context, orgID, taskID string) (Task, error)
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, orgID, taskID string) error

	// UpsertByDeviceAndName updates the earliest task matching
	// (org, device, taskName) or inserts, reporting whether a new row was
	// created. Used by callback reconciliation for idempotent replays.
	UpsertByDeviceAndName(ctx context.Context, task Task) (bool, error)

	ListByOrg(ctx context.Context, orgID string) ([]Task, error)
	ListByDevice(ctx context.Context, orgID, deviceID string) ([]Task, error)

	// DueOn returns tasks whose nextMaintenance equals day.
	DueOn(ctx context.Context, orgID string, day time.Time) ([]Task, error)
	// DueBetween returns tasks with after < nextMaintenance <= until.
	DueBetween(ctx context.Context, orgID string, after, until time.Time) ([]Task, error)
	// Overdue returns PENDING tasks with nextMaintenance strictly before day.
	Overdue(ctx context.Context, orgID string, day time.Time) ([]Task, error)
	// RecentlyCompleted returns tasks whose last cycle completed on or after
	// since, regardless of current status.
	RecentlyCompleted(ctx context.Context, orgID string, since time.Time) ([]Task, error)
	// MissingDeviceName returns tasks with an empty denormalized device name.
	MissingDeviceName(ctx context.Context, orgID string) ([]Task, error)
}
