package devices

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Device // orgID -> devices
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Device)}
}

// Create stores a device for an organization.
func (r *MemoryRepo) Create(ctx context.Context, device Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[device.OrganizationID] = append(r.data[device.OrganizationID], device)
	return nil
}

// GetByID returns a device by ID scoped to an organization.
func (r *MemoryRepo) GetByID(ctx context.Context, orgID, deviceID string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, device := range r.data[orgID] {
		if device.ID == deviceID {
			return device, nil
		}
	}
	return Device{}, ErrNotFound
}

// ListByOrg returns devices for an organization, newest-first.
func (r *MemoryRepo) ListByOrg(ctx context.Context, orgID string) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, len(r.data[orgID]))
	copy(out, r.data[orgID])
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
