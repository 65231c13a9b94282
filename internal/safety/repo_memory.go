package safety

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	byOrg map[string][]*Precaution
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byOrg: make(map[string][]*Precaution)}
}

// UpsertByDeviceAndTitle updates the earliest matching precaution or inserts.
func (r *MemoryRepo) UpsertByDeviceAndTitle(_ context.Context, precaution Precaution) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var match *Precaution
	for _, existing := range r.byOrg[precaution.OrganizationID] {
		if existing.DeviceID == precaution.DeviceID && existing.Title == precaution.Title {
			if match == nil || existing.CreatedAt.Before(match.CreatedAt) {
				match = existing
			}
		}
	}
	if match != nil {
		match.Description = precaution.Description
		match.Category = precaution.Category
		match.Severity = precaution.Severity
		match.UpdatedAt = time.Now().UTC()
		return false, nil
	}

	stored := precaution
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt
	r.byOrg[precaution.OrganizationID] = append(r.byOrg[precaution.OrganizationID], &stored)
	return true, nil
}

// ListByDevice lists precautions for one device, oldest-first.
func (r *MemoryRepo) ListByDevice(_ context.Context, orgID, deviceID string) ([]Precaution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Precaution
	for _, p := range r.byOrg[orgID] {
		if p.DeviceID == deviceID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListByOrg lists all precautions for an organization, newest-first.
func (r *MemoryRepo) ListByOrg(_ context.Context, orgID string) ([]Precaution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Precaution, 0, len(r.byOrg[orgID]))
	for _, p := range r.byOrg[orgID] {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a precaution.
func (r *MemoryRepo) Delete(_ context.Context, orgID, precautionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOrg[orgID]
	for i, p := range list {
		if p.ID == precautionID {
			r.byOrg[orgID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
