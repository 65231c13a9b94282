package rules

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	byOrg map[string][]*Rule
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byOrg: make(map[string][]*Rule)}
}

// UpsertByDeviceAndName updates the earliest matching rule or inserts.
func (r *MemoryRepo) UpsertByDeviceAndName(_ context.Context, rule Rule) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var match *Rule
	for _, existing := range r.byOrg[rule.OrganizationID] {
		if existing.DeviceID == rule.DeviceID && existing.Name == rule.Name {
			if match == nil || existing.CreatedAt.Before(match.CreatedAt) {
				match = existing
			}
		}
	}
	if match != nil {
		match.Condition = rule.Condition
		match.Action = rule.Action
		match.Priority = rule.Priority
		match.UpdatedAt = time.Now().UTC()
		return false, nil
	}

	stored := rule
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt
	r.byOrg[rule.OrganizationID] = append(r.byOrg[rule.OrganizationID], &stored)
	return true, nil
}

// ListByDevice lists rules for one device, oldest-first.
func (r *MemoryRepo) ListByDevice(_ context.Context, orgID, deviceID string) ([]Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Rule
	for _, rule := range r.byOrg[orgID] {
		if rule.DeviceID == deviceID {
			out = append(out, *rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListByOrg lists all rules for an organization, newest-first.
func (r *MemoryRepo) ListByOrg(_ context.Context, orgID string) ([]Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, 0, len(r.byOrg[orgID]))
	for _, rule := range r.byOrg[orgID] {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a rule.
func (r *MemoryRepo) Delete(_ context.Context, orgID, ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOrg[orgID]
	for i, rule := range list {
		if rule.ID == ruleID {
			r.byOrg[orgID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
