package maintenance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	byOrg map[string][]*Task
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byOrg: make(map[string][]*Task)}
}

// Create inserts a new task.
func (r *MemoryRepo) Create(_ context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := task
	r.byOrg[task.OrganizationID] = append(r.byOrg[task.OrganizationID], &stored)
	return nil
}

// GetByID fetches a task scoped to an organization.
func (r *MemoryRepo) GetByID(_ context.Context, orgID, taskID string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, task := range r.byOrg[orgID] {
		if task.ID == taskID {
			return *task, nil
		}
	}
	return Task{}, ErrNotFound
}

// Update rewrites a stored task.
func (r *MemoryRepo) Update(_ context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.byOrg[task.OrganizationID] {
		if existing.ID == task.ID {
			updated := task
			updated.UpdatedAt = time.Now().UTC()
			r.byOrg[task.OrganizationID][i] = &updated
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a task.
func (r *MemoryRepo) Delete(_ context.Context, orgID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byOrg[orgID]
	for i, task := range list {
		if task.ID == taskID {
			r.byOrg[orgID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpsertByDeviceAndName updates the earliest matching task or inserts.
func (r *MemoryRepo) UpsertByDeviceAndName(_ context.Context, task Task) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var match *Task
	for _, existing := range r.byOrg[task.OrganizationID] {
		if existing.DeviceID == task.DeviceID && existing.TaskName == task.TaskName {
			if match == nil || existing.CreatedAt.Before(match.CreatedAt) ||
				(existing.CreatedAt.Equal(match.CreatedAt) && existing.ID < match.ID) {
				match = existing
			}
		}
	}
	if match != nil {
		match.ComponentName = task.ComponentName
		match.MaintenanceType = task.MaintenanceType
		match.Frequency = task.Frequency
		match.Priority = task.Priority
		match.Description = task.Description
		match.UpdatedAt = time.Now().UTC()
		return false, nil
	}

	stored := task
	r.byOrg[task.OrganizationID] = append(r.byOrg[task.OrganizationID], &stored)
	return true, nil
}

// ListByOrg lists all tasks for an organization ordered by due date.
func (r *MemoryRepo) ListByOrg(_ context.Context, orgID string) ([]Task, error) {
	return r.filter(orgID, func(*Task) bool { return true }), nil
}

// ListByDevice lists tasks for one device ordered by due date.
func (r *MemoryRepo) ListByDevice(_ context.Context, orgID, deviceID string) ([]Task, error) {
	return r.filter(orgID, func(t *Task) bool { return t.DeviceID == deviceID }), nil
}

// DueOn returns tasks due exactly on day.
func (r *MemoryRepo) DueOn(_ context.Context, orgID string, day time.Time) ([]Task, error) {
	target := DateOnly(day)
	return r.filter(orgID, func(t *Task) bool {
		return DateOnly(t.NextMaintenance).Equal(target)
	}), nil
}

// DueBetween returns tasks with after < nextMaintenance <= until.
func (r *MemoryRepo) DueBetween(_ context.Context, orgID string, after, until time.Time) ([]Task, error) {
	lo, hi := DateOnly(after), DateOnly(until)
	return r.filter(orgID, func(t *Task) bool {
		due := DateOnly(t.NextMaintenance)
		return due.After(lo) && !due.After(hi)
	}), nil
}

// Overdue returns PENDING tasks due strictly before day.
func (r *MemoryRepo) Overdue(_ context.Context, orgID string, day time.Time) ([]Task, error) {
	target := DateOnly(day)
	return r.filter(orgID, func(t *Task) bool {
		return t.Status == StatusPending && DateOnly(t.NextMaintenance).Before(target)
	}), nil
}

// RecentlyCompleted returns tasks whose last completed cycle is on or after since.
func (r *MemoryRepo) RecentlyCompleted(_ context.Context, orgID string, since time.Time) ([]Task, error) {
	cutoff := DateOnly(since)
	return r.filter(orgID, func(t *Task) bool {
		return t.LastCycleOutcome == OutcomeCompleted &&
			t.LastMaintenance != nil && !DateOnly(*t.LastMaintenance).Before(cutoff)
	}), nil
}

// MissingDeviceName returns tasks with no denormalized device name.
func (r *MemoryRepo) MissingDeviceName(_ context.Context, orgID string) ([]Task, error) {
	return r.filter(orgID, func(t *Task) bool { return t.DeviceName == "" }), nil
}

func (r *MemoryRepo) filter(orgID string, keep func(*Task) bool) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Task
	for _, task := range r.byOrg[orgID] {
		if keep(task) {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextMaintenance.Equal(out[j].NextMaintenance) {
			return out[i].NextMaintenance.Before(out[j].NextMaintenance)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

var _ Repo = (*MemoryRepo)(nil)
