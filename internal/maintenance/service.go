package maintenance

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"iotplatform-backend/internal/devices"
	"iotplatform-backend/internal/notify"
	"iotplatform-backend/internal/shared/metrics"
	"iotplatform-backend/internal/shared/telemetry"
	"iotplatform-backend/internal/users"
)

// Service owns the maintenance task lifecycle.
type Service struct {
	Repo    Repo
	Devices *devices.Service
	Users   *users.Service
	Notify  *notify.Emitter
}

// Create registers a manually entered task. NextMaintenance is computed from
// the frequency when the caller does not supply one; non-recurring tasks with
// no explicit date fall due today.
func (s *Service) Create(ctx context.Context, task Task) (Task, error) {
	task.TaskName = strings.TrimSpace(task.TaskName)
	if task.OrganizationID == "" || task.DeviceID == "" || task.TaskName == "" {
		return Task{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	today := DateOnly(now)

	task.ID = uuid.NewString()
	task.Priority = NormalizePriority(task.Priority)
	task.Status = StatusPending
	task.LastCycleOutcome = OutcomeNone
	task.LastMaintenance = nil
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.MaintenanceType == "" {
		task.MaintenanceType = "GENERAL"
	}
	if task.NextMaintenance.IsZero() {
		if freq, ok := ParseFrequency(task.Frequency); ok {
			task.NextMaintenance = freq.Next(today)
		} else {
			task.NextMaintenance = today
		}
	} else {
		task.NextMaintenance = DateOnly(task.NextMaintenance)
	}
	if task.DeviceName == "" && s.Devices != nil {
		task.DeviceName = s.Devices.NameOf(ctx, task.OrganizationID, task.DeviceID)
	}

	if err := s.Repo.Create(ctx, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UpsertGenerated folds one generated maintenance entry into the store,
// reporting whether it created a new task. Replays of the same callback hit
// the update path and leave the row count unchanged.
func (s *Service) UpsertGenerated(ctx context.Context, task Task) (bool, error) {
	task.TaskName = strings.TrimSpace(task.TaskName)
	if task.OrganizationID == "" || task.DeviceID == "" || task.TaskName == "" {
		return false, ErrInvalidInput
	}

	now := time.Now().UTC()
	today := DateOnly(now)

	task.ID = uuid.NewString()
	task.Priority = NormalizePriority(task.Priority)
	task.Status = StatusPending
	task.LastCycleOutcome = OutcomeNone
	task.LastMaintenance = nil
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.MaintenanceType == "" {
		task.MaintenanceType = "GENERAL"
	}
	if freq, ok := ParseFrequency(task.Frequency); ok {
		task.NextMaintenance = freq.Next(today)
	} else {
		task.NextMaintenance = today
	}
	if task.DeviceName == "" && s.Devices != nil {
		task.DeviceName = s.Devices.NameOf(ctx, task.OrganizationID, task.DeviceID)
	}

	return s.Repo.UpsertByDeviceAndName(ctx, task)
}

// TaskPatch carries the editable fields of a task. Nil pointers leave the
// stored value untouched.
type TaskPatch struct {
	TaskName        *string
	ComponentName   *string
	MaintenanceType *string
	Frequency       *string
	NextMaintenance *time.Time
	Priority        *string
	Description     *string
	Notes           *string
}

// UpdateDetails edits a task's descriptive fields. Lifecycle fields (status,
// lastMaintenance, assignment) are owned by Complete and Assign. A frequency
// change without an explicit date recomputes the due date from today.
func (s *Service) UpdateDetails(ctx context.Context, orgID, taskID string, patch TaskPatch) (Task, error) {
	task, err := s.Repo.GetByID(ctx, orgID, taskID)
	if err != nil {
		return Task{}, err
	}

	if patch.TaskName != nil {
		name := strings.TrimSpace(*patch.TaskName)
		if name == "" {
			return Task{}, ErrInvalidInput
		}
		task.TaskName = name
	}
	if patch.ComponentName != nil {
		task.ComponentName = *patch.ComponentName
	}
	if patch.MaintenanceType != nil {
		task.MaintenanceType = *patch.MaintenanceType
	}
	if patch.Priority != nil {
		task.Priority = NormalizePriority(*patch.Priority)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Notes != nil {
		task.Notes = *patch.Notes
	}
	if patch.Frequency != nil {
		task.Frequency = *patch.Frequency
		if patch.NextMaintenance == nil {
			if freq, ok := ParseFrequency(task.Frequency); ok {
				task.NextMaintenance = freq.Next(DateOnly(time.Now().UTC()))
			}
		}
	}
	if patch.NextMaintenance != nil {
		task.NextMaintenance = DateOnly(*patch.NextMaintenance)
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Get returns a task by ID.
func (s *Service) Get(ctx context.Context, orgID, taskID string) (Task, error) {
	if orgID == "" || taskID == "" {
		return Task{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, orgID, taskID)
}

// List returns all tasks for an organization.
func (s *Service) List(ctx context.Context, orgID string) ([]Task, error) {
	return s.Repo.ListByOrg(ctx, orgID)
}

// ListByDevice returns all tasks for one device.
func (s *Service) ListByDevice(ctx context.Context, orgID, deviceID string) ([]Task, error) {
	return s.Repo.ListByDevice(ctx, orgID, deviceID)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, orgID, taskID string) error {
	if orgID == "" || taskID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, orgID, taskID)
}

// Complete closes the current cycle: lastMaintenance becomes today and
// nextMaintenance advances by one frequency interval. Recurring tasks reset
// to PENDING; a missing or unparseable frequency means terminal COMPLETED
// rather than a failed call.
func (s *Service) Complete(ctx context.Context, orgID, taskID, completedBy string) (Task, error) {
	task, err := s.Repo.GetByID(ctx, orgID, taskID)
	if err != nil {
		return Task{}, err
	}

	today := DateOnly(time.Now().UTC())
	task.LastMaintenance = &today
	task.LastCycleOutcome = OutcomeCompleted

	if freq, ok := ParseFrequency(task.Frequency); ok {
		task.NextMaintenance = freq.Next(today)
		task.Status = StatusPending
	} else {
		task.Status = StatusCompleted
	}

	if err := s.Repo.Update(ctx, task); err != nil {
		return Task{}, err
	}

	metrics.IncMaintenanceCompleted()
	telemetry.Info("maintenance.completed", map[string]any{
		"org_id":       orgID,
		"taskId":       taskID,
		"recurring":    task.Status == StatusPending,
		"completed_by": completedBy,
		"next":         task.NextMaintenance.Format("2006-01-02"),
	})

	return task, nil
}

// Assign hands the task to a user. The assignee must exist; the actor is
// recorded for audit. A notification is requested on a best-effort basis.
func (s *Service) Assign(ctx context.Context, orgID, taskID, assigneeID, actorID string) (Task, error) {
	if assigneeID == "" {
		return Task{}, ErrInvalidInput
	}

	task, err := s.Repo.GetByID(ctx, orgID, taskID)
	if err != nil {
		return Task{}, err
	}

	if s.Users != nil {
		exists, err := s.Users.Exists(ctx, orgID, assigneeID)
		if err != nil {
			return Task{}, err
		}
		if !exists {
			return Task{}, ErrAssigneeNotFound
		}
	}

	now := time.Now().UTC()
	task.AssignedTo = &assigneeID
	task.AssignedAt = &now
	if actorID != "" {
		task.AssignedBy = &actorID
	} else {
		task.AssignedBy = nil
	}

	if err := s.Repo.Update(ctx, task); err != nil {
		return Task{}, err
	}

	s.Notify.Emit(ctx, notify.Notification{
		OrganizationID: orgID,
		UserID:         assigneeID,
		DeviceID:       task.DeviceID,
		DeviceName:     task.DeviceName,
		Category:       notify.CategoryMaintenanceDue,
		Title:          "Maintenance task assigned",
		Message:        task.TaskName + " assigned to " + assigneeID,
	})

	return task, nil
}

// Today returns tasks due exactly today.
func (s *Service) Today(ctx context.Context, orgID string) ([]Task, error) {
	return s.Repo.DueOn(ctx, orgID, time.Now().UTC())
}

// Tomorrow returns tasks due exactly tomorrow.
func (s *Service) Tomorrow(ctx context.Context, orgID string) ([]Task, error) {
	return s.Repo.DueOn(ctx, orgID, DateOnly(time.Now().UTC()).AddDate(0, 0, 1))
}

// NextNDays returns tasks with today < due <= today+n. Tasks due today are
// "due today", not "upcoming".
func (s *Service) NextNDays(ctx context.Context, orgID string, n int) ([]Task, error) {
	if n <= 0 {
		return nil, ErrInvalidInput
	}
	today := DateOnly(time.Now().UTC())
	return s.Repo.DueBetween(ctx, orgID, today, today.AddDate(0, 0, n))
}

// Overdue returns PENDING tasks due strictly before today.
func (s *Service) Overdue(ctx context.Context, orgID string) ([]Task, error) {
	return s.Repo.Overdue(ctx, orgID, time.Now().UTC())
}

// RecentlyCompleted returns tasks whose last cycle completed within n days,
// including recurring tasks whose status has reset to PENDING.
func (s *Service) RecentlyCompleted(ctx context.Context, orgID string, n int) ([]Task, error) {
	if n <= 0 {
		return nil, ErrInvalidInput
	}
	since := DateOnly(time.Now().UTC()).AddDate(0, 0, -n)
	return s.Repo.RecentlyCompleted(ctx, orgID, since)
}

// RemoveDuplicates deletes tasks sharing (deviceId, taskName,
// maintenanceType), keeping the earliest-created of each group. Running it
// on clean data is a no-op.
func (s *Service) RemoveDuplicates(ctx context.Context, orgID, deviceID string) (int, error) {
	if orgID == "" || deviceID == "" {
		return 0, ErrInvalidInput
	}

	tasks, err := s.Repo.ListByDevice(ctx, orgID, deviceID)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]Task)
	for _, task := range tasks {
		key := task.TaskName + "\x00" + task.MaintenanceType
		groups[key] = append(groups[key], task)
	}

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})
		for _, task := range group[1:] {
			if err := s.Repo.Delete(ctx, orgID, task.ID); err != nil {
				return removed, err
			}
			removed++
		}
	}

	if removed > 0 {
		telemetry.Info("maintenance.duplicates_removed", map[string]any{
			"org_id":   orgID,
			"deviceId": deviceID,
			"removed":  removed,
		})
	}
	return removed, nil
}

// BackfillDeviceNames fills the denormalized device name on tasks missing
// it. A data-repair utility, not part of the hot path.
func (s *Service) BackfillDeviceNames(ctx context.Context, orgID string) (int, error) {
	if orgID == "" {
		return 0, ErrInvalidInput
	}

	tasks, err := s.Repo.MissingDeviceName(ctx, orgID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, task := range tasks {
		name := s.Devices.NameOf(ctx, orgID, task.DeviceID)
		if name == "" {
			continue
		}
		task.DeviceName = name
		if err := s.Repo.Update(ctx, task); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
