package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const taskColumns = `id, organization_id, device_id, device_name, task_name, component_name,
maintenance_type, frequency, last_maintenance, next_maintenance, priority, status,
last_cycle_outcome, assigned_to, assigned_by, assigned_at, description, notes,
created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new task.
func (r *PGRepo) Create(ctx context.Context, task Task) error {
	const query = `
INSERT INTO maintenance_tasks (` + taskColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.DB.ExecContext(ctx, query, taskArgs(task)...)
	return err
}

// GetByID fetches a task scoped to an organization.
func (r *PGRepo) GetByID(ctx context.Context, orgID, taskID string) (Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND id = $2
LIMIT 1`

	task, err := scanTask(r.DB.QueryRowContext(ctx, query, orgID, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

// Update rewrites all mutable columns of a task.
func (r *PGRepo) Update(ctx context.Context, task Task) error {
	const query = `
UPDATE maintenance_tasks
SET device_name = $1, task_name = $2, component_name = $3, maintenance_type = $4,
    frequency = $5, last_maintenance = $6, next_maintenance = $7, priority = $8,
    status = $9, last_cycle_outcome = $10, assigned_to = $11, assigned_by = $12,
    assigned_at = $13, description = $14, notes = $15, updated_at = now()
WHERE organization_id = $16 AND id = $17`

	res, err := r.DB.ExecContext(ctx, query,
		task.DeviceName,
		task.TaskName,
		task.ComponentName,
		task.MaintenanceType,
		task.Frequency,
		nullTime(task.LastMaintenance),
		task.NextMaintenance,
		task.Priority,
		task.Status,
		task.LastCycleOutcome,
		nullString(task.AssignedTo),
		nullString(task.AssignedBy),
		nullTime(task.AssignedAt),
		task.Description,
		task.Notes,
		task.OrganizationID,
		task.ID,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (r *PGRepo) Delete(ctx context.Context, orgID, taskID string) error {
	const query = `DELETE FROM maintenance_tasks WHERE organization_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, orgID, taskID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertByDeviceAndName updates the earliest row matching
// (org, device, task_name) or inserts. Duplicates stay representable, so the
// update picks one deterministic target.
func (r *PGRepo) UpsertByDeviceAndName(ctx context.Context, task Task) (bool, error) {
	const update = `
UPDATE maintenance_tasks
SET component_name = $1, maintenance_type = $2, frequency = $3, priority = $4,
    description = $5, updated_at = now()
WHERE id = (
    SELECT id FROM maintenance_tasks
    WHERE organization_id = $6 AND device_id = $7 AND task_name = $8
    ORDER BY created_at ASC, id ASC
    LIMIT 1
)`

	res, err := r.DB.ExecContext(ctx, update,
		task.ComponentName,
		task.MaintenanceType,
		task.Frequency,
		task.Priority,
		task.Description,
		task.OrganizationID,
		task.DeviceID,
		task.TaskName,
	)
	if err != nil {
		return false, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	const insert = `
INSERT INTO maintenance_tasks (` + taskColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	if _, err := r.DB.ExecContext(ctx, insert, taskArgs(task)...); err != nil {
		return false, err
	}
	return true, nil
}

// ListByOrg lists all tasks for an organization ordered by due date.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1
ORDER BY next_maintenance ASC, created_at ASC`

	return r.queryTasks(ctx, query, orgID)
}

// ListByDevice lists tasks for one device ordered by due date.
func (r *PGRepo) ListByDevice(ctx context.Context, orgID, deviceID string) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND device_id = $2
ORDER BY next_maintenance ASC, created_at ASC`

	return r.queryTasks(ctx, query, orgID, deviceID)
}

// DueOn returns tasks due exactly on day.
func (r *PGRepo) DueOn(ctx context.Context, orgID string, day time.Time) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND next_maintenance = $2
ORDER BY created_at ASC`

	return r.queryTasks(ctx, query, orgID, DateOnly(day))
}

// DueBetween returns tasks with after < next_maintenance <= until.
func (r *PGRepo) DueBetween(ctx context.Context, orgID string, after, until time.Time) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND next_maintenance > $2 AND next_maintenance <= $3
ORDER BY next_maintenance ASC, created_at ASC`

	return r.queryTasks(ctx, query, orgID, DateOnly(after), DateOnly(until))
}

// Overdue returns PENDING tasks due strictly before day.
func (r *PGRepo) Overdue(ctx context.Context, orgID string, day time.Time) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND next_maintenance < $2 AND status = $3
ORDER BY next_maintenance ASC, created_at ASC`

	return r.queryTasks(ctx, query, orgID, DateOnly(day), StatusPending)
}

// RecentlyCompleted returns tasks whose last completed cycle is on or after
// since. The outcome marker keeps recurring tasks visible after their status
// reset to PENDING.
func (r *PGRepo) RecentlyCompleted(ctx context.Context, orgID string, since time.Time) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND last_maintenance IS NOT NULL
  AND last_maintenance >= $2 AND last_cycle_outcome = $3
ORDER BY last_maintenance DESC, created_at ASC`

	return r.queryTasks(ctx, query, orgID, DateOnly(since), OutcomeCompleted)
}

// MissingDeviceName returns tasks with no denormalized device name.
func (r *PGRepo) MissingDeviceName(ctx context.Context, orgID string) ([]Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM maintenance_tasks
WHERE organization_id = $1 AND device_name = ''
ORDER BY created_at ASC`

	return r.queryTasks(ctx, query, orgID)
}

func (r *PGRepo) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		task       Task
		lastMaint  sql.NullTime
		assignedTo sql.NullString
		assignedBy sql.NullString
		assignedAt sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.OrganizationID,
		&task.DeviceID,
		&task.DeviceName,
		&task.TaskName,
		&task.ComponentName,
		&task.MaintenanceType,
		&task.Frequency,
		&lastMaint,
		&task.NextMaintenance,
		&task.Priority,
		&task.Status,
		&task.LastCycleOutcome,
		&assignedTo,
		&assignedBy,
		&assignedAt,
		&task.Description,
		&task.Notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if lastMaint.Valid {
		t := lastMaint.Time
		task.LastMaintenance = &t
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.String
	}
	if assignedBy.Valid {
		task.AssignedBy = &assignedBy.String
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		task.AssignedAt = &t
	}
	return task, nil
}

func taskArgs(task Task) []any {
	return []any{
		task.ID,
		task.OrganizationID,
		task.DeviceID,
		task.DeviceName,
		task.TaskName,
		task.ComponentName,
		task.MaintenanceType,
		task.Frequency,
		nullTime(task.LastMaintenance),
		task.NextMaintenance,
		task.Priority,
		task.Status,
		task.LastCycleOutcome,
		nullString(task.AssignedTo),
		nullString(task.AssignedBy),
		nullTime(task.AssignedAt),
		task.Description,
		task.Notes,
		task.CreatedAt,
		task.UpdatedAt,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
