package rules

import (
	"context"
	"database/sql"
)

const ruleColumns = "id, organization_id, device_id, name, condition, action, priority, created_at, updated_at"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// UpsertByDeviceAndName updates in place, inserting only when no row matches.
// The table carries no unique constraint on (device_id, name): manually
// created duplicates stay possible, so the update targets the earliest row.
func (r *PGRepo) UpsertByDeviceAndName(ctx context.Context, rule Rule) (bool, error) {
	const update = `
UPDATE rules
SET condition = $1, action = $2, priority = $3, updated_at = now()
WHERE id = (
    SELECT id FROM rules
    WHERE organization_id = $4 AND device_id = $5 AND name = $6
    ORDER BY created_at ASC
    LIMIT 1
)`

	res, err := r.DB.ExecContext(ctx, update, rule.Condition, rule.Action, rule.Priority, rule.OrganizationID, rule.DeviceID, rule.Name)
	if err != nil {
		return false, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	const insert = `
INSERT INTO rules (id, organization_id, device_id, name, condition, action, priority, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err = r.DB.ExecContext(ctx, insert, rule.ID, rule.OrganizationID, rule.DeviceID, rule.Name, rule.Condition, rule.Action, rule.Priority)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByDevice lists rules for one device, oldest-first.
func (r *PGRepo) ListByDevice(ctx context.Context, orgID, deviceID string) ([]Rule, error) {
	const query = `
SELECT ` + ruleColumns + `
FROM rules
WHERE organization_id = $1 AND device_id = $2
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, orgID, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// ListByOrg lists all rules for an organization, newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string) ([]Rule, error) {
	const query = `
SELECT ` + ruleColumns + `
FROM rules
WHERE organization_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// Delete removes a rule.
func (r *PGRepo) Delete(ctx context.Context, orgID, ruleID string) error {
	const query = `DELETE FROM rules WHERE organization_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, orgID, ruleID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRules(rows *sql.Rows) ([]Rule, error) {
	var out []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.OrganizationID,
			&rule.DeviceID,
			&rule.Name,
			&rule.Condition,
			&rule.Action,
			&rule.Priority,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
