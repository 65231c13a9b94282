package safety

import (
	"context"
	"database/sql"
)

const precautionColumns = "id, organization_id, device_id, title, description, category, severity, created_at, updated_at"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// UpsertByDeviceAndTitle updates in place, inserting only when no row
// matches. Duplicates stay possible without a unique constraint, so the
// update targets the earliest row.
func (r *PGRepo) UpsertByDeviceAndTitle(ctx context.Context, precaution Precaution) (bool, error) {
	const update = `
UPDATE safety_precautions
SET description = $1, category = $2, severity = $3, updated_at = now()
WHERE id = (
    SELECT id FROM safety_precautions
    WHERE organization_id = $4 AND device_id = $5 AND title = $6
    ORDER BY created_at ASC
    LIMIT 1
)`

	res, err := r.DB.ExecContext(ctx, update, precaution.Description, precaution.Category, precaution.Severity, precaution.OrganizationID, precaution.DeviceID, precaution.Title)
	if err != nil {
		return false, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	const insert = `
INSERT INTO safety_precautions (id, organization_id, device_id, title, description, category, severity, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err = r.DB.ExecContext(ctx, insert, precaution.ID, precaution.OrganizationID, precaution.DeviceID, precaution.Title, precaution.Description, precaution.Category, precaution.Severity)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByDevice lists precautions for one device, oldest-first.
func (r *PGRepo) ListByDevice(ctx context.Context, orgID, deviceID string) ([]Precaution, error) {
	const query = `
SELECT ` + precautionColumns + `
FROM safety_precautions
WHERE organization_id = $1 AND device_id = $2
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, orgID, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrecautions(rows)
}

// ListByOrg lists all precautions for an organization, newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string) ([]Precaution, error) {
	const query = `
SELECT ` + precautionColumns + `
FROM safety_precautions
WHERE organization_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrecautions(rows)
}

// Delete removes a precaution.
func (r *PGRepo) Delete(ctx context.Context, orgID, precautionID string) error {
	const query = `DELETE FROM safety_precautions WHERE organization_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, orgID, precautionID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrecautions(rows *sql.Rows) ([]Precaution, error) {
	var out []Precaution
	for rows.Next() {
		var p Precaution
		if err := rows.Scan(
			&p.ID,
			&p.OrganizationID,
			&p.DeviceID,
			&p.Title,
			&p.Description,
			&p.Category,
			&p.Severity,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
