package devices

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new device.
func (r *PGRepo) Create(ctx context.Context, device Device) error {
	const query = `
INSERT INTO devices (id, organization_id, name, device_type, location, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	status := device.Status
	if status == "" {
		status = "OFFLINE"
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		device.ID,
		device.OrganizationID,
		device.Name,
		device.DeviceType,
		device.Location,
		status,
		device.CreatedAt,
	)
	return err
}

// GetByID fetches a device by ID scoped to an organization.
func (r *PGRepo) GetByID(ctx context.Context, orgID, deviceID string) (Device, error) {
	const query = `
SELECT id, organization_id, name, device_type, location, status, created_at
FROM devices
WHERE organization_id = $1 AND id = $2
LIMIT 1`

	var device Device
	err := r.DB.QueryRowContext(ctx, query, orgID, deviceID).Scan(
		&device.ID,
		&device.OrganizationID,
		&device.Name,
		&device.DeviceType,
		&device.Location,
		&device.Status,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Device{}, ErrNotFound
		}
		return Device{}, err
	}
	return device, nil
}

// ListByOrg lists devices for an organization, newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string) ([]Device, error) {
	const query = `
SELECT id, organization_id, name, device_type, location, status, created_at
FROM devices
WHERE organization_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var device Device
		if err := rows.Scan(
			&device.ID,
			&device.OrganizationID,
			&device.Name,
			&device.DeviceType,
			&device.Location,
			&device.Status,
			&device.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, device)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
