package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, organization_id, email, name, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query, user.ID, user.OrganizationID, user.Email, user.Name, user.CreatedAt)
	return err
}

// GetByID fetches a user by ID scoped to an organization.
func (r *PGRepo) GetByID(ctx context.Context, orgID, userID string) (User, error) {
	const query = `
SELECT id, organization_id, email, name, created_at
FROM users
WHERE organization_id = $1 AND id = $2
LIMIT 1`

	var user User
	err := r.DB.QueryRowContext(ctx, query, orgID, userID).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// ListByOrg lists users for an organization.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string) ([]User, error) {
	const query = `
SELECT id, organization_id, email, name, created_at
FROM users
WHERE organization_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Name, &user.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
