package users

import "context"

// Repo defines persistence operations for the user directory.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, orgID, userID string) (User, error)
	ListByOrg(ctx context.Context, orgID string) ([]User, error)
}
