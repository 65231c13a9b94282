package users

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]User // orgID -> users
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]User)}
}

// Create stores a user for an organization.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[user.OrganizationID] = append(r.data[user.OrganizationID], user)
	return nil
}

// GetByID returns a user by ID scoped to an organization.
func (r *MemoryRepo) GetByID(ctx context.Context, orgID, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data[orgID] {
		if user.ID == userID {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// ListByOrg returns users for an organization.
func (r *MemoryRepo) ListByOrg(ctx context.Context, orgID string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, len(r.data[orgID]))
	copy(out, r.data[orgID])
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
