package users

import (
	"context"
	"errors"
)

// Service exposes directory lookups used by assignment and notifications.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, orgID, userID string) (User, error) {
	if orgID == "" || userID == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, orgID, userID)
}

// Exists reports whether a user exists in the organization.
func (s *Service) Exists(ctx context.Context, orgID, userID string) (bool, error) {
	_, err := s.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns users for an organization.
func (s *Service) List(ctx context.Context, orgID string) ([]User, error) {
	return s.Repo.ListByOrg(ctx, orgID)
}
