package devices

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for the device directory.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register creates a new device record.
func (s *Service) Register(ctx context.Context, orgID, name, deviceType, location string) (Device, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(name) == "" {
		return Device{}, ErrInvalidInput
	}

	device := Device{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           strings.TrimSpace(name),
		DeviceType:     strings.TrimSpace(deviceType),
		Location:       strings.TrimSpace(location),
		Status:         "OFFLINE",
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, device); err != nil {
		return Device{}, err
	}
	return device, nil
}

// Get returns a device by ID.
func (s *Service) Get(ctx context.Context, orgID, deviceID string) (Device, error) {
	if orgID == "" || deviceID == "" {
		return Device{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, orgID, deviceID)
}

// List returns all devices for an organization.
func (s *Service) List(ctx context.Context, orgID string) ([]Device, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOrg(ctx, orgID)
}

// NameOf resolves a device's display name, returning "" if the device is unknown.
func (s *Service) NameOf(ctx context.Context, orgID, deviceID string) string {
	device, err := s.Repo.GetByID(ctx, orgID, deviceID)
	if err != nil {
		return ""
	}
	return device.Name
}
