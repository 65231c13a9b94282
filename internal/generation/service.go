package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"iotplatform-backend/internal/documents"
	"iotplatform-backend/internal/shared/metrics"
	"iotplatform-backend/internal/shared/telemetry"
)

// Generator sends a generation request to the external service.
type Generator interface {
	Generate(ctx context.Context, kind, pdfName, deviceID, orgID string) error
}

// Service contains business logic for dispatching generation jobs.
type Service struct {
	Docs   documents.Repo
	Client Generator
}

// Dispatch validates the request, confirms the referenced document exists,
// and forwards the generation to the external service. The returned task is
// always PENDING; terminal outcomes arrive later through the callback path.
func (s *Service) Dispatch(ctx context.Context, orgID, kind, pdfName, deviceID string) (Task, error) {
	if !ValidKind(kind) {
		return Task{}, ErrInvalidKind
	}
	pdfName = strings.TrimSpace(pdfName)
	if orgID == "" || pdfName == "" {
		return Task{}, ErrInvalidInput
	}

	doc, err := s.Docs.GetByNameAndOrg(ctx, orgID, pdfName)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return Task{}, documents.ErrNotFound
		}
		return Task{}, err
	}
	if deviceID == "" {
		deviceID = doc.DeviceID
	}

	if err := s.Client.Generate(ctx, kind, pdfName, deviceID, orgID); err != nil {
		metrics.IncGenerationFailed()
		telemetry.Error("generation.dispatch_failed", map[string]any{
			"org_id":   orgID,
			"kind":     kind,
			"pdf_name": pdfName,
			"error":    err.Error(),
		})
		return Task{}, err
	}

	task := Task{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Kind:           kind,
		PDFName:        pdfName,
		DeviceID:       deviceID,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	metrics.IncGenerationDispatched()
	telemetry.Info("generation.dispatched", map[string]any{
		"org_id":   orgID,
		"kind":     kind,
		"pdf_name": pdfName,
		"taskId":   task.ID,
	})

	return task, nil
}
