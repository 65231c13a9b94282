package documents

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"iotplatform-backend/internal/shared/storage/object"
	"iotplatform-backend/internal/shared/telemetry"
)

// Forwarder sends an uploaded manual to the external document-intelligence
// service for ingestion. Implemented by the generation client.
type Forwarder interface {
	UploadPDF(ctx context.Context, orgID, fileName string, r io.Reader) (pdfName string, chunksProcessed int, err error)
}

// Service contains business logic for the document store.
type Service struct {
	Store      object.ObjectStore
	Repo       Repo
	Forwarder  Forwarder
	StaleAfter time.Duration
}

// Upload persists the file, records the document in PENDING, and forwards it
// to the external service. A successful forward moves the document to
// PROCESSING; a failed forward leaves it PENDING so the client can retry the
// generation step later.
func (s *Service) Upload(ctx context.Context, orgID, deviceID, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(fileName) == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, _, err := s.Store.Save(ctx, orgID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:               uuid.NewString(),
		OrganizationID:   orgID,
		DeviceID:         deviceID,
		Name:             fileName,
		OriginalFilename: fileName,
		SizeBytes:        size,
		Status:           StatusPending,
		UploadedAt:       time.Now().UTC(),
		StorageKey:       storageKey,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	if s.Forwarder != nil {
		stored, err := s.Store.Open(ctx, storageKey)
		if err != nil {
			// Document stays PENDING; the generation step can retry later.
			telemetry.Warn("document.forward_skipped", map[string]any{
				"document_id": doc.ID,
				"org_id":      orgID,
				"storage_key": storageKey,
				"error":       err.Error(),
			})
			return doc, nil
		}
		defer stored.Close()

		pdfName, chunks, err := s.Forwarder.UploadPDF(ctx, orgID, fileName, stored)
		if err != nil {
			telemetry.Warn("document.forward_failed", map[string]any{
				"document_id": doc.ID,
				"org_id":      orgID,
				"error":       err.Error(),
			})
			return doc, nil
		}

		if _, err := s.Repo.MarkProcessing(ctx, doc.ID); err != nil {
			return doc, err
		}
		doc.Status = StatusProcessing
		telemetry.Info("document.forwarded", map[string]any{
			"document_id": doc.ID,
			"org_id":      orgID,
			"pdf_name":    pdfName,
			"chunks":      chunks,
		})
	}

	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, orgID, documentID string) (Document, error) {
	if orgID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, orgID, documentID)
}

// List returns documents for an organization, newest-first.
func (s *Service) List(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.List(ctx, orgID, limit, offset)
}

// Delete soft-deletes a document, preserving the row for callback correlation.
func (s *Service) Delete(ctx context.Context, orgID, documentID string) error {
	if orgID == "" || documentID == "" {
		return ErrInvalidInput
	}
	return s.Repo.SoftDelete(ctx, orgID, documentID)
}

// Stale returns documents stuck in PROCESSING past the staleness threshold.
// They are surfaced for operator inspection, never auto-failed.
func (s *Service) Stale(ctx context.Context, orgID string) ([]Document, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	threshold := s.StaleAfter
	if threshold <= 0 {
		threshold = 30 * time.Minute
	}
	return s.Repo.StaleProcessing(ctx, orgID, time.Now().UTC().Add(-threshold))
}
