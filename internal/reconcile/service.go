package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"iotplatform-backend/internal/documents"
	"iotplatform-backend/internal/maintenance"
	"iotplatform-backend/internal/notify"
	"iotplatform-backend/internal/rules"
	"iotplatform-backend/internal/safety"
	"iotplatform-backend/internal/shared/metrics"
	"iotplatform-backend/internal/shared/telemetry"
)

// ErrInvalidCallback is returned when the callback is missing its document
// name. Such a callback can never be matched, so retrying it is pointless.
var ErrInvalidCallback = errors.New("callback pdfName is required")

// Service folds out-of-band completion callbacks into per-device state.
type Service struct {
	Docs        documents.Repo
	Maintenance *maintenance.Service
	Rules       rules.Repo
	Safety      safety.Repo
	Notify      *notify.Emitter

	locks *keyedMutex
}

// NewService constructs a Service.
func NewService(docs documents.Repo, maint *maintenance.Service, ruleRepo rules.Repo, safetyRepo safety.Repo, emitter *notify.Emitter) *Service {
	return &Service{
		Docs:        docs,
		Maintenance: maint,
		Rules:       ruleRepo,
		Safety:      safetyRepo,
		Notify:      emitter,
		locks:       newKeyedMutex(),
	}
}

// Reconcile applies one callback. Callbacks for the same (org, document)
// pair serialize on a keyed lock so replays and races cannot double-insert
// artifacts; the whole merge is idempotent, and a returned error means the
// external caller should retry the entire callback.
func (s *Service) Reconcile(ctx context.Context, orgID string, cb Callback) (Result, error) {
	metrics.IncCallbackReceived()
	started := time.Now()

	cb.PDFName = strings.TrimSpace(cb.PDFName)
	if cb.PDFName == "" {
		return Result{}, ErrInvalidCallback
	}

	unlock := s.locks.Lock(orgID + "\x00" + cb.PDFName)
	defer unlock()

	doc, found, err := s.resolve(ctx, orgID, cb.PDFName)
	if err != nil {
		return Result{}, err
	}
	if !found {
		metrics.IncCallbackUnmatched()
		telemetry.Warn("reconcile.no_match", map[string]any{
			"org_id":   orgID,
			"pdf_name": cb.PDFName,
		})
		return Result{
			Outcome: OutcomeNoMatch,
			Message: "no matching document for " + cb.PDFName,
		}, nil
	}

	if !cb.Success {
		if _, err := s.Docs.ApplyProcessingResult(ctx, doc.ID, documents.ProcessingResult{
			Status:      documents.StatusFailed,
			ProcessedAt: time.Now().UTC(),
		}); err != nil {
			return Result{}, err
		}
		metrics.IncCallbackFailed()
		telemetry.Warn("reconcile.processing_failed", map[string]any{
			"org_id":      orgID,
			"documentId":  doc.ID,
			"pdf_name":    cb.PDFName,
			"remote_info": cb.Message,
		})
		return Result{
			Outcome:    OutcomeFailed,
			Message:    "processing failed",
			DocumentID: doc.ID,
			DeviceID:   doc.DeviceID,
		}, nil
	}

	if _, err := s.Docs.ApplyProcessingResult(ctx, doc.ID, documents.ProcessingResult{
		Status:          documents.StatusCompleted,
		ChunksProcessed: cb.ChunksProcessed,
		ProcessingTime:  cb.ProcessingTime,
		CollectionName:  cb.CollectionName,
		ProcessedAt:     time.Now().UTC(),
	}); err != nil {
		return Result{}, err
	}

	result := Result{
		Outcome:    OutcomeCompleted,
		Message:    "document updated",
		DocumentID: doc.ID,
		DeviceID:   doc.DeviceID,
	}
	if result.DeviceID == "" {
		result.DeviceID = strings.TrimSpace(cb.DeviceID)
	}

	if result.DeviceID == "" {
		if len(cb.Rules) > 0 || len(cb.MaintenanceTasks) > 0 || len(cb.SafetyPrecautions) > 0 {
			telemetry.Warn("reconcile.artifacts_skipped", map[string]any{
				"org_id":     orgID,
				"documentId": doc.ID,
				"reason":     "document has no device",
			})
		}
	} else if err := s.upsertArtifacts(ctx, orgID, result.DeviceID, cb, &result); err != nil {
		return Result{}, err
	}

	metrics.IncCallbackMatched()
	metrics.ObserveCallbackMergeMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("reconcile.completed", map[string]any{
		"org_id":              orgID,
		"documentId":          doc.ID,
		"pdf_name":            cb.PDFName,
		"created_rules":       result.CreatedRules,
		"created_tasks":       result.CreatedTasks,
		"created_precautions": result.CreatedPrecautions,
	})

	return result, nil
}

func (s *Service) resolve(ctx context.Context, orgID, pdfName string) (documents.Document, bool, error) {
	doc, err := s.Docs.GetByNameAndOrg(ctx, orgID, pdfName)
	if err == nil {
		return doc, true, nil
	}
	if !errors.Is(err, documents.ErrNotFound) {
		return documents.Document{}, false, err
	}

	candidates, err := s.Docs.ListCandidates(ctx, orgID)
	if err != nil {
		return documents.Document{}, false, err
	}
	doc, ok := ResolveFallback(pdfName, candidates)
	return doc, ok, nil
}

func (s *Service) upsertArtifacts(ctx context.Context, orgID, deviceID string, cb Callback, result *Result) error {
	now := time.Now().UTC()

	for _, entry := range cb.Rules {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		created, err := s.Rules.UpsertByDeviceAndName(ctx, rules.Rule{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			DeviceID:       deviceID,
			Name:           name,
			Condition:      entry.Condition,
			Action:         entry.Action,
			Priority:       entry.Priority,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		if created {
			result.CreatedRules++
			s.Notify.Emit(ctx, notify.Notification{
				OrganizationID: orgID,
				DeviceID:       deviceID,
				Category:       notify.CategoryRulesGenerated,
				Title:          "New rule generated",
				Message:        name,
			})
		}
	}

	for _, entry := range cb.MaintenanceTasks {
		if strings.TrimSpace(entry.TaskName) == "" {
			continue
		}
		created, err := s.Maintenance.UpsertGenerated(ctx, maintenance.Task{
			OrganizationID:  orgID,
			DeviceID:        deviceID,
			TaskName:        entry.TaskName,
			ComponentName:   entry.ComponentName,
			MaintenanceType: entry.MaintenanceType,
			Frequency:       entry.Frequency,
			Priority:        entry.Priority,
			Description:     entry.Description,
		})
		if err != nil {
			return err
		}
		if created {
			result.CreatedTasks++
			s.Notify.Emit(ctx, notify.Notification{
				OrganizationID: orgID,
				DeviceID:       deviceID,
				Category:       notify.CategoryMaintenanceGenerated,
				Title:          "New maintenance task generated",
				Message:        entry.TaskName,
			})
		}
	}

	for _, entry := range cb.SafetyPrecautions {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		created, err := s.Safety.UpsertByDeviceAndTitle(ctx, safety.Precaution{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			DeviceID:       deviceID,
			Title:          title,
			Description:    entry.Description,
			Category:       entry.Category,
			Severity:       entry.Severity,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		if created {
			result.CreatedPrecautions++
			s.Notify.Emit(ctx, notify.Notification{
				OrganizationID: orgID,
				DeviceID:       deviceID,
				Category:       notify.CategorySafetyGenerated,
				Title:          "New safety precaution generated",
				Message:        title,
			})
		}
	}

	return nil
}
