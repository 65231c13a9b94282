package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"iotplatform-backend/internal/documents"
)

const testOrg = "org-1"

type fakeGenerator struct {
	calls    []string
	failKind string
}

func (f *fakeGenerator) Generate(_ context.Context, kind, pdfName, deviceID, orgID string) error {
	f.calls = append(f.calls, kind+":"+pdfName+":"+deviceID)
	if kind == f.failKind {
		return ErrExternalService
	}
	return nil
}

func seedDocument(t *testing.T, repo *documents.MemoryRepo, name, deviceID string) {
	t.Helper()
	err := repo.Create(context.Background(), documents.Document{
		ID:             "doc-" + name,
		OrganizationID: testOrg,
		DeviceID:       deviceID,
		Name:           name,
		Status:         documents.StatusProcessing,
		UploadedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestDispatchReturnsPendingTask(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedDocument(t, repo, "manual.pdf", "dev-1")
	gen := &fakeGenerator{}
	svc := &Service{Docs: repo, Client: gen}

	task, err := svc.Dispatch(context.Background(), testOrg, KindMaintenance, "manual.pdf", "")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if task.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", task.Status)
	}
	if task.DeviceID != "dev-1" {
		t.Errorf("deviceID = %q, want document's dev-1", task.DeviceID)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "maintenance:manual.pdf:dev-1" {
		t.Errorf("generator calls = %v", gen.calls)
	}
}

func TestDispatchFailureIsIsolatedPerKind(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedDocument(t, repo, "manual.pdf", "dev-1")
	gen := &fakeGenerator{failKind: KindRules}
	svc := &Service{Docs: repo, Client: gen}

	if _, err := svc.Dispatch(context.Background(), testOrg, KindRules, "manual.pdf", ""); !errors.Is(err, ErrExternalService) {
		t.Fatalf("rules dispatch error = %v, want ErrExternalService", err)
	}

	// One kind failing must not block the others.
	for _, kind := range []string{KindMaintenance, KindSafety} {
		if _, err := svc.Dispatch(context.Background(), testOrg, kind, "manual.pdf", ""); err != nil {
			t.Errorf("%s dispatch after rules failure: %v", kind, err)
		}
	}
}

func TestDispatchUnknownDocument(t *testing.T) {
	svc := &Service{Docs: documents.NewMemoryRepo(), Client: &fakeGenerator{}}

	_, err := svc.Dispatch(context.Background(), testOrg, KindMaintenance, "missing.pdf", "")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("error = %v, want documents.ErrNotFound", err)
	}
}

func TestDispatchValidation(t *testing.T) {
	svc := &Service{Docs: documents.NewMemoryRepo(), Client: &fakeGenerator{}}

	if _, err := svc.Dispatch(context.Background(), testOrg, "PROPHECY", "manual.pdf", ""); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("unknown kind error = %v, want ErrInvalidKind", err)
	}
	if _, err := svc.Dispatch(context.Background(), testOrg, KindRules, "   ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name error = %v, want ErrInvalidInput", err)
	}
}
