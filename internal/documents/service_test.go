package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

const testOrg = "org-1"

type stubStore struct {
	openErr error
	content string
}

func (s *stubStore) Save(_ context.Context, orgID, fileName string, r io.Reader) (string, int64, string, error) {
	n, err := io.Copy(io.Discard, r)
	return "stored/" + orgID + "/" + fileName, n, "application/pdf", err
}

func (s *stubStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}

type stubForwarder struct {
	calls int
	err   error
}

func (f *stubForwarder) UploadPDF(_ context.Context, _, fileName string, r io.Reader) (string, int, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	_, _ = io.Copy(io.Discard, r)
	return fileName, 3, nil
}

func TestUploadForwardMovesToProcessing(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{
		Store:     &stubStore{content: "pdf bytes"},
		Repo:      repo,
		Forwarder: &stubForwarder{},
	}

	doc, err := svc.Upload(context.Background(), testOrg, "dev-1", "manual.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != StatusProcessing {
		t.Errorf("status = %q, want PROCESSING", doc.Status)
	}
}

func TestUploadSurvivesReopenFailure(t *testing.T) {
	repo := NewMemoryRepo()
	forwarder := &stubForwarder{}
	svc := &Service{
		Store:     &stubStore{openErr: errors.New("backing store unavailable")},
		Repo:      repo,
		Forwarder: forwarder,
	}

	doc, err := svc.Upload(context.Background(), testOrg, "dev-1", "manual.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if forwarder.calls != 0 {
		t.Errorf("forwarder called %d times after reopen failure, want 0", forwarder.calls)
	}

	// The document is recorded and stays PENDING so the forward can be retried.
	stored, err := repo.GetByID(context.Background(), testOrg, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", stored.Status)
	}
}

func TestUploadSurvivesForwardFailure(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{
		Store:     &stubStore{content: "pdf bytes"},
		Repo:      repo,
		Forwarder: &stubForwarder{err: errors.New("upstream down")},
	}

	doc, err := svc.Upload(context.Background(), testOrg, "dev-1", "manual.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != StatusPending {
		t.Errorf("status = %q, want PENDING after failed forward", doc.Status)
	}
}
