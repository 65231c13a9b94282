package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"iotplatform-backend/internal/devices"
	"iotplatform-backend/internal/documents"
	"iotplatform-backend/internal/maintenance"
	"iotplatform-backend/internal/notify"
	"iotplatform-backend/internal/rules"
	"iotplatform-backend/internal/safety"
	"iotplatform-backend/internal/users"
)

const testOrg = "org-1"

type fakeGate struct {
	mu        sync.Mutex
	delivered []notify.Notification
}

func (g *fakeGate) Deliver(_ context.Context, n notify.Notification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delivered = append(g.delivered, n)
	return nil
}

func (g *fakeGate) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.delivered)
}

type fixture struct {
	svc   *Service
	docs  *documents.MemoryRepo
	maint *maintenance.MemoryRepo
	rules *rules.MemoryRepo
	gate  *fakeGate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	docs := documents.NewMemoryRepo()
	maintRepo := maintenance.NewMemoryRepo()
	ruleRepo := rules.NewMemoryRepo()
	safetyRepo := safety.NewMemoryRepo()
	gate := &fakeGate{}
	emitter := &notify.Emitter{Gate: gate}

	maintSvc := &maintenance.Service{
		Repo:    maintRepo,
		Devices: devices.NewService(devices.NewMemoryRepo()),
		Users:   users.NewService(users.NewMemoryRepo()),
		Notify:  emitter,
	}

	return &fixture{
		svc:   NewService(docs, maintSvc, ruleRepo, safetyRepo, emitter),
		docs:  docs,
		maint: maintRepo,
		rules: ruleRepo,
		gate:  gate,
	}
}

func (f *fixture) seedDocument(t *testing.T, name, deviceID, status string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:               "doc-" + name,
		OrganizationID:   testOrg,
		DeviceID:         deviceID,
		Name:             name,
		OriginalFilename: name,
		Status:           status,
		UploadedAt:       time.Now().UTC(),
	}
	if err := f.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document %s: %v", name, err)
	}
	return doc
}

func successCallback() Callback {
	chunks := 12
	processingTime := "4.2s"
	collection := "manual-x-chunks"
	return Callback{
		Success:         true,
		PDFName:         "manual-x.pdf",
		Message:         "ok",
		ChunksProcessed: &chunks,
		ProcessingTime:  &processingTime,
		CollectionName:  &collection,
		Rules: []CallbackRule{
			{Name: "High Temp Alert", Condition: "temp > 90", Action: "notify", Priority: "HIGH"},
		},
		MaintenanceTasks: []CallbackMaintenance{
			{TaskName: "Filter Replacement", Frequency: "every 90 days", Priority: "MEDIUM"},
		},
		SafetyPrecautions: []CallbackPrecaution{
			{Title: "Lockout before service", Severity: "HIGH"},
		},
	}
}

func TestReconcileIdempotentReplay(t *testing.T) {
	f := newFixture(t)
	doc := f.seedDocument(t, "manual-x.pdf", "dev-1", documents.StatusProcessing)
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, testOrg, successCallback())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if first.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %q, want completed", first.Outcome)
	}
	if first.DocumentID != doc.ID || first.DeviceID != "dev-1" {
		t.Errorf("result ids = (%s, %s), want (%s, dev-1)", first.DocumentID, first.DeviceID, doc.ID)
	}
	if first.CreatedRules != 1 || first.CreatedTasks != 1 || first.CreatedPrecautions != 1 {
		t.Errorf("created counts = (%d, %d, %d), want (1, 1, 1)",
			first.CreatedRules, first.CreatedTasks, first.CreatedPrecautions)
	}
	if f.gate.count() != 3 {
		t.Errorf("notifications = %d, want one per new artifact", f.gate.count())
	}

	updated, err := f.docs.GetByID(ctx, testOrg, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != documents.StatusCompleted {
		t.Errorf("document status = %q, want COMPLETED", updated.Status)
	}
	if updated.ChunksProcessed == nil || *updated.ChunksProcessed != 12 {
		t.Errorf("chunksProcessed = %v, want 12", updated.ChunksProcessed)
	}
	if !updated.Vectorized {
		t.Errorf("document not marked vectorized")
	}

	// Replaying the identical callback must leave state unchanged.
	second, err := f.svc.Reconcile(ctx, testOrg, successCallback())
	if err != nil {
		t.Fatalf("Reconcile replay: %v", err)
	}
	if second.Outcome != OutcomeCompleted {
		t.Fatalf("replay outcome = %q, want completed", second.Outcome)
	}
	if second.CreatedRules != 0 || second.CreatedTasks != 0 || second.CreatedPrecautions != 0 {
		t.Errorf("replay created counts = (%d, %d, %d), want (0, 0, 0)",
			second.CreatedRules, second.CreatedTasks, second.CreatedPrecautions)
	}
	if f.gate.count() != 3 {
		t.Errorf("replay notifications = %d, want still 3", f.gate.count())
	}

	tasks, err := f.maint.ListByDevice(ctx, testOrg, "dev-1")
	if err != nil {
		t.Fatalf("ListByDevice: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("maintenance tasks = %d, want exactly 1", len(tasks))
	}
	ruleList, err := f.rules.ListByDevice(ctx, testOrg, "dev-1")
	if err != nil {
		t.Fatalf("rules ListByDevice: %v", err)
	}
	if len(ruleList) != 1 {
		t.Fatalf("rules = %d, want exactly 1", len(ruleList))
	}
}

func TestReconcileFallbackMatchesOriginalFilename(t *testing.T) {
	f := newFixture(t)
	doc := documents.Document{
		ID:               "doc-1",
		OrganizationID:   testOrg,
		DeviceID:         "dev-1",
		Name:             "manual-x_sanitized.pdf",
		OriginalFilename: "manual-x.pdf",
		Status:           documents.StatusProcessing,
		UploadedAt:       time.Now().UTC(),
	}
	if err := f.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := f.svc.Reconcile(context.Background(), testOrg, Callback{
		Success: true,
		PDFName: "manual-x.pdf",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Outcome != OutcomeCompleted || result.DocumentID != "doc-1" {
		t.Fatalf("result = %+v, want completed for doc-1", result)
	}
}

func TestReconcileNoMatchIsSoft(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Reconcile(context.Background(), testOrg, Callback{
		Success: true,
		PDFName: "phantom.pdf",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Outcome != OutcomeNoMatch {
		t.Fatalf("outcome = %q, want no_match", result.Outcome)
	}
}

func TestReconcileFailureMarksDocumentFailed(t *testing.T) {
	f := newFixture(t)
	doc := f.seedDocument(t, "manual-x.pdf", "dev-1", documents.StatusProcessing)

	result, err := f.svc.Reconcile(context.Background(), testOrg, Callback{
		Success: false,
		PDFName: "manual-x.pdf",
		Message: "OCR failure",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %q, want processing_failed", result.Outcome)
	}

	updated, err := f.docs.GetByID(context.Background(), testOrg, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != documents.StatusFailed {
		t.Errorf("document status = %q, want FAILED", updated.Status)
	}
}

func TestReconcileMissingNameRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Reconcile(context.Background(), testOrg, Callback{Success: true}); err != ErrInvalidCallback {
		t.Fatalf("error = %v, want ErrInvalidCallback", err)
	}
}

func TestReconcileConcurrentReplaysStaySingle(t *testing.T) {
	f := newFixture(t)
	f.seedDocument(t, "manual-x.pdf", "dev-1", documents.StatusProcessing)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Reconcile(context.Background(), testOrg, successCallback()); err != nil {
				t.Errorf("Reconcile: %v", err)
			}
		}()
	}
	wg.Wait()

	tasks, err := f.maint.ListByDevice(context.Background(), testOrg, "dev-1")
	if err != nil {
		t.Fatalf("ListByDevice: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("maintenance tasks after concurrent replays = %d, want 1", len(tasks))
	}
}
