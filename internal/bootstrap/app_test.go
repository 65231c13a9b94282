package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iotplatform-backend/internal/maintenance"
	"iotplatform-backend/internal/shared/config"
)

const testOrg = "org-e2e"

// fakeDocIntel stands in for the external document-intelligence service.
func fakeDocIntel(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload-pdf", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":"queued","pdf_name":"manual-x.pdf","chunks_processed":3}`)
	})
	generate := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":"generation started"}`)
	}
	mux.HandleFunc("/generate-rules/", generate)
	mux.HandleFunc("/generate-maintenance/", generate)
	mux.HandleFunc("/generate-safety/", generate)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func buildTestApp(t *testing.T) *App {
	t.Helper()
	docIntel := fakeDocIntel(t)

	app, err := Build(config.Config{
		Env:                "dev",
		ObjectStoreType:    "local",
		LocalStoreDir:      t.TempDir(),
		CORSAllowOrigin:    []string{"http://localhost:5173"},
		DocIntelBaseURL:    docIntel.URL,
		DocIntelTimeout:    5 * time.Second,
		UpcomingWindowDays: 30,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *App, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestUploadGenerateCallbackFlow(t *testing.T) {
	app := buildTestApp(t)
	org := map[string]string{"X-Org-Id": testOrg}

	// Register a device.
	rec := doJSON(t, app, http.MethodPost, "/api/v1/devices", map[string]string{
		"name":       "Pump A",
		"deviceType": "pump",
	}, org)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create device: status %d body %s", rec.Code, rec.Body.String())
	}
	var device struct {
		DeviceID string `json:"deviceId"`
	}
	decode(t, rec, &device)
	if device.DeviceID == "" {
		t.Fatal("create device returned no deviceId")
	}

	// Upload the manual. A successful forward moves it to PROCESSING.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "manual-x.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	io.WriteString(part, "%PDF-1.4 fake manual body")
	mw.WriteField("deviceId", device.DeviceID)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Org-Id", testOrg)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, rec, &uploaded)
	if uploaded.Status != "PROCESSING" {
		t.Fatalf("uploaded status = %q, want PROCESSING", uploaded.Status)
	}

	// Dispatch each generation kind.
	for _, route := range []string{
		"/api/v1/pdf/generate-rules",
		"/api/v1/pdf/generate-maintenance",
		"/api/v1/pdf/generate-safety",
	} {
		rec = doJSON(t, app, http.MethodPost, route, map[string]string{
			"pdfName": "manual-x.pdf",
		}, org)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: status %d body %s", route, rec.Code, rec.Body.String())
		}
	}

	// The external service reports completion out of band.
	callback := map[string]any{
		"success":         true,
		"pdfName":         "manual-x.pdf",
		"chunksProcessed": 12,
		"maintenanceTasks": []map[string]string{
			{"taskName": "Filter Replacement", "frequency": "every 90 days", "priority": "HIGH"},
		},
	}
	rec = doJSON(t, app, http.MethodPost, "/api/v1/pdf/callback", callback, org)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback: status %d body %s", rec.Code, rec.Body.String())
	}
	var cbResp struct {
		Success bool `json:"success"`
	}
	decode(t, rec, &cbResp)
	if !cbResp.Success {
		t.Fatalf("callback response not successful: %s", rec.Body.String())
	}

	// Document reflects the merge.
	rec = doJSON(t, app, http.MethodGet, "/api/v1/documents/"+uploaded.ID, nil, org)
	if rec.Code != http.StatusOK {
		t.Fatalf("get document: status %d", rec.Code)
	}
	var doc struct {
		Status          string `json:"status"`
		ChunksProcessed *int   `json:"chunksProcessed"`
	}
	decode(t, rec, &doc)
	if doc.Status != "COMPLETED" {
		t.Errorf("document status = %q, want COMPLETED", doc.Status)
	}
	if doc.ChunksProcessed == nil || *doc.ChunksProcessed != 12 {
		t.Errorf("chunksProcessed = %v, want 12", doc.ChunksProcessed)
	}

	// Exactly one maintenance task, due 90 days out, with the device name
	// denormalized onto it.
	type taskView struct {
		TaskName        string `json:"taskName"`
		DeviceName      string `json:"deviceName"`
		NextMaintenance string `json:"nextMaintenance"`
		Status          string `json:"status"`
	}
	rec = doJSON(t, app, http.MethodGet, "/api/v1/maintenance", nil, org)
	if rec.Code != http.StatusOK {
		t.Fatalf("list maintenance: status %d", rec.Code)
	}
	var tasks []taskView
	decode(t, rec, &tasks)
	if len(tasks) != 1 {
		t.Fatalf("maintenance tasks = %d, want 1: %s", len(tasks), rec.Body.String())
	}
	wantDue := maintenance.DateOnly(time.Now().UTC()).AddDate(0, 0, 90).Format("2006-01-02")
	if tasks[0].NextMaintenance != wantDue {
		t.Errorf("nextMaintenance = %s, want %s", tasks[0].NextMaintenance, wantDue)
	}
	if tasks[0].DeviceName != "Pump A" {
		t.Errorf("deviceName = %q, want Pump A", tasks[0].DeviceName)
	}

	// Replaying the callback must not duplicate the task.
	rec = doJSON(t, app, http.MethodPost, "/api/v1/pdf/callback", callback, org)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback replay: status %d", rec.Code)
	}
	rec = doJSON(t, app, http.MethodGet, "/api/v1/maintenance", nil, org)
	tasks = nil
	decode(t, rec, &tasks)
	if len(tasks) != 1 {
		t.Fatalf("maintenance tasks after replay = %d, want 1", len(tasks))
	}
}

func TestCallbackWithoutResolvableOrgRejected(t *testing.T) {
	app := buildTestApp(t)

	// No X-Org-Id header and no configured default.
	rec := doJSON(t, app, http.MethodPost, "/api/v1/pdf/callback", map[string]any{
		"success": true,
		"pdfName": "manual-x.pdf",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUnmatchedCallbackAnsweredSoftly(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/api/v1/pdf/callback", map[string]any{
		"success": true,
		"pdfName": "never-uploaded.pdf",
	}, map[string]string{"X-Org-Id": testOrg})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 so the remote stops retrying", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, rec, &resp)
	if resp.Success {
		t.Errorf("success = true for unmatched callback, want false")
	}
	if !strings.Contains(resp.Message, "never-uploaded.pdf") {
		t.Errorf("message %q does not name the document", resp.Message)
	}
}

func TestTenantHeaderRequiredOnAPIRoutes(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/v1/devices", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without X-Org-Id", rec.Code)
	}
}

func TestHealthEndpointOpen(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/v1/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
}
