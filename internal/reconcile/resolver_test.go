package reconcile

import (
	"testing"

	"iotplatform-backend/internal/documents"
)

func TestResolveFallback(t *testing.T) {
	candidates := []documents.Document{
		{ID: "doc-1", Name: "manual-a.pdf", OriginalFilename: "Manual A.pdf"},
		{ID: "doc-2", Name: "manual-b_sanitized.pdf", OriginalFilename: "manual-b.pdf"},
	}

	doc, ok := ResolveFallback("manual-a.pdf", candidates)
	if !ok || doc.ID != "doc-1" {
		t.Errorf("match by name: got (%v, %v), want doc-1", doc.ID, ok)
	}

	// The external service may echo the original filename instead of the
	// stored (sanitized) name.
	doc, ok = ResolveFallback("manual-b.pdf", candidates)
	if !ok || doc.ID != "doc-2" {
		t.Errorf("match by original filename: got (%v, %v), want doc-2", doc.ID, ok)
	}

	if _, ok := ResolveFallback("unknown.pdf", candidates); ok {
		t.Errorf("unexpected match for unknown name")
	}
	if _, ok := ResolveFallback("", candidates); ok {
		t.Errorf("unexpected match for empty name")
	}
}

func TestResolveFallbackPrefersOldest(t *testing.T) {
	// Candidates arrive oldest-first; the first match wins.
	candidates := []documents.Document{
		{ID: "older", Name: "manual.pdf"},
		{ID: "newer", Name: "manual.pdf"},
	}
	doc, ok := ResolveFallback("manual.pdf", candidates)
	if !ok || doc.ID != "older" {
		t.Errorf("got (%v, %v), want older", doc.ID, ok)
	}
}
