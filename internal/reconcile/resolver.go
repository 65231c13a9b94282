package reconcile

import "iotplatform-backend/internal/documents"

// ResolveFallback scans in-flight documents for one whose name or original
// filename matches pdfName. The external service may echo back a sanitized
// filename, so the exact-name lookup that precedes this can miss. Candidates
// are expected oldest-first; the first match wins.
func ResolveFallback(pdfName string, candidates []documents.Document) (documents.Document, bool) {
	if pdfName == "" {
		return documents.Document{}, false
	}
	for _, doc := range candidates {
		if doc.Name == pdfName || doc.OriginalFilename == pdfName {
			return doc, true
		}
	}
	return documents.Document{}, false
}
