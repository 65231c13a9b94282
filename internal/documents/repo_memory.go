package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryDoc struct {
	doc     Document
	deleted bool
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]*memoryDoc // orgID -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]*memoryDoc)}
}

// Create stores a document for an organization.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.OrganizationID] = append(r.data[doc.OrganizationID], &memoryDoc{doc: doc})
	return nil
}

// GetByID returns a document by ID scoped to an organization.
func (r *MemoryRepo) GetByID(ctx context.Context, orgID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.data[orgID] {
		if entry.doc.ID == documentID && !entry.deleted {
			return entry.doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// GetByNameAndOrg returns the most recent non-deleted document with the exact name.
func (r *MemoryRepo) GetByNameAndOrg(ctx context.Context, orgID, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *memoryDoc
	for _, entry := range r.data[orgID] {
		if entry.deleted || entry.doc.Name != name {
			continue
		}
		if found == nil || entry.doc.UploadedAt.After(found.doc.UploadedAt) {
			found = entry
		}
	}
	if found == nil {
		return Document{}, ErrNotFound
	}
	return found.doc, nil
}

// ListCandidates returns PENDING/PROCESSING documents, oldest-first.
func (r *MemoryRepo) ListCandidates(ctx context.Context, orgID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, entry := range r.data[orgID] {
		if entry.deleted {
			continue
		}
		if entry.doc.Status == StatusPending || entry.doc.Status == StatusProcessing {
			out = append(out, entry.doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

// List returns non-deleted documents, newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var docs []Document
	for _, entry := range r.data[orgID] {
		if !entry.deleted {
			docs = append(docs, entry.doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// MarkProcessing moves a PENDING document to PROCESSING.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.find(documentID)
	if entry == nil || entry.doc.Status != StatusPending {
		return false, nil
	}
	entry.doc.Status = StatusProcessing
	return true, nil
}

// ApplyProcessingResult moves a document to a terminal status, keeping stored
// values for fields the result omitted. No-op if already terminal.
func (r *MemoryRepo) ApplyProcessingResult(ctx context.Context, documentID string, result ProcessingResult) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.find(documentID)
	if entry == nil {
		return false, nil
	}
	if entry.doc.Status != StatusPending && entry.doc.Status != StatusProcessing {
		return false, nil
	}
	entry.doc.Status = result.Status
	processedAt := result.ProcessedAt
	entry.doc.ProcessedAt = &processedAt
	if result.Status == StatusCompleted {
		entry.doc.Vectorized = true
	}
	if result.ChunksProcessed != nil {
		v := *result.ChunksProcessed
		entry.doc.ChunksProcessed = &v
	}
	if result.ProcessingTime != nil {
		entry.doc.ProcessingTime = *result.ProcessingTime
	}
	if result.CollectionName != nil {
		entry.doc.CollectionName = *result.CollectionName
	}
	return true, nil
}

// SoftDelete flags a document as deleted.
func (r *MemoryRepo) SoftDelete(ctx context.Context, orgID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.data[orgID] {
		if entry.doc.ID == documentID && !entry.deleted {
			entry.deleted = true
			return nil
		}
	}
	return ErrNotFound
}

// StaleProcessing returns documents stuck in PROCESSING since before the cutoff.
func (r *MemoryRepo) StaleProcessing(ctx context.Context, orgID string, before time.Time) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, entry := range r.data[orgID] {
		if entry.deleted || entry.doc.Status != StatusProcessing {
			continue
		}
		if entry.doc.UploadedAt.Before(before) {
			out = append(out, entry.doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

func (r *MemoryRepo) find(documentID string) *memoryDoc {
	for _, entries := range r.data {
		for _, entry := range entries {
			if entry.doc.ID == documentID && !entry.deleted {
				return entry
			}
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
