package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents.
//
// Status mutations guard the forward-only transition invariant: an update that
// would move a document backwards along PENDING -> PROCESSING -> terminal is a
// silent no-op reported via the returned bool.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, orgID, documentID string) (Document, error)
	GetByNameAndOrg(ctx context.Context, orgID, name string) (Document, error)
	// ListCandidates returns non-deleted documents in PENDING or PROCESSING
	// for the organization, oldest-first. Used for callback fallback matching.
	ListCandidates(ctx context.Context, orgID string) ([]Document, error)
	List(ctx context.Context, orgID string, limit, offset int) ([]Document, error)
	MarkProcessing(ctx context.Context, documentID string) (bool, error)
	ApplyProcessingResult(ctx context.Context, documentID string, result ProcessingResult) (bool, error)
	SoftDelete(ctx context.Context, orgID, documentID string) error
	StaleProcessing(ctx context.Context, orgID string, before time.Time) ([]Document, error)
}
