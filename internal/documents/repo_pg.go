package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `
id, organization_id, device_id, name, original_filename, size_bytes, status,
vectorized, chunks_processed, processing_time, collection_name, storage_key,
uploaded_at, processed_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, organization_id, device_id, name, original_filename, size_bytes,
    status, vectorized, storage_key, uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	status := doc.Status
	if status == "" {
		status = StatusPending
	}

	var deviceID sql.NullString
	if doc.DeviceID != "" {
		deviceID = sql.NullString{String: doc.DeviceID, Valid: true}
	}
	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OrganizationID,
		deviceID,
		doc.Name,
		doc.OriginalFilename,
		doc.SizeBytes,
		status,
		doc.Vectorized,
		storageKey,
		doc.UploadedAt,
	)
	return err
}

// GetByID fetches a document by ID scoped to an organization.
func (r *PGRepo) GetByID(ctx context.Context, orgID, documentID string) (Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, orgID, documentID))
}

// GetByNameAndOrg fetches the most recent non-deleted document with the exact name.
func (r *PGRepo) GetByNameAndOrg(ctx context.Context, orgID, name string) (Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE organization_id = $1 AND name = $2 AND deleted_at IS NULL
ORDER BY uploaded_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, orgID, name))
}

// ListCandidates returns PENDING/PROCESSING documents, oldest-first.
func (r *PGRepo) ListCandidates(ctx context.Context, orgID string) ([]Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE organization_id = $1 AND status IN ($2, $3) AND deleted_at IS NULL
ORDER BY uploaded_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, orgID, StatusPending, StatusProcessing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// List returns non-deleted documents, newest-first.
func (r *PGRepo) List(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE organization_id = $1 AND deleted_at IS NULL
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// MarkProcessing moves a PENDING document to PROCESSING.
func (r *PGRepo) MarkProcessing(ctx context.Context, documentID string) (bool, error) {
	const query = `
UPDATE documents
SET status = $1
WHERE id = $2 AND status = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, documentID, StatusPending)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ApplyProcessingResult moves a document to a terminal status and records the
// callback-supplied fields. Fields the callback omitted keep their stored
// values. Documents already in a terminal status are left untouched.
func (r *PGRepo) ApplyProcessingResult(ctx context.Context, documentID string, result ProcessingResult) (bool, error) {
	const query = `
UPDATE documents
SET status = $1,
    processed_at = $2,
    vectorized = CASE WHEN $1 = 'COMPLETED' THEN TRUE ELSE vectorized END,
    chunks_processed = COALESCE($3, chunks_processed),
    processing_time = COALESCE($4, processing_time),
    collection_name = COALESCE($5, collection_name)
WHERE id = $6 AND status IN ($7, $8) AND deleted_at IS NULL`

	var chunks sql.NullInt64
	if result.ChunksProcessed != nil {
		chunks = sql.NullInt64{Int64: int64(*result.ChunksProcessed), Valid: true}
	}
	var procTime sql.NullString
	if result.ProcessingTime != nil {
		procTime = sql.NullString{String: *result.ProcessingTime, Valid: true}
	}
	var collection sql.NullString
	if result.CollectionName != nil {
		collection = sql.NullString{String: *result.CollectionName, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		result.Status,
		result.ProcessedAt,
		chunks,
		procTime,
		collection,
		documentID,
		StatusPending,
		StatusProcessing,
	)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// SoftDelete flags a document as deleted without removing the row.
func (r *PGRepo) SoftDelete(ctx context.Context, orgID, documentID string) error {
	const query = `
UPDATE documents
SET deleted_at = now()
WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, orgID, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// StaleProcessing returns documents stuck in PROCESSING since before the cutoff.
func (r *PGRepo) StaleProcessing(ctx context.Context, orgID string, before time.Time) ([]Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE organization_id = $1 AND status = $2 AND uploaded_at < $3 AND deleted_at IS NULL
ORDER BY uploaded_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, orgID, StatusProcessing, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *PGRepo) scanOne(row *sql.Row) (Document, error) {
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) scanAll(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(scan func(dest ...any) error) (Document, error) {
	var doc Document
	var deviceID sql.NullString
	var chunks sql.NullInt64
	var procTime sql.NullString
	var collection sql.NullString
	var storageKey sql.NullString
	var processedAt sql.NullTime

	err := scan(
		&doc.ID,
		&doc.OrganizationID,
		&deviceID,
		&doc.Name,
		&doc.OriginalFilename,
		&doc.SizeBytes,
		&doc.Status,
		&doc.Vectorized,
		&chunks,
		&procTime,
		&collection,
		&storageKey,
		&doc.UploadedAt,
		&processedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if deviceID.Valid {
		doc.DeviceID = deviceID.String
	}
	if chunks.Valid {
		v := int(chunks.Int64)
		doc.ChunksProcessed = &v
	}
	if procTime.Valid {
		doc.ProcessingTime = procTime.String
	}
	if collection.Valid {
		doc.CollectionName = collection.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if processedAt.Valid {
		doc.ProcessedAt = &processedAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
