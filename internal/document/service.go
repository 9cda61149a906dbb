// Package document owns Document entities: upload with content-hash dedup,
// lifecycle metadata and the association to a case. OCR state on a
// document is mutated only by the scheduler and the extraction pipeline.
package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/access"
	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/ocr"
	"github.com/nyayalaya/casefile/internal/storage"
	"github.com/nyayalaya/casefile/internal/tenant"
)

const docColumns = `id, org_id, case_id, document_type, filename, uploaded_by,
	storage_provider, storage_key, mime_type, size_bytes, sha256, pages,
	ocr_status, avg_confidence, needs_review, text_doc_id, ocr_job_id,
	version, created_at, updated_at`

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 64 << 20

type Service struct {
	db        *pgxpool.Pool
	store     storage.Storage
	bucket    string
	cases     *cases.Service
	scheduler *ocr.Service
}

func NewService(db *pgxpool.Pool, store storage.Storage, bucket string, caseSvc *cases.Service, scheduler *ocr.Service) *Service {
	return &Service{db: db, store: store, bucket: bucket, cases: caseSvc, scheduler: scheduler}
}

type UploadRequest struct {
	CaseID       uuid.UUID
	DocumentType string
	Filename     string
	MimeType     string
	Data         io.Reader
}

// Upload stores the blob content-addressed by sha256, registers the
// document and queues its first OCR job. Two uploads of identical content
// into one org collide on the (org_id, sha256) unique index and surface as
// CONFLICT; the same content in another org is unrelated.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}
	if req.CaseID == uuid.Nil {
		return nil, apperr.New(apperr.ErrValidation, "case_id is required")
	}
	if req.DocumentType == "" {
		return nil, apperr.New(apperr.ErrValidation, "document_type is required")
	}

	// Scope gate: uploading into a case requires access to it.
	if _, err := s.cases.Get(ctx, req.CaseID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(req.Data, maxUploadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "read upload", err)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.ErrValidation, "file is empty")
	}
	if len(data) > maxUploadBytes {
		return nil, apperr.New(apperr.ErrValidation, "file exceeds %d bytes", maxUploadBytes)
	}

	sum := sha256.Sum256(data)
	shaHex := hex.EncodeToString(sum[:])
	key := storage.ObjectKey(sub.OrgID.String(), shaHex)

	pages := 0
	if req.MimeType == "application/pdf" {
		pages = CountPDFPages(data)
	}

	// Blob first: a storage failure aborts creation with nothing to roll
	// back, and the content-addressed key makes a re-upload harmless.
	if err := s.store.Upload(ctx, s.bucket, key, bytes.NewReader(data), req.MimeType); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "store blob", err)
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, org_id, case_id, document_type, filename, uploaded_by,
			storage_provider, storage_key, mime_type, size_bytes, sha256, pages, ocr_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending')
		 RETURNING `+docColumns,
		uuid.New(), sub.OrgID, req.CaseID, req.DocumentType, req.Filename, sub.UserID,
		storage.Provider, key, req.MimeType, len(data), shaHex, pages,
	)
	doc, err := scanDocument(row)
	if err != nil {
		dbErr := apperr.FromDB("insert document", err)
		if !apperr.IsKind(dbErr, apperr.ErrConflict) {
			// Orphaned blob for a document that never existed; a dedup
			// conflict instead means the key is owned by the original.
			if derr := s.store.Delete(ctx, s.bucket, key); derr != nil {
				slog.Warn("orphan blob cleanup failed", "key", key, "error", derr)
			}
		}
		return nil, dbErr
	}

	job, err := s.scheduler.Queue(ctx, doc.ID)
	if err != nil {
		slog.Error("queue OCR for upload failed", "document_id", doc.ID, "error", err)
		return doc, nil
	}
	doc.OCRJobID = &job.ID
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}

	doc, err := s.getInOrg(ctx, id, sub.OrgID)
	if err != nil {
		return nil, err
	}
	// Document access is the parent case's access.
	if _, err := s.cases.Get(ctx, doc.CaseID); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetAnyOrg loads a document without tenant scoping. Worker callers only.
func (s *Service) GetAnyOrg(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	caller, ok := tenant.CallerFromContext(ctx)
	if !ok || !caller.IsWorker() {
		return nil, apperr.New(apperr.ErrForbidden, "worker credential required")
	}
	return s.getInOrg(ctx, id, uuid.Nil)
}

func (s *Service) getInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.Document, error) {
	q := `SELECT ` + docColumns + ` FROM documents WHERE id = $1`
	args := []interface{}{id}
	if orgID != uuid.Nil {
		q += ` AND org_id = $2`
		args = append(args, orgID)
	}
	doc, err := scanDocument(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, apperr.FromDB("get document", err)
	}
	return doc, nil
}

// ListByCase returns the documents of one case, after the case scope
// check.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Document, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+docColumns+` FROM documents WHERE case_id = $1 AND org_id = $2 ORDER BY created_at DESC`,
		caseID, sub.OrgID,
	)
	if err != nil {
		return nil, apperr.FromDB("list documents", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, apperr.FromDB("scan document", err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// UpdateDocumentRequest allow-lists the caller-mutable fields. OCR state
// is owned by the pipeline and is not patchable here.
type UpdateDocumentRequest struct {
	DocumentType *string `json:"document_type,omitempty"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DocumentType != nil {
		if *req.DocumentType == "" {
			return nil, apperr.New(apperr.ErrValidation, "document_type cannot be empty")
		}
		doc.DocumentType = *req.DocumentType
	}

	row := s.db.QueryRow(ctx,
		`UPDATE documents SET document_type = $3, version = version + 1, updated_at = now()
		 WHERE id = $1 AND org_id = $2
		 RETURNING `+docColumns,
		id, doc.OrgID, doc.DocumentType,
	)
	updated, err := scanDocument(row)
	if err != nil {
		return nil, apperr.FromDB("update document", err)
	}
	return updated, nil
}

// Delete removes the document, its text and jobs, detaches it from the
// case and releases the backing blob. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sub := tenant.SubjectFromContext(ctx)
	if !access.CanDelete(sub) {
		return apperr.New(apperr.ErrForbidden, "only admins may delete documents")
	}

	doc, err := s.getInOrg(ctx, id, sub.OrgID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.FromDB("begin delete document", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM document_texts WHERE document_id = $1 AND org_id = $2`,
		`DELETE FROM ocr_jobs WHERE document_id = $1 AND org_id = $2`,
		`DELETE FROM documents WHERE id = $1 AND org_id = $2`,
	} {
		if _, err := tx.Exec(ctx, stmt, id, sub.OrgID); err != nil {
			return apperr.FromDB("delete document", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromDB("commit delete document", err)
	}

	if doc.Storage.Key != "" {
		if err := s.store.Delete(ctx, s.bucket, doc.Storage.Key); err != nil {
			slog.Warn("blob release failed", "key", doc.Storage.Key, "error", err)
		}
	}
	return nil
}

// RequeueOCR is the admin recovery trigger for stuck or failed jobs.
func (s *Service) RequeueOCR(ctx context.Context, id uuid.UUID) (*models.OcrJob, error) {
	return s.scheduler.Requeue(ctx, id)
}

type docRow interface {
	Scan(dest ...any) error
}

func scanDocument(row docRow) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.OrgID, &d.CaseID, &d.DocumentType, &d.Filename, &d.UploadedBy,
		&d.Storage.Provider, &d.Storage.Key, &d.Storage.MimeType, &d.Storage.SizeBytes,
		&d.Storage.SHA256, &d.Storage.Pages,
		&d.OCR.Status, &d.OCR.AvgConfidence, &d.OCR.NeedsReview, &d.OCR.TextDocID, &d.OCRJobID,
		&d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
