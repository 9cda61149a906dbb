// Package extraction consumes worker-submitted OCR output: it normalizes
// the text, derives search metadata and persists the canonical
// DocumentText while completing the submitting job. All persistence for
// one submission happens in a single transaction; a partially applied
// result is a correctness bug, not a degraded mode.
package extraction

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/ocr"
	"github.com/nyayalaya/casefile/internal/tenant"
	"github.com/nyayalaya/casefile/pkg/nepali"
)

type Service struct {
	db    *pgxpool.Pool
	cases *cases.Service
}

func NewService(db *pgxpool.Pool, caseSvc *cases.Service) *Service {
	return &Service{db: db, cases: caseSvc}
}

type ResultInput struct {
	JobID         *uuid.UUID        `json:"job_id,omitempty"`
	RawText       string            `json:"raw_text"`
	AvgConfidence *float64          `json:"avg_confidence,omitempty"`
	Pages         []models.PageText `json:"pages,omitempty"`
	Entities      json.RawMessage   `json:"entities,omitempty"`
	SearchHints   []string          `json:"search_hints,omitempty"`
	AutoSections  json.RawMessage   `json:"auto_sections,omitempty"`
	Extraction    json.RawMessage   `json:"extraction,omitempty"`
	Metrics       models.JobMetrics `json:"metrics"`
}

// AverageConfidence resolves the document-level confidence: an explicit
// value wins, otherwise the mean over per-page confidences. The second
// result is false when neither is available.
func AverageConfidence(in ResultInput) (float64, bool) {
	if in.AvgConfidence != nil {
		return *in.AvgConfidence, true
	}
	if len(in.Pages) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range in.Pages {
		sum += p.Confidence
	}
	return sum / float64(len(in.Pages)), true
}

// SaveResult is the pipeline entry point for a completed OCR attempt.
//
// A submission naming a job that is no longer the document's current job
// is stale (a late callback racing a requeue) and is rejected with
// CONFLICT rather than allowed to clobber the newer attempt's text.
func (s *Service) SaveResult(ctx context.Context, documentID uuid.UUID, in ResultInput) (*models.DocumentText, error) {
	if in.RawText == "" {
		return nil, apperr.New(apperr.ErrValidation, "raw_text is required")
	}

	caller, ok := tenant.CallerFromContext(ctx)
	if !ok {
		return nil, apperr.New(apperr.ErrUnauthorized, "no caller in context")
	}

	// Resolve and scope-check the document before touching anything. The
	// worker is a privileged internal service and skips case scoping.
	orgScope := uuid.Nil
	if !caller.IsWorker() {
		sub := caller.Subject
		if sub == nil {
			return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
		}
		orgScope = sub.OrgID
	}

	doc, err := s.getDoc(ctx, documentID, orgScope)
	if err != nil {
		return nil, err
	}
	if !caller.IsWorker() {
		if _, err := s.cases.Get(ctx, doc.caseID); err != nil {
			return nil, err
		}
	}

	normalized := nepali.Normalize(in.RawText)
	if normalized == "" {
		return nil, apperr.New(apperr.ErrValidation, "raw_text is empty after normalization")
	}
	numbersASCII := nepali.TransliterateDigits(normalized)
	textHash := nepali.TextHash(normalized)
	section := SectionFor(doc.documentType)

	avg, hasAvg := AverageConfidence(in)
	needsReview := hasAvg && models.DeriveNeedsReview(avg)

	if in.Entities == nil {
		in.Entities = json.RawMessage("[]")
	}
	if in.AutoSections == nil {
		in.AutoSections = json.RawMessage("[]")
	}
	if in.Extraction == nil {
		in.Extraction = json.RawMessage("{}")
	}
	if in.SearchHints == nil {
		in.SearchHints = []string{}
	}
	if in.Pages == nil {
		in.Pages = []models.PageText{}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromDB("begin save result", err)
	}
	defer tx.Rollback(ctx)

	// Re-read the job link under lock: the stale-submission check must
	// see the effect of any concurrent requeue.
	var currentJobID *uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT ocr_job_id FROM documents WHERE id = $1 FOR UPDATE`, doc.id,
	).Scan(&currentJobID); err != nil {
		return nil, apperr.FromDB("lock document", err)
	}

	completeJobID := in.JobID
	if completeJobID == nil {
		completeJobID = currentJobID
	}
	if in.JobID != nil {
		if currentJobID == nil || *in.JobID != *currentJobID {
			return nil, apperr.New(apperr.ErrConflict, "job %s is not the document's current OCR job", *in.JobID)
		}
	}

	if completeJobID != nil {
		var jobDoc uuid.UUID
		var jobStatus models.JobStatus
		err := tx.QueryRow(ctx,
			`SELECT document_id, status FROM ocr_jobs WHERE id = $1 FOR UPDATE`, *completeJobID,
		).Scan(&jobDoc, &jobStatus)
		if err != nil {
			return nil, apperr.FromDB("get job", err)
		}
		if jobDoc != doc.id {
			return nil, apperr.New(apperr.ErrConflict, "job %s belongs to another document", *completeJobID)
		}
		if err := ocr.CheckComplete(jobStatus); err != nil {
			return nil, err
		}
	}

	// Full-replace upsert: last write wins, nothing is merged.
	row := tx.QueryRow(ctx,
		`INSERT INTO document_texts (id, org_id, document_id, case_id, section,
			full_text, full_text_ne_norm, numbers_ascii, text_hash,
			entities, search_hints, pages, auto_sections, extraction,
			needs_review, garbage_rate, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now())
		 ON CONFLICT (org_id, document_id) DO UPDATE SET
			case_id = EXCLUDED.case_id, section = EXCLUDED.section,
			full_text = EXCLUDED.full_text, full_text_ne_norm = EXCLUDED.full_text_ne_norm,
			numbers_ascii = EXCLUDED.numbers_ascii, text_hash = EXCLUDED.text_hash,
			entities = EXCLUDED.entities, search_hints = EXCLUDED.search_hints,
			pages = EXCLUDED.pages, auto_sections = EXCLUDED.auto_sections,
			extraction = EXCLUDED.extraction, needs_review = EXCLUDED.needs_review,
			garbage_rate = EXCLUDED.garbage_rate, updated_at = now()
		 RETURNING id, org_id, document_id, case_id, section, full_text, full_text_ne_norm,
			numbers_ascii, text_hash, entities, search_hints, pages, auto_sections, extraction,
			needs_review, garbage_rate, updated_at`,
		uuid.New(), doc.orgID, doc.id, doc.caseID, section,
		in.RawText, normalized, numbersASCII, textHash,
		in.Entities, in.SearchHints, in.Pages, in.AutoSections, in.Extraction,
		needsReview, in.Metrics.GarbageRate,
	)
	text, err := scanText(row)
	if err != nil {
		return nil, apperr.FromDB("upsert document text", err)
	}

	// Mirror onto the document. needs_review is recomputed here, never
	// carried over: it is derived from avg_confidence by definition.
	pages := doc.pages
	if pages == 0 {
		if in.Metrics.Pages > 0 {
			pages = in.Metrics.Pages
		} else if len(in.Pages) > 0 {
			pages = len(in.Pages)
		}
	}

	if hasAvg {
		_, err = tx.Exec(ctx,
			`UPDATE documents SET ocr_status = 'completed', avg_confidence = $2, needs_review = $3,
				text_doc_id = $4, pages = $5, updated_at = now()
			 WHERE id = $1`,
			doc.id, avg, needsReview, text.ID, pages,
		)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE documents SET ocr_status = 'completed', text_doc_id = $2, pages = $3, updated_at = now()
			 WHERE id = $1`,
			doc.id, text.ID, pages,
		)
	}
	if err != nil {
		return nil, apperr.FromDB("update document", err)
	}

	if completeJobID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE ocr_jobs SET status = 'completed', finished_at = now(),
				pages = $2, duration_ms = $3, garbage_rate = $4
			 WHERE id = $1`,
			*completeJobID, in.Metrics.Pages, in.Metrics.DurationMs, in.Metrics.GarbageRate,
		)
		if err != nil {
			return nil, apperr.FromDB("complete job", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromDB("commit save result", err)
	}
	return text, nil
}

// GetText returns the canonical text for a document in the caller's scope.
func (s *Service) GetText(ctx context.Context, documentID uuid.UUID) (*models.DocumentText, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}

	doc, err := s.getDoc(ctx, documentID, sub.OrgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cases.Get(ctx, doc.caseID); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`SELECT id, org_id, document_id, case_id, section, full_text, full_text_ne_norm,
			numbers_ascii, text_hash, entities, search_hints, pages, auto_sections, extraction,
			needs_review, garbage_rate, updated_at
		 FROM document_texts WHERE document_id = $1 AND org_id = $2`,
		documentID, sub.OrgID,
	)
	text, err := scanText(row)
	if err != nil {
		return nil, apperr.FromDB("get document text", err)
	}
	return text, nil
}

type docInfo struct {
	id           uuid.UUID
	orgID        uuid.UUID
	caseID       uuid.UUID
	documentType string
	pages        int
}

func (s *Service) getDoc(ctx context.Context, documentID, orgID uuid.UUID) (*docInfo, error) {
	q := `SELECT id, org_id, case_id, document_type, pages FROM documents WHERE id = $1`
	args := []interface{}{documentID}
	if orgID != uuid.Nil {
		q += ` AND org_id = $2`
		args = append(args, orgID)
	}

	var d docInfo
	err := s.db.QueryRow(ctx, q, args...).Scan(&d.id, &d.orgID, &d.caseID, &d.documentType, &d.pages)
	if err != nil {
		return nil, apperr.FromDB("get document", err)
	}
	return &d, nil
}

type textRow interface {
	Scan(dest ...any) error
}

func scanText(row textRow) (*models.DocumentText, error) {
	var t models.DocumentText
	err := row.Scan(&t.ID, &t.OrgID, &t.DocumentID, &t.CaseID, &t.Section,
		&t.FullText, &t.FullTextNeNorm, &t.NumbersASCII, &t.TextHash,
		&t.Entities, &t.SearchHints, &t.Pages, &t.AutoSections, &t.Extraction,
		&t.NeedsReview, &t.GarbageRate, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
