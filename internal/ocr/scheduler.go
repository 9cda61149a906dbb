// Package ocr owns the OcrJob state machine: queuing, the single active
// attempt per document, start/complete/fail transitions and the admin
// requeue recovery path.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/queue"
	"github.com/nyayalaya/casefile/internal/tenant"
)

const jobColumns = `id, org_id, document_id, status, engine, attempt,
	queued_at, started_at, finished_at, pages, duration_ms, garbage_rate, error_message`

type Service struct {
	db     *pgxpool.Pool
	cases  *cases.Service
	queue  *queue.Client
	engine string
}

// NewService wires the scheduler. queue may be nil, in which case jobs are
// queued without being dispatched (the engine must poll or be started
// manually).
func NewService(db *pgxpool.Pool, caseSvc *cases.Service, qc *queue.Client, engine string) *Service {
	return &Service{db: db, cases: caseSvc, queue: qc, engine: engine}
}

// docRef is the slice of a document row the scheduler needs.
type docRef struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	CaseID    uuid.UUID
	OCRStatus models.OCRStatus
	OCRJobID  *uuid.UUID
}

func (s *Service) getDocRef(ctx context.Context, documentID, orgID uuid.UUID) (*docRef, error) {
	q := `SELECT id, org_id, case_id, ocr_status, ocr_job_id FROM documents WHERE id = $1`
	args := []interface{}{documentID}
	if orgID != uuid.Nil {
		q += ` AND org_id = $2`
		args = append(args, orgID)
	}

	var d docRef
	err := s.db.QueryRow(ctx, q, args...).Scan(&d.ID, &d.OrgID, &d.CaseID, &d.OCRStatus, &d.OCRJobID)
	if err != nil {
		return nil, apperr.FromDB("get document", err)
	}
	return &d, nil
}

// Queue creates a queued job for the document and links it. At most one
// non-terminal job may exist per document; a second queue attempt while
// one is active is a conflict. Requeue is the explicit override.
func (s *Service) Queue(ctx context.Context, documentID uuid.UUID) (*models.OcrJob, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}

	doc, err := s.getDocRef(ctx, documentID, sub.OrgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cases.Get(ctx, doc.CaseID); err != nil {
		return nil, err
	}

	return s.createJob(ctx, doc, false)
}

// Requeue creates a brand-new job regardless of the current job's state
// and repoints the document at it. The orphaned prior job stays queryable
// by id. Admin only.
func (s *Service) Requeue(ctx context.Context, documentID uuid.UUID) (*models.OcrJob, error) {
	sub := tenant.SubjectFromContext(ctx)
	if !sub.IsAdmin() {
		return nil, apperr.New(apperr.ErrForbidden, "only admins may requeue OCR")
	}

	doc, err := s.getDocRef(ctx, documentID, sub.OrgID)
	if err != nil {
		return nil, err
	}

	return s.createJob(ctx, doc, true)
}

func (s *Service) createJob(ctx context.Context, doc *docRef, force bool) (*models.OcrJob, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromDB("begin queue job", err)
	}
	defer tx.Rollback(ctx)

	if !force {
		var active bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM ocr_jobs WHERE document_id = $1 AND status IN ('queued', 'running'))`,
			doc.ID,
		).Scan(&active)
		if err != nil {
			return nil, apperr.FromDB("check active job", err)
		}
		if active {
			return nil, apperr.New(apperr.ErrConflict, "document %s already has an active OCR job", doc.ID)
		}
	}

	var attempt int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(attempt), 0) + 1 FROM ocr_jobs WHERE document_id = $1`, doc.ID,
	).Scan(&attempt); err != nil {
		return nil, apperr.FromDB("next attempt", err)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO ocr_jobs (id, org_id, document_id, status, engine, attempt)
		 VALUES ($1, $2, $3, 'queued', $4, $5)
		 RETURNING `+jobColumns,
		uuid.New(), doc.OrgID, doc.ID, s.engine, attempt,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, apperr.FromDB("insert job", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET ocr_status = 'pending', ocr_job_id = $2, updated_at = now() WHERE id = $1`,
		doc.ID, job.ID,
	); err != nil {
		return nil, apperr.FromDB("link job to document", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromDB("commit queue job", err)
	}

	s.dispatch(job)
	return job, nil
}

func (s *Service) dispatch(job *models.OcrJob) {
	if s.queue == nil {
		return
	}
	err := s.queue.EnqueueOCRDispatch(queue.OCRDispatchPayload{
		JobID:      job.ID.String(),
		DocumentID: job.DocumentID.String(),
		OrgID:      job.OrgID.String(),
	})
	if err != nil {
		// The job row exists; a missed dispatch is recoverable via
		// requeue, so log rather than fail the request.
		slog.Error("ocr dispatch enqueue failed", "job_id", job.ID, "error", err)
	}
}

// Start transitions a queued job to running and mirrors the document
// status. Only the worker or an admin may start jobs.
func (s *Service) Start(ctx context.Context, jobID uuid.UUID) (*models.OcrJob, error) {
	caller, ok := tenant.CallerFromContext(ctx)
	if !ok {
		return nil, apperr.New(apperr.ErrUnauthorized, "no caller in context")
	}

	var job *models.OcrJob
	var err error
	if caller.IsWorker() {
		job, err = s.getJob(ctx, jobID, uuid.Nil)
	} else {
		if !caller.Subject.IsAdmin() {
			return nil, apperr.New(apperr.ErrForbidden, "only admins may start OCR jobs")
		}
		job, err = s.getJob(ctx, jobID, caller.Subject.OrgID)
	}
	if err != nil {
		return nil, err
	}

	if err := CheckStart(job.Status); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromDB("begin start job", err)
	}
	defer tx.Rollback(ctx)

	// Guarded update: a concurrent start loses the race and reports the
	// then-current status.
	row := tx.QueryRow(ctx,
		`UPDATE ocr_jobs SET status = 'running', started_at = now()
		 WHERE id = $1 AND status = 'queued'
		 RETURNING `+jobColumns, jobID,
	)
	started, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, gerr := s.getJob(ctx, jobID, uuid.Nil)
			if gerr == nil {
				if terr := CheckStart(current.Status); terr != nil {
					return nil, terr
				}
				return nil, apperr.New(apperr.ErrConflict, "job %s changed state concurrently", jobID)
			}
		}
		return nil, apperr.FromDB("start job", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET ocr_status = 'running', updated_at = now()
		 WHERE id = $1 AND ocr_status <> 'completed'`,
		started.DocumentID,
	); err != nil {
		return nil, apperr.FromDB("mirror document status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromDB("commit start job", err)
	}
	return started, nil
}

// Fail marks the job failed from any state. The parent document only
// follows when it has not already completed: a late failure callback must
// never regress a document a newer job finished (last-completed-wins).
// A job legitimately failing is a normal outcome, not a system error.
func (s *Service) Fail(ctx context.Context, jobID uuid.UUID, message string) (*models.OcrJob, error) {
	caller, ok := tenant.CallerFromContext(ctx)
	if !ok {
		return nil, apperr.New(apperr.ErrUnauthorized, "no caller in context")
	}

	var job *models.OcrJob
	var err error
	if caller.IsWorker() {
		job, err = s.getJob(ctx, jobID, uuid.Nil)
	} else {
		job, err = s.Get(ctx, jobID)
	}
	if err != nil {
		return nil, err
	}

	if err := CheckFail(job.Status); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.FromDB("begin fail job", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE ocr_jobs SET status = 'failed', finished_at = now(), error_message = $2
		 WHERE id = $1
		 RETURNING `+jobColumns, jobID, message,
	)
	failed, err := scanJob(row)
	if err != nil {
		return nil, apperr.FromDB("fail job", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET ocr_status = 'failed', updated_at = now()
		 WHERE id = $1 AND ocr_status <> 'completed'`,
		failed.DocumentID,
	); err != nil {
		return nil, apperr.FromDB("mirror document status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.FromDB("commit fail job", err)
	}
	return failed, nil
}

// Get returns a job in the caller's org; lawyers additionally need access
// to the document's case.
func (s *Service) Get(ctx context.Context, jobID uuid.UUID) (*models.OcrJob, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}

	job, err := s.getJob(ctx, jobID, sub.OrgID)
	if err != nil {
		return nil, err
	}

	if sub.Role != models.RoleAdmin {
		doc, err := s.getDocRef(ctx, job.DocumentID, sub.OrgID)
		if err != nil {
			return nil, err
		}
		if _, err := s.cases.Get(ctx, doc.CaseID); err != nil {
			return nil, err
		}
	}
	return job, nil
}

type ListFilter struct {
	DocumentID uuid.UUID
	Status     models.JobStatus
	Limit      int
	Offset     int
}

// List returns jobs visible to the caller: all org jobs for admins, only
// jobs of reachable cases for lawyers.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.OcrJob, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	query := `SELECT ` + prefixedJobColumns("j") + `
		FROM ocr_jobs j
		JOIN documents d ON d.id = j.document_id
		JOIN cases c ON c.id = d.case_id
		WHERE j.org_id = $1`
	args := []interface{}{sub.OrgID}
	argIdx := 2

	if sub.Role != models.RoleAdmin {
		query += fmt.Sprintf(` AND (c.created_by = $%d
			OR c.assigned_to @> jsonb_build_array(jsonb_build_object('user_id', $%d::uuid))
			OR c.parties @> jsonb_build_array(jsonb_build_object('lawyer_user_id', $%d::uuid)))`,
			argIdx, argIdx, argIdx)
		args = append(args, sub.UserID)
		argIdx++
	}
	if f.DocumentID != uuid.Nil {
		query += fmt.Sprintf(" AND j.document_id = $%d", argIdx)
		args = append(args, f.DocumentID)
		argIdx++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND j.status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY j.queued_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromDB("list jobs", err)
	}
	defer rows.Close()

	jobs := []models.OcrJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, apperr.FromDB("scan job", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// StorageKey resolves a document's blob key for dispatch. Worker callers
// only; tenant actors go through the document registry.
func (s *Service) StorageKey(ctx context.Context, documentID uuid.UUID) (string, error) {
	caller, ok := tenant.CallerFromContext(ctx)
	if !ok || !caller.IsWorker() {
		return "", apperr.New(apperr.ErrForbidden, "worker credential required")
	}
	var key string
	err := s.db.QueryRow(ctx,
		`SELECT storage_key FROM documents WHERE id = $1`, documentID,
	).Scan(&key)
	if err != nil {
		return "", apperr.FromDB("get storage key", err)
	}
	return key, nil
}

func (s *Service) getJob(ctx context.Context, jobID, orgID uuid.UUID) (*models.OcrJob, error) {
	q := `SELECT ` + jobColumns + ` FROM ocr_jobs WHERE id = $1`
	args := []interface{}{jobID}
	if orgID != uuid.Nil {
		q += ` AND org_id = $2`
		args = append(args, orgID)
	}
	job, err := scanJob(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, apperr.FromDB("get job", err)
	}
	return job, nil
}

func prefixedJobColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.org_id, %[1]s.document_id, %[1]s.status, %[1]s.engine, %[1]s.attempt,
	%[1]s.queued_at, %[1]s.started_at, %[1]s.finished_at, %[1]s.pages, %[1]s.duration_ms, %[1]s.garbage_rate, %[1]s.error_message`, alias)
}

type jobRow interface {
	Scan(dest ...any) error
}

func scanJob(row jobRow) (*models.OcrJob, error) {
	var j models.OcrJob
	err := row.Scan(&j.ID, &j.OrgID, &j.DocumentID, &j.Status, &j.Engine, &j.Attempt,
		&j.QueuedAt, &j.StartedAt, &j.FinishedAt,
		&j.Metrics.Pages, &j.Metrics.DurationMs, &j.Metrics.GarbageRate, &j.ErrorMessage)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
