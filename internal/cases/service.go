package cases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/access"
	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/storage"
	"github.com/nyayalaya/casefile/internal/tenant"
)

const caseColumns = `id, org_id, case_number, court_level, case_type, status,
	parties, assigned_to, hearings, created_by, created_at, updated_at`

type Service struct {
	db     *pgxpool.Pool
	store  storage.Storage
	bucket string
}

func NewService(db *pgxpool.Pool, store storage.Storage, bucket string) *Service {
	return &Service{db: db, store: store, bucket: bucket}
}

type CreateCaseRequest struct {
	CaseNumber string              `json:"case_number"`
	CourtLevel string              `json:"court_level"`
	CaseType   string              `json:"case_type"`
	Status     models.CaseStatus   `json:"status"`
	Parties    []models.Party      `json:"parties"`
	AssignedTo []models.Assignment `json:"assigned_to"`
	Hearings   []models.Hearing    `json:"hearings"`
}

func (s *Service) Create(ctx context.Context, req CreateCaseRequest) (*models.Case, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}
	if req.CaseNumber == "" {
		return nil, apperr.New(apperr.ErrValidation, "case_number is required")
	}
	if req.Status == "" {
		req.Status = models.CaseStatusPending
	}
	if !req.Status.Valid() {
		return nil, apperr.New(apperr.ErrValidation, "invalid status %q", req.Status)
	}
	if req.Parties == nil {
		req.Parties = []models.Party{}
	}
	if req.AssignedTo == nil {
		req.AssignedTo = []models.Assignment{}
	}
	if req.Hearings == nil {
		req.Hearings = []models.Hearing{}
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO cases (id, org_id, case_number, court_level, case_type, status, parties, assigned_to, hearings, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+caseColumns,
		uuid.New(), sub.OrgID, req.CaseNumber, req.CourtLevel, req.CaseType, req.Status,
		req.Parties, req.AssignedTo, req.Hearings, sub.UserID,
	)
	c, err := scanCase(row)
	if err != nil {
		return nil, apperr.FromDB("create case", err)
	}
	return c, nil
}

// Get applies the full scope policy: absent from the caller's org is
// NOT_FOUND, present but outside the lawyer's relationships is FORBIDDEN.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}

	c, err := s.getInOrg(ctx, id, sub.OrgID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessCase(sub, c) {
		return nil, apperr.New(apperr.ErrForbidden, "no access to case %s", id)
	}
	return c, nil
}

func (s *Service) getInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.Case, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1 AND org_id = $2`, id, orgID)
	c, err := scanCase(row)
	if err != nil {
		return nil, apperr.FromDB("get case", err)
	}
	return c, nil
}

type ListFilter struct {
	Query  string
	Status models.CaseStatus
	Page   int
	Limit  int
}

// List returns the caller's visible cases. For lawyers the relationship
// predicate is pushed into SQL so pagination counts only reachable rows.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Case, error) {
	sub := tenant.SubjectFromContext(ctx)
	if sub == nil {
		return nil, apperr.New(apperr.ErrUnauthorized, "no subject in context")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	query := `SELECT ` + caseColumns + ` FROM cases WHERE org_id = $1`
	args := []interface{}{sub.OrgID}
	argIdx := 2

	if sub.Role != models.RoleAdmin {
		query += fmt.Sprintf(` AND (created_by = $%d
			OR assigned_to @> jsonb_build_array(jsonb_build_object('user_id', $%d::uuid))
			OR parties @> jsonb_build_array(jsonb_build_object('lawyer_user_id', $%d::uuid)))`,
			argIdx, argIdx, argIdx)
		args = append(args, sub.UserID)
		argIdx++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Query != "" {
		query += fmt.Sprintf(" AND (case_number ILIKE $%d OR case_type ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Query+"%")
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromDB("list cases", err)
	}
	defer rows.Close()

	cases := []models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, apperr.FromDB("scan case", err)
		}
		cases = append(cases, *c)
	}
	return cases, nil
}

// UpdateCaseRequest is the allow-list of mutable fields; nil means leave
// unchanged. OrgID, CreatedBy and ID are never patchable.
type UpdateCaseRequest struct {
	CaseNumber *string              `json:"case_number,omitempty"`
	CourtLevel *string              `json:"court_level,omitempty"`
	CaseType   *string              `json:"case_type,omitempty"`
	Status     *models.CaseStatus   `json:"status,omitempty"`
	Parties    *[]models.Party      `json:"parties,omitempty"`
	AssignedTo *[]models.Assignment `json:"assigned_to,omitempty"`
	Hearings   *[]models.Hearing    `json:"hearings,omitempty"`
}

// ApplyPatch mutates c with the allow-listed fields of req.
func ApplyPatch(c *models.Case, req UpdateCaseRequest) error {
	if req.CaseNumber != nil {
		if *req.CaseNumber == "" {
			return apperr.New(apperr.ErrValidation, "case_number cannot be empty")
		}
		c.CaseNumber = *req.CaseNumber
	}
	if req.CourtLevel != nil {
		c.CourtLevel = *req.CourtLevel
	}
	if req.CaseType != nil {
		c.CaseType = *req.CaseType
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return apperr.New(apperr.ErrValidation, "invalid status %q", *req.Status)
		}
		c.Status = *req.Status
	}
	if req.Parties != nil {
		c.Parties = *req.Parties
	}
	if req.AssignedTo != nil {
		c.AssignedTo = *req.AssignedTo
	}
	if req.Hearings != nil {
		c.Hearings = *req.Hearings
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCaseRequest) (*models.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyPatch(c, req); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`UPDATE cases SET case_number = $3, court_level = $4, case_type = $5, status = $6,
			parties = $7, assigned_to = $8, hearings = $9, updated_at = now()
		 WHERE id = $1 AND org_id = $2
		 RETURNING `+caseColumns,
		id, c.OrgID, c.CaseNumber, c.CourtLevel, c.CaseType, c.Status,
		c.Parties, c.AssignedTo, c.Hearings,
	)
	updated, err := scanCase(row)
	if err != nil {
		return nil, apperr.FromDB("update case", err)
	}
	return updated, nil
}

// Delete removes the case and cascades over its documents: their texts,
// jobs and rows go in one transaction, the backing blobs best-effort after
// commit. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sub := tenant.SubjectFromContext(ctx)
	if !access.CanDelete(sub) {
		return apperr.New(apperr.ErrForbidden, "only admins may delete cases")
	}

	if _, err := s.getInOrg(ctx, id, sub.OrgID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.FromDB("begin delete case", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT storage_key FROM documents WHERE case_id = $1 AND org_id = $2`, id, sub.OrgID)
	if err != nil {
		return apperr.FromDB("list case documents", err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return apperr.FromDB("scan storage key", err)
		}
		if key != "" {
			keys = append(keys, key)
		}
	}
	rows.Close()

	for _, stmt := range []string{
		`DELETE FROM document_texts WHERE case_id = $1 AND org_id = $2`,
		`DELETE FROM ocr_jobs WHERE org_id = $2 AND document_id IN (SELECT id FROM documents WHERE case_id = $1)`,
		`DELETE FROM documents WHERE case_id = $1 AND org_id = $2`,
		`DELETE FROM cases WHERE id = $1 AND org_id = $2`,
	} {
		if _, err := tx.Exec(ctx, stmt, id, sub.OrgID); err != nil {
			return apperr.FromDB("delete case", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromDB("commit delete case", err)
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, s.bucket, key); err != nil {
			slog.Warn("blob cleanup failed", "key", key, "error", err)
		}
	}
	return nil
}

type caseRow interface {
	Scan(dest ...any) error
}

func scanCase(row caseRow) (*models.Case, error) {
	var c models.Case
	err := row.Scan(&c.ID, &c.OrgID, &c.CaseNumber, &c.CourtLevel, &c.CaseType, &c.Status,
		&c.Parties, &c.AssignedTo, &c.Hearings, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
