package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/tenant"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type LogEntry struct {
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
}

// Log records a mutation in the caller's org. Audit writes are best-effort:
// a failed insert is logged but never fails the operation it annotates.
func (s *Service) Log(ctx context.Context, entry LogEntry) {
	sub := tenant.SubjectFromContext(ctx)

	orgID := tenant.OrgIDFromContext(ctx)
	var userID *uuid.UUID
	if sub != nil {
		userID = &sub.UserID
	}

	details, _ := json.Marshal(entry.Details)
	if entry.Details == nil {
		details = []byte("{}")
	}

	// RemoteAddr may carry a port when the request came in directly.
	var ip *netip.Addr
	if entry.IPAddress != "" {
		if parsed, err := netip.ParseAddr(entry.IPAddress); err == nil {
			ip = &parsed
		} else if host, _, serr := net.SplitHostPort(entry.IPAddress); serr == nil {
			if parsed, err := netip.ParseAddr(host); err == nil {
				ip = &parsed
			}
		}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (org_id, user_id, action, resource_type, resource_id, details, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		orgID, userID, entry.Action, entry.ResourceType, entry.ResourceID, details, ip,
	)
	if err != nil {
		slog.Error("audit insert failed", "action", entry.Action, "error", err)
	}
}

type Query struct {
	StartDate *time.Time
	EndDate   *time.Time
	Action    string
	Limit     int
	Offset    int
}

func (s *Service) List(ctx context.Context, q Query) ([]models.AuditLog, error) {
	orgID := tenant.OrgIDFromContext(ctx)
	if q.Limit <= 0 {
		q.Limit = 50
	}

	query := `SELECT id, org_id, user_id, action, resource_type, resource_id, details, ip_address, created_at
			  FROM audit_logs WHERE org_id = $1`
	args := []interface{}{orgID}
	argIdx := 2

	if q.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, q.Action)
		argIdx++
	}
	if q.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *q.StartDate)
		argIdx++
	}
	if q.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *q.EndDate)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.OrgID, &l.UserID, &l.Action, &l.ResourceType, &l.ResourceID, &l.Details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
