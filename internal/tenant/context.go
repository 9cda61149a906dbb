// Package tenant resolves authenticated requests into an organization
// scope. The Subject is carried on the request context, never in package
// state, so concurrent requests cannot cross-contaminate.
package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/models"
)

// Subject is the resolved identity every scoped query hangs off of.
type Subject struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   models.Role
	Email  string
}

func (s *Subject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

type contextKey string

const (
	subjectKey contextKey = "subject"
	callerKey  contextKey = "caller"
)

func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey, s)
}

func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectKey).(*Subject)
	return s
}

func OrgIDFromContext(ctx context.Context) uuid.UUID {
	if s := SubjectFromContext(ctx); s != nil {
		return s.OrgID
	}
	return uuid.Nil
}
