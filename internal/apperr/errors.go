// Package apperr defines the error taxonomy shared by all services:
// sentinel kinds wrapped with operation context, checked via errors.Is
// and mapped to HTTP status codes at the API edge.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the resource exists in the caller's org but the
	// caller's role or relationship denies it. Distinct from ErrNotFound,
	// which means the resource is absent from the org entirely.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	// ErrConflict covers state-machine violations and uniqueness breaches.
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal error")
)

// Wrap preserves the typed kind while adding operation context.
func Wrap(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// New builds an error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}

const pgUniqueViolation = "23505"

// FromDB translates storage errors into the taxonomy: missing rows become
// NOT_FOUND, unique-constraint violations become CONFLICT (the dedup and
// one-text-per-document invariants are enforced by the database, so this
// is where they surface), anything else is INTERNAL.
func FromDB(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(ErrNotFound, operation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return Wrap(ErrConflict, operation, err)
	}
	return Wrap(ErrInternal, operation, err)
}
