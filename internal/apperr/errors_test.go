package apperr

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapPreservesKind(t *testing.T) {
	err := Wrap(ErrConflict, "start job", errors.New("status is running"))
	if !IsKind(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if IsKind(err, ErrNotFound) {
		t.Fatalf("conflict error must not match ErrNotFound")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(ErrInternal, "noop", nil); err != nil {
		t.Fatalf("wrapping nil must return nil, got %v", err)
	}
}

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrValidation, "field %q is required", "raw_text")
	if !IsKind(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	want := `validation failed: field "raw_text" is required`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestFromDB(t *testing.T) {
	tests := []struct {
		name string
		in   error
		kind error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"other pg error", &pgconn.PgError{Code: "23503"}, ErrInternal},
		{"plain error", errors.New("connection reset"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDB("op", tt.in)
			if !IsKind(err, tt.kind) {
				t.Fatalf("FromDB(%v) = %v, want kind %v", tt.in, err, tt.kind)
			}
		})
	}
	if err := FromDB("op", nil); err != nil {
		t.Fatalf("FromDB(nil) = %v, want nil", err)
	}
}
