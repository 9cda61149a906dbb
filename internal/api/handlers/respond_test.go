package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nyayalaya/casefile/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.ErrValidation, "missing field"), http.StatusBadRequest},
		{apperr.New(apperr.ErrUnauthorized, "no token"), http.StatusUnauthorized},
		{apperr.New(apperr.ErrForbidden, "no relation to case"), http.StatusForbidden},
		{apperr.New(apperr.ErrNotFound, "no such case"), http.StatusNotFound},
		{apperr.New(apperr.ErrConflict, "status is running"), http.StatusConflict},
		{apperr.Wrap(apperr.ErrInternal, "query", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperr.Wrap(apperr.ErrInternal, "insert document", errors.New("connection refused to 10.0.0.5")))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal detail leaked to caller")
	}
}

func TestWriteErrorReportsConflictContext(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperr.New(apperr.ErrConflict, "cannot start job: status is running"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "running") {
		t.Error("conflict must report current-state context")
	}
}
