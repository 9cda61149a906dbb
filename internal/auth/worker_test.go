package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nyayalaya/casefile/internal/tenant"
)

func workerTestHandler(t *testing.T, wantWorker bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := tenant.CallerFromContext(r.Context())
		if wantWorker {
			if !ok || !caller.IsWorker() {
				t.Error("expected worker caller in context")
			}
		} else if ok {
			t.Error("expected no caller in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestWorkerAuthValidToken(t *testing.T) {
	m := NewWorkerAuth("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/documents/x/ocr-result", nil)
	req.Header.Set(WorkerTokenHeader, "s3cret")
	rec := httptest.NewRecorder()

	m.Authenticate(workerTestHandler(t, true)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWorkerAuthWrongToken(t *testing.T) {
	m := NewWorkerAuth("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/documents/x/ocr-result", nil)
	req.Header.Set(WorkerTokenHeader, "guess")
	rec := httptest.NewRecorder()

	m.Authenticate(workerTestHandler(t, true)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWorkerAuthMissingHeaderFallsThrough(t *testing.T) {
	m := NewWorkerAuth("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/documents/x/ocr-result", nil)
	rec := httptest.NewRecorder()

	m.Authenticate(workerTestHandler(t, false)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (pass through)", rec.Code)
	}
}

func TestWorkerAuthDisabledRejectsAll(t *testing.T) {
	m := NewWorkerAuth("")
	req := httptest.NewRequest(http.MethodPost, "/documents/x/ocr-result", nil)
	rec := httptest.NewRecorder()

	// An empty configured token must never match a presented one.
	req.Header.Set(WorkerTokenHeader, "anything")
	m.Authenticate(workerTestHandler(t, true)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
