package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nyayalaya/casefile/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP. NOT_FOUND and FORBIDDEN
// stay distinct: a lawyer probing an org case it has no relation to gets
// 403, a case absent from the org gets 404.
func statusFor(err error) int {
	switch {
	case apperr.IsKind(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case apperr.IsKind(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperr.IsKind(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case apperr.IsKind(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case apperr.IsKind(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports the error to the caller. Internal failures are logged
// with detail server-side and reported generically.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.New(apperr.ErrValidation, "invalid JSON body: %v", err)
	}
	return nil
}
