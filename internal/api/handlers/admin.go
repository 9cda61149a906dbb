package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/tenant"
)

type AdminHandler struct {
	audit *audit.Service
}

func NewAdminHandler(auditSvc *audit.Service) *AdminHandler {
	return &AdminHandler{audit: auditSvc}
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	sub := tenant.SubjectFromContext(r.Context())
	if sub == nil {
		writeError(w, apperr.New(apperr.ErrUnauthorized, "no subject in context"))
		return
	}
	if !sub.IsAdmin() {
		writeError(w, apperr.New(apperr.ErrForbidden, "admin role required"))
		return
	}

	q := audit.Query{Action: r.URL.Query().Get("action")}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, apperr.New(apperr.ErrValidation, "startDate must be RFC3339"))
			return
		}
		q.StartDate = &t
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, apperr.New(apperr.ErrValidation, "endDate must be RFC3339"))
			return
		}
		q.EndDate = &t
	}

	logs, err := h.audit.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "count": len(logs)})
}
