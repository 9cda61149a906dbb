package handlers

import (
	"net/http"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/tenant"
)

type UserHandler struct {
	svc   *tenant.Service
	audit *audit.Service
}

func NewUserHandler(svc *tenant.Service, auditSvc *audit.Service) *UserHandler {
	return &UserHandler{svc: svc, audit: auditSvc}
}

// Create provisions a user in the caller's org. Admin only.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub := tenant.SubjectFromContext(r.Context())
	if sub == nil {
		writeError(w, apperr.New(apperr.ErrUnauthorized, "no subject in context"))
		return
	}
	if !sub.IsAdmin() {
		writeError(w, apperr.New(apperr.ErrForbidden, "admin role required"))
		return
	}

	var req tenant.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.svc.CreateUser(r.Context(), sub.OrgID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "user.create", ResourceType: "user", ResourceID: &u.ID,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	sub := tenant.SubjectFromContext(r.Context())
	if sub == nil {
		writeError(w, apperr.New(apperr.ErrUnauthorized, "no subject in context"))
		return
	}

	u, err := h.svc.GetUserByID(r.Context(), sub.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
