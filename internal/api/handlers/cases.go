package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/document"
	"github.com/nyayalaya/casefile/internal/models"
)

type CaseHandler struct {
	svc   *cases.Service
	docs  *document.Service
	audit *audit.Service
}

func NewCaseHandler(svc *cases.Service, docs *document.Service, auditSvc *audit.Service) *CaseHandler {
	return &CaseHandler{svc: svc, docs: docs, audit: auditSvc}
}

func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cases.CreateCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "case.create", ResourceType: "case", ResourceID: &c.ID,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusCreated, c)
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.svc.List(r.Context(), cases.ListFilter{
		Query:  r.URL.Query().Get("q"),
		Status: models.CaseStatus(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": list, "count": len(list)})
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req cases.UpdateCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "case.update", ResourceType: "case", ResourceID: &c.ID,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusOK, c)
}

func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "case.delete", ResourceType: "case", ResourceID: &id,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CaseHandler) Documents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "caseID")
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := h.docs.ListByCase(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.ErrValidation, "invalid %s", param)
	}
	return id, nil
}
