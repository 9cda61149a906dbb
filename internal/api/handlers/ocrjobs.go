package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/ocr"
)

type OCRJobHandler struct {
	svc   *ocr.Service
	audit *audit.Service
}

func NewOCRJobHandler(svc *ocr.Service, auditSvc *audit.Service) *OCRJobHandler {
	return &OCRJobHandler{svc: svc, audit: auditSvc}
}

func (h *OCRJobHandler) Queue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		writeError(w, apperr.New(apperr.ErrValidation, "invalid documentId"))
		return
	}

	job, err := h.svc.Queue(r.Context(), docID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "ocr.queue", ResourceType: "ocr_job", ResourceID: &job.ID,
		Details:   map[string]interface{}{"document_id": docID},
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusAccepted, job)
}

func (h *OCRJobHandler) List(w http.ResponseWriter, r *http.Request) {
	var f ocr.ListFilter
	if raw := r.URL.Query().Get("documentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.New(apperr.ErrValidation, "invalid documentId"))
			return
		}
		f.DocumentID = id
	}
	f.Status = models.JobStatus(r.URL.Query().Get("status"))
	f.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	f.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	jobs, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs, "count": len(jobs)})
}

func (h *OCRJobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *OCRJobHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.svc.Start(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *OCRJobHandler) Fail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Error string `json:"error"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Error == "" {
		writeError(w, apperr.New(apperr.ErrValidation, "error message is required"))
		return
	}

	job, err := h.svc.Fail(r.Context(), id, req.Error)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
