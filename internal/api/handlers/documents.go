package handlers

import (
	"net/http"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/document"
	"github.com/nyayalaya/casefile/internal/extraction"

	"github.com/google/uuid"
)

const maxUploadSize = 64 << 20

type DocumentHandler struct {
	svc        *document.Service
	extractSvc *extraction.Service
	audit      *audit.Service
}

func NewDocumentHandler(svc *document.Service, extractSvc *extraction.Service, auditSvc *audit.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc, extractSvc: extractSvc, audit: auditSvc}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, apperr.New(apperr.ErrValidation, "invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.New(apperr.ErrValidation, "file field is required"))
		return
	}
	defer file.Close()

	caseID, err := uuid.Parse(r.FormValue("caseId"))
	if err != nil {
		writeError(w, apperr.New(apperr.ErrValidation, "invalid caseId"))
		return
	}

	doc, err := h.svc.Upload(r.Context(), document.UploadRequest{
		CaseID:       caseID,
		DocumentType: r.FormValue("documentType"),
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Data:         file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "document.upload", ResourceType: "document", ResourceID: &doc.ID,
		Details:   map[string]interface{}{"case_id": caseID, "filename": doc.Filename},
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req document.UpdateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "document.update", ResourceType: "document", ResourceID: &doc.ID,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		Action: "document.delete", ResourceType: "document", ResourceID: &id,
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DocumentHandler) RequeueOCR(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.svc.RequeueOCR(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), audit.LogEntry{
		Action: "document.requeue_ocr", ResourceType: "document", ResourceID: &id,
		Details:   map[string]interface{}{"job_id": job.ID},
		IPAddress: r.RemoteAddr,
	})
	writeJSON(w, http.StatusAccepted, job)
}

// OCRResult accepts the text payload produced by the OCR engine. Reached by
// the worker (token auth) or by an admin resubmitting a result by hand.
func (h *DocumentHandler) OCRResult(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in extraction.ResultInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	text, err := h.extractSvc.SaveResult(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, text)
}

func (h *DocumentHandler) Text(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := h.extractSvc.GetText(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, text)
}
