package queue

const (
	// TypeOCRDispatch delivers a freshly queued document to the external
	// OCR engine.
	TypeOCRDispatch = "ocr:dispatch"
)

type OCRDispatchPayload struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	OrgID      string `json:"org_id"`
}
