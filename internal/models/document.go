package models

import (
	"time"

	"github.com/google/uuid"
)

type OCRStatus string

const (
	OCRStatusPending   OCRStatus = "pending"
	OCRStatusRunning   OCRStatus = "running"
	OCRStatusCompleted OCRStatus = "completed"
	OCRStatusFailed    OCRStatus = "failed"
)

// Well-known document types. The set is open: unknown types are accepted
// and fall through to the "other" section during extraction.
const (
	DocTypePOA          = "POA"
	DocTypePetition     = "Petition"
	DocTypeWritPetition = "Writ Petition"
	DocTypeInterimOrder = "Interim Order"
	DocTypeFinalOrder   = "Final Order"
	DocTypeJudgment     = "Judgment"
	DocTypeAppeal       = "Appeal"
	DocTypeEvidence     = "Evidence"
)

// ReviewThreshold is the average-confidence floor below which extracted
// text is flagged for human review.
const ReviewThreshold = 0.85

// DeriveNeedsReview is the single place the needs_review flag is computed.
// It is a derived field: it must be recomputed on every write that sets
// the average confidence, never stored independently.
func DeriveNeedsReview(avgConfidence float64) bool {
	return avgConfidence < ReviewThreshold
}

type StorageInfo struct {
	Provider  string `json:"provider" db:"storage_provider"`
	Key       string `json:"key" db:"storage_key"`
	MimeType  string `json:"mime_type" db:"mime_type"`
	SizeBytes int64  `json:"size_bytes" db:"size_bytes"`
	SHA256    string `json:"sha256" db:"sha256"`
	Pages     int    `json:"pages" db:"pages"`
}

type OCRInfo struct {
	Status        OCRStatus  `json:"status" db:"ocr_status"`
	AvgConfidence *float64   `json:"avg_confidence,omitempty" db:"avg_confidence"`
	NeedsReview   bool       `json:"needs_review" db:"needs_review"`
	TextDocID     *uuid.UUID `json:"text_doc_id,omitempty" db:"text_doc_id"`
}

type Document struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	OrgID        uuid.UUID   `json:"org_id" db:"org_id"`
	CaseID       uuid.UUID   `json:"case_id" db:"case_id"`
	DocumentType string      `json:"document_type" db:"document_type"`
	Filename     string      `json:"filename" db:"filename"`
	UploadedBy   uuid.UUID   `json:"uploaded_by" db:"uploaded_by"`
	Storage      StorageInfo `json:"storage"`
	OCR          OCRInfo     `json:"ocr"`
	OCRJobID     *uuid.UUID  `json:"ocr_job_id,omitempty" db:"ocr_job_id"`
	Version      int         `json:"version" db:"version"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
