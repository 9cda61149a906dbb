package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageText carries the raw per-page OCR output as submitted by the engine.
type PageText struct {
	Number     int     `json:"number"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence"`
}

// DocumentText is the canonical extracted text for one Document, unique per
// (org, document). A re-submission replaces the whole record; nothing is
// merged or appended.
type DocumentText struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrgID          uuid.UUID       `json:"org_id" db:"org_id"`
	DocumentID     uuid.UUID       `json:"document_id" db:"document_id"`
	CaseID         uuid.UUID       `json:"case_id" db:"case_id"`
	Section        string          `json:"section" db:"section"`
	FullText       string          `json:"full_text" db:"full_text"`
	FullTextNeNorm string          `json:"full_text_ne_norm" db:"full_text_ne_norm"`
	NumbersASCII   string          `json:"numbers_ascii" db:"numbers_ascii"`
	TextHash       string          `json:"text_hash" db:"text_hash"`
	Entities       json.RawMessage `json:"entities,omitempty" db:"entities"`
	SearchHints    []string        `json:"search_hints,omitempty" db:"search_hints"`
	Pages          []PageText      `json:"pages,omitempty" db:"pages"`
	AutoSections   json.RawMessage `json:"auto_sections,omitempty" db:"auto_sections"`
	Extraction     json.RawMessage `json:"extraction,omitempty" db:"extraction"`
	NeedsReview    bool            `json:"needs_review" db:"needs_review"`
	GarbageRate    float64         `json:"garbage_rate" db:"garbage_rate"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
