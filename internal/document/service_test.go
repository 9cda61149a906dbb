package document

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/models"
)

// stubRow feeds scanDocument a fixed value list in column order, so the
// test breaks whenever docColumns and the scan destinations drift apart.
type stubRow struct {
	vals []any
}

func (r stubRow) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.vals))
	}
	for i, v := range r.vals {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func TestScanDocumentColumnMapping(t *testing.T) {
	id := uuid.New()
	orgID := uuid.New()
	caseID := uuid.New()
	uploadedBy := uuid.New()
	jobID := uuid.New()
	avg := 0.92
	now := time.Now()

	doc, err := scanDocument(stubRow{vals: []any{
		id, orgID, caseID, "Petition", "writ-2079.pdf", uploadedBy,
		"supabase", orgID.String() + "/abc123", "application/pdf", int64(2048), "abc123", 4,
		models.OCRStatusCompleted, &avg, false, (*uuid.UUID)(nil), &jobID,
		1, now, now,
	}})
	if err != nil {
		t.Fatalf("scanDocument() error = %v", err)
	}

	if doc.ID != id || doc.OrgID != orgID || doc.CaseID != caseID {
		t.Error("identity fields mis-scanned")
	}
	if doc.DocumentType != "Petition" {
		t.Errorf("document_type = %q", doc.DocumentType)
	}
	if doc.Filename != "writ-2079.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if doc.UploadedBy != uploadedBy {
		t.Errorf("uploaded_by = %s", doc.UploadedBy)
	}
	if doc.Storage.Key != orgID.String()+"/abc123" || doc.Storage.SHA256 != "abc123" {
		t.Errorf("storage fields mis-scanned: %+v", doc.Storage)
	}
	if doc.Storage.SizeBytes != 2048 || doc.Storage.Pages != 4 {
		t.Errorf("storage size/pages mis-scanned: %+v", doc.Storage)
	}
	if doc.OCR.Status != models.OCRStatusCompleted {
		t.Errorf("ocr status = %q", doc.OCR.Status)
	}
	if doc.OCR.AvgConfidence == nil || *doc.OCR.AvgConfidence != avg {
		t.Errorf("avg_confidence = %v", doc.OCR.AvgConfidence)
	}
	if doc.OCR.TextDocID != nil {
		t.Errorf("text_doc_id = %v, want nil", doc.OCR.TextDocID)
	}
	if doc.OCRJobID == nil || *doc.OCRJobID != jobID {
		t.Errorf("ocr_job_id = %v", doc.OCRJobID)
	}
	if doc.Version != 1 {
		t.Errorf("version = %d", doc.Version)
	}
}
