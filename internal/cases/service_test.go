package cases

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/models"
)

func strPtr(s string) *string { return &s }

func TestApplyPatchAllowList(t *testing.T) {
	orig := models.Case{
		ID:         uuid.New(),
		OrgID:      uuid.New(),
		CaseNumber: "078-CR-0123",
		CourtLevel: "district",
		Status:     models.CaseStatusPending,
	}

	c := orig
	status := models.CaseStatusOngoing
	err := ApplyPatch(&c, UpdateCaseRequest{
		CourtLevel: strPtr("high"),
		Status:     &status,
		Parties:    &[]models.Party{{Name: "Sita Sharma", Role: "plaintiff"}},
	})
	if err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}

	if c.CourtLevel != "high" {
		t.Errorf("court_level = %q, want high", c.CourtLevel)
	}
	if c.Status != models.CaseStatusOngoing {
		t.Errorf("status = %q, want ongoing", c.Status)
	}
	if len(c.Parties) != 1 || c.Parties[0].Name != "Sita Sharma" {
		t.Errorf("parties not replaced: %+v", c.Parties)
	}
	// Untouched and immutable fields stay put.
	if c.CaseNumber != orig.CaseNumber {
		t.Errorf("case_number changed to %q", c.CaseNumber)
	}
	if c.OrgID != orig.OrgID || c.ID != orig.ID {
		t.Error("identity fields must never change")
	}
}

func TestApplyPatchRejectsEmptyCaseNumber(t *testing.T) {
	c := models.Case{CaseNumber: "078-CR-0123"}
	err := ApplyPatch(&c, UpdateCaseRequest{CaseNumber: strPtr("")})
	if !apperr.IsKind(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if c.CaseNumber != "078-CR-0123" {
		t.Errorf("case_number mutated on failed patch: %q", c.CaseNumber)
	}
}

func TestApplyPatchRejectsInvalidStatus(t *testing.T) {
	c := models.Case{Status: models.CaseStatusPending}
	bad := models.CaseStatus("archived")
	err := ApplyPatch(&c, UpdateCaseRequest{Status: &bad})
	if !apperr.IsKind(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
