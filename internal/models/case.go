package models

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "pending"
	CaseStatusOngoing  CaseStatus = "ongoing"
	CaseStatusClosed   CaseStatus = "closed"
	CaseStatusAppealed CaseStatus = "appealed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusPending, CaseStatusOngoing, CaseStatusClosed, CaseStatusAppealed:
		return true
	}
	return false
}

// Party is one named party to a case. LawyerUserID links the party to the
// in-org lawyer representing it, when there is one.
type Party struct {
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	LawyerUserID *uuid.UUID `json:"lawyer_user_id,omitempty"`
}

// Assignment records a user working the case and in what capacity.
type Assignment struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type Hearing struct {
	Date      time.Time `json:"date"`
	Courtroom string    `json:"courtroom,omitempty"`
	Judge     string    `json:"judge,omitempty"`
	Note      string    `json:"note,omitempty"`
}

type Case struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	OrgID      uuid.UUID    `json:"org_id" db:"org_id"`
	CaseNumber string       `json:"case_number" db:"case_number"`
	CourtLevel string       `json:"court_level" db:"court_level"`
	CaseType   string       `json:"case_type" db:"case_type"`
	Status     CaseStatus   `json:"status" db:"status"`
	Parties    []Party      `json:"parties" db:"parties"`
	AssignedTo []Assignment `json:"assigned_to" db:"assigned_to"`
	Hearings   []Hearing    `json:"hearings" db:"hearings"`
	CreatedBy  uuid.UUID    `json:"created_by" db:"created_by"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}
