package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLawyer Role = "lawyer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleLawyer
}

// User belongs to exactly one organization. An Admin's own id doubles as
// the id of the organization it owns.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrgID        uuid.UUID `json:"org_id" db:"org_id"`
	Role         Role      `json:"role" db:"role"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name,omitempty" db:"full_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DefaultOrgID resolves the org a new user lands in: an explicit org wins,
// otherwise the user owns itself (solo practitioner or first Admin).
func DefaultOrgID(userID, orgID uuid.UUID) uuid.UUID {
	if orgID != uuid.Nil {
		return orgID
	}
	return userID
}
