// Package access decides which subject may reach which case. Documents,
// OCR jobs and extracted texts have no ACL of their own: access is always
// derived by resolving the parent case and evaluating it here.
package access

import (
	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/tenant"
)

// CanAccessCase implements the read/update policy.
//
// Admins reach every case in their own org. Lawyers additionally need a
// relationship with the case: assigned to it, representing one of its
// parties, or its creator. Cross-org is always denied regardless of role.
func CanAccessCase(sub *tenant.Subject, c *models.Case) bool {
	if sub == nil || c == nil {
		return false
	}
	if c.OrgID != sub.OrgID {
		return false
	}

	switch sub.Role {
	case models.RoleAdmin:
		return true
	case models.RoleLawyer:
		if c.CreatedBy == sub.UserID {
			return true
		}
		for _, a := range c.AssignedTo {
			if a.UserID == sub.UserID {
				return true
			}
		}
		for _, p := range c.Parties {
			if p.LawyerUserID != nil && *p.LawyerUserID == sub.UserID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CanDelete gates mutation of existence: only Admins may delete cases and
// documents, regardless of the broader read/update predicate.
func CanDelete(sub *tenant.Subject) bool {
	return sub.IsAdmin()
}
