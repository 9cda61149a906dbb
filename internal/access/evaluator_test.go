package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nyayalaya/casefile/internal/models"
	"github.com/nyayalaya/casefile/internal/tenant"
)

func TestCanAccessCase(t *testing.T) {
	org := uuid.New()
	otherOrg := uuid.New()
	lawyer := uuid.New()
	creator := uuid.New()

	baseCase := func() *models.Case {
		return &models.Case{
			ID:        uuid.New(),
			OrgID:     org,
			CreatedBy: creator,
		}
	}

	tests := []struct {
		name string
		sub  *tenant.Subject
		c    func() *models.Case
		want bool
	}{
		{
			name: "admin same org",
			sub:  &tenant.Subject{UserID: uuid.New(), OrgID: org, Role: models.RoleAdmin},
			c:    baseCase,
			want: true,
		},
		{
			name: "admin other org",
			sub:  &tenant.Subject{UserID: uuid.New(), OrgID: otherOrg, Role: models.RoleAdmin},
			c:    baseCase,
			want: false,
		},
		{
			name: "lawyer unrelated",
			sub:  &tenant.Subject{UserID: lawyer, OrgID: org, Role: models.RoleLawyer},
			c:    baseCase,
			want: false,
		},
		{
			name: "lawyer assigned",
			sub:  &tenant.Subject{UserID: lawyer, OrgID: org, Role: models.RoleLawyer},
			c: func() *models.Case {
				c := baseCase()
				c.AssignedTo = []models.Assignment{{UserID: lawyer, Role: "lead"}}
				return c
			},
			want: true,
		},
		{
			name: "lawyer representing a party",
			sub:  &tenant.Subject{UserID: lawyer, OrgID: org, Role: models.RoleLawyer},
			c: func() *models.Case {
				c := baseCase()
				c.Parties = []models.Party{{Name: "Ram Bahadur", Role: "plaintiff", LawyerUserID: &lawyer}}
				return c
			},
			want: true,
		},
		{
			name: "lawyer is creator",
			sub:  &tenant.Subject{UserID: creator, OrgID: org, Role: models.RoleLawyer},
			c:    baseCase,
			want: true,
		},
		{
			name: "lawyer related but wrong org",
			sub:  &tenant.Subject{UserID: lawyer, OrgID: otherOrg, Role: models.RoleLawyer},
			c: func() *models.Case {
				c := baseCase()
				c.AssignedTo = []models.Assignment{{UserID: lawyer}}
				return c
			},
			want: false,
		},
		{
			name: "unknown role",
			sub:  &tenant.Subject{UserID: lawyer, OrgID: org, Role: "clerk"},
			c:    baseCase,
			want: false,
		},
		{
			name: "nil subject",
			sub:  nil,
			c:    baseCase,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessCase(tt.sub, tt.c()); got != tt.want {
				t.Errorf("CanAccessCase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	if !CanDelete(&tenant.Subject{Role: models.RoleAdmin}) {
		t.Error("admin must be allowed to delete")
	}
	if CanDelete(&tenant.Subject{Role: models.RoleLawyer}) {
		t.Error("lawyer must not be allowed to delete")
	}
	if CanDelete(nil) {
		t.Error("nil subject must not be allowed to delete")
	}
}
