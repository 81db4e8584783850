package model

import "github.com/google/uuid"

// Role enumerates the three platform roles.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleUniversityAdmin Role = "university_admin"
	RoleStudent         Role = "student"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleUniversityAdmin, RoleStudent:
		return true
	}
	return false
}

// Principal is the authenticated actor performing an operation. Handlers build
// it from validated JWT claims and pass it explicitly into every service call;
// there is no ambient current-user state.
type Principal struct {
	ID           uuid.UUID  `json:"id"`
	Role         Role       `json:"role"`
	UniversityID *uuid.UUID `json:"university_id,omitempty"`
}

// IsAdmin reports whether the principal holds either admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleUniversityAdmin
}

// CanManageUniversity reports whether the principal may administer the given
// university. Super admins manage all; university admins only their own.
func (p Principal) CanManageUniversity(universityID uuid.UUID) bool {
	if p.Role == RoleSuperAdmin {
		return true
	}
	return p.Role == RoleUniversityAdmin && p.UniversityID != nil && *p.UniversityID == universityID
}
