package domain

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the access class of an authenticated identity.
type Role string

const (
	// RoleAdmin has full create, edit and delete rights.
	RoleAdmin Role = "admin"
	// RoleStaff can view records, register patients and book appointments.
	RoleStaff Role = "staff"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleStaff}

// ParseRole returns the role named by s and whether it is known.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Title returns the role name for display, e.g. "Admin".
func (r Role) Title() string {
	return cases.Title(language.English).String(string(r))
}

// IdentityID is the fixed identity id assigned to a role.
func (r Role) IdentityID() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleStaff:
		return 2
	default:
		return 0
	}
}

// Identity is the authenticated session record.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
