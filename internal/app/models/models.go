package models

import "time"

// RoleType defines the access level of an administrative user
type RoleType string

const (
	RoleSuperAdmin RoleType = "Super Admin"
	RoleAdmin      RoleType = "Admin"
)

// Roles lists roles that can be assigned from the management pages
var Roles = []RoleType{RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the assignable roles
func (r RoleType) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether r grants access to user and student management.
// Unknown roles are never privileged.
func (r RoleType) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// DateLayout is the format of dates in forms, query strings and exports
const DateLayout = "2006-01-02"

// Today truncates now to a calendar date in the local time zone
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
