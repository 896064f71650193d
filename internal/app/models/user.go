package models

import (
	"strings"
	"time"
)

// User defines the administrative account model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Role        RoleType   `json:"role" db:"role"`
	DateJoined  time.Time  `json:"dateJoined" db:"date_joined"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsSuperAdmin reports whether the user holds the Super Admin role
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role.IsSuperAdmin()
}
