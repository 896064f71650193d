package models

import (
	"testing"
	"time"
)

func TestEnrollmentStatusBadgeClass(t *testing.T) {
	tests := []struct {
		status EnrollmentStatus
		want   string
	}{
		{EnrollmentEnrolled, "badge-info"},
		{EnrollmentCompleted, "badge-success"},
		{EnrollmentCanceled, "badge-danger"},
		{"Current", "badge-warning"},
		{"", "badge-warning"},
	}

	for _, tt := range tests {
		if got := tt.status.BadgeClass(); got != tt.want {
			t.Errorf("%q.BadgeClass() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestEnrollmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to EnrollmentStatus
		want     bool
	}{
		{EnrollmentEnrolled, EnrollmentCompleted, true},
		{EnrollmentEnrolled, EnrollmentCanceled, true},
		{EnrollmentCompleted, EnrollmentEnrolled, true},
		{EnrollmentCanceled, EnrollmentEnrolled, true},
		{EnrollmentCompleted, EnrollmentCanceled, false},
		{EnrollmentEnrolled, EnrollmentEnrolled, false},
		{"Previous", EnrollmentCompleted, false},
		{EnrollmentEnrolled, "Previous", false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%q -> %q = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRoleType(t *testing.T) {
	if !RoleSuperAdmin.IsSuperAdmin() || RoleAdmin.IsSuperAdmin() {
		t.Error("only Super Admin is privileged")
	}
	if RoleType("superadmin").IsSuperAdmin() {
		t.Error("unknown role spellings must not be privileged")
	}
	if RoleType("Lecturer").Valid() {
		t.Error("Lecturer is not an assignable role")
	}

	var nilUser *User
	if nilUser.IsSuperAdmin() {
		t.Error("nil user is not a super admin")
	}
}

func TestTodayTruncates(t *testing.T) {
	now := time.Date(2026, 3, 9, 17, 45, 12, 0, time.UTC)
	if got := Today(now); !got.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Today() = %s", got)
	}
}

func TestUserFullName(t *testing.T) {
	u := &User{Username: "jdoe"}
	if u.FullName() != "jdoe" {
		t.Errorf("fallback full name = %q", u.FullName())
	}
	u.FirstName, u.LastName = "Jane", "Doe"
	if u.FullName() != "Jane Doe" {
		t.Errorf("full name = %q", u.FullName())
	}
}
