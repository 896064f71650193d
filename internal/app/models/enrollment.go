package models

import "time"

// EnrollmentStatus is the state of a student's enrollment in a subject.
// The set is open: rows written by other tools may carry other values.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentCompleted EnrollmentStatus = "Completed"
	EnrollmentCanceled  EnrollmentStatus = "Canceled"
)

// BadgeClass returns the CSS badge used to display the status
func (s EnrollmentStatus) BadgeClass() string {
	switch s {
	case EnrollmentEnrolled:
		return "badge-info"
	case EnrollmentCompleted:
		return "badge-success"
	case EnrollmentCanceled:
		return "badge-danger"
	default:
		return "badge-warning"
	}
}

// CanTransitionTo reports whether an enrollment may move from s to next.
// Enrolled may be completed or canceled; finished enrollments may be reopened.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	switch next {
	case EnrollmentCompleted, EnrollmentCanceled:
		return s == EnrollmentEnrolled
	case EnrollmentEnrolled:
		return s == EnrollmentCompleted || s == EnrollmentCanceled
	default:
		return false
	}
}

// Enrollment links a student to a subject
type Enrollment struct {
	ID            int64            `json:"id" db:"id"`
	StudentID     int64            `json:"studentId" db:"student_id"`
	SubjectID     int64            `json:"subjectId" db:"subject_id"`
	Status        EnrollmentStatus `json:"status" db:"status"`
	DateEnrolled  time.Time        `json:"dateEnrolled" db:"date_enrolled"`
	DateCompleted *time.Time       `json:"dateCompleted,omitempty" db:"date_completed"`

	// Relations (populated when needed)
	Subject *Subject `json:"subject,omitempty"`
}
