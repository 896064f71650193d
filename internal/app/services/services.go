// Package services holds the business rules of the attendance dashboard.
//
// Services defined in this package:
//   - AuthService: login with throttling, current user and profile updates
//   - UserService: administrative account management
//   - StudentService: student records, face images and roster import
//   - SubjectService: subject catalogue
//   - FacultyService: faculty suggestions for forms
//   - EnrollmentService: enrollment search, creation and status changes
//   - AttendanceService: per-session attendance sheets, marks and exports
//   - DashboardService: dashboard counters
//   - FaceRecognitionService: runs the external recognition command
package services

import (
	"time"

	"github.com/yigit/attendance-admin/internal/app/models"
)

// Clock returns the current time; services take one so tests can pin "today"
type Clock func() time.Time

func (c Clock) today() time.Time {
	if c == nil {
		return models.Today(time.Now())
	}
	return models.Today(c())
}
