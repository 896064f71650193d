package dto

import (
	"time"

	"github.com/yigit/attendance-admin/internal/app/models"
)

// StudentEnrollments is the result of an enrollment search
type StudentEnrollments struct {
	Student     *models.Student
	Enrollments []*models.Enrollment
}

// AttendanceRow is one student on the attendance page and whether they are marked present
type AttendanceRow struct {
	Student *models.Student
	Checked bool
}

// AttendanceSheet is the attendance of every enrolled student for one subject session
type AttendanceSheet struct {
	Subject *models.Subject
	Date    time.Time
	Rows    []AttendanceRow
}

// PresentCount counts checked rows
func (s *AttendanceSheet) PresentCount() int {
	n := 0
	for _, r := range s.Rows {
		if r.Checked {
			n++
		}
	}
	return n
}

// DashboardStats are the counters shown on the dashboard
type DashboardStats struct {
	Students     int64
	Subjects     int64
	Users        int64
	PresentToday int64
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// Export is a rendered attendance download
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FaceRecognitionResult is the outcome of one external recognition run
type FaceRecognitionResult struct {
	Output   string
	Duration time.Duration
}
