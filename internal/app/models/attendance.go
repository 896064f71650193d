package models

import "time"

// AttendanceStatus values stored on attendance rows
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Attendance is one presence mark of a student for a subject session (a calendar date)
type Attendance struct {
	ID          int64            `json:"id" db:"id"`
	StudentID   int64            `json:"studentId" db:"student_id"`
	SubjectID   int64            `json:"subjectId" db:"subject_id"`
	SessionDate time.Time        `json:"sessionDate" db:"session_date"`
	Status      AttendanceStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}
