package dto

import "strings"

// LoginForm is posted by the login page
type LoginForm struct {
	Username string `form:"username" label:"Username" binding:"required"`
	Password string `form:"password" label:"Password" binding:"required"`
}

// ProfileForm is posted by the profile page. The role field is rendered
// read-only and never bound.
type ProfileForm struct {
	Username  string `form:"username" label:"Username" binding:"required,max=150"`
	FirstName string `form:"firstName" label:"First name" binding:"required,max=150"`
	LastName  string `form:"lastName" label:"Last name" binding:"required,max=150"`
	Email     string `form:"email" label:"Email" binding:"required,email,max=254"`
}

// UserForm creates or edits an administrative account.
// Password is required on create and optional on edit.
type UserForm struct {
	Username  string `form:"username" label:"Username" binding:"required,max=150"`
	FirstName string `form:"firstName" label:"First name" binding:"required,max=150"`
	LastName  string `form:"lastName" label:"Last name" binding:"required,max=150"`
	Email     string `form:"email" label:"Email" binding:"required,email,max=254"`
	Role      string `form:"role" label:"Role" binding:"required,role"`
	Password  string `form:"password" label:"Password" binding:"omitempty,min=8,max=128"`
}

// StudentForm creates or edits a student record
type StudentForm struct {
	Name             string `form:"name" label:"Name" binding:"required,max=255"`
	EnrollmentNumber string `form:"enrollmentNumber" label:"Enrollment number" binding:"required,max=20"`
	Faculty          string `form:"faculty" label:"Faculty" binding:"required,max=255"`
}

// SubjectForm creates or edits a subject
type SubjectForm struct {
	Name    string `form:"courseName" label:"Course name" binding:"required,max=255"`
	Code    string `form:"courseCode" label:"Course code" binding:"required,max=50,subjectcode"`
	Faculty string `form:"faculty" label:"Faculty" binding:"required,max=255"`
}

// AttendanceToggleForm is posted by one attendance row when its checkbox changes
type AttendanceToggleForm struct {
	StudentID int64  `form:"student_id" label:"Student" binding:"required,gt=0"`
	IsChecked string `form:"is_checked" label:"Attendance" binding:"required,oneof=true false"`
	Date      string `form:"date" label:"Date" binding:"omitempty,datetime=2006-01-02"`
}

// Checked reports the checkbox state carried by the form
func (f AttendanceToggleForm) Checked() bool {
	return f.IsChecked == "true"
}

// EnrollmentSearchForm searches a student by enrollment number.
// An empty value is reported to the user rather than rejected by binding.
type EnrollmentSearchForm struct {
	StudentID string `form:"student_id"`
}

// Query returns the trimmed search term
func (f EnrollmentSearchForm) Query() string {
	return strings.TrimSpace(f.StudentID)
}

// AddEnrollmentForm enrolls a student into a subject
type AddEnrollmentForm struct {
	SubjectID int64 `form:"subject_id" label:"Subject" binding:"required,gt=0"`
}

// EnrollmentStatusForm moves an enrollment to a new status
type EnrollmentStatusForm struct {
	Status string `form:"status" label:"Status" binding:"required,oneof=Enrolled Completed Canceled"`
}
