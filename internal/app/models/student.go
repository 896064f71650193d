package models

// Student defines the student model based on the 'students' table.
// Students are not login accounts.
type Student struct {
	ID               int64    `json:"id" db:"id"`
	Name             string   `json:"name" db:"name"`
	EnrollmentNumber string   `json:"enrollmentNumber" db:"enrollment_number"`
	Faculty          string   `json:"faculty" db:"faculty"`
	Faces            []string `json:"faces" db:"faces"`
}
