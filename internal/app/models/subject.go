package models

// Subject is a course students enroll in and attendance is taken for
type Subject struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Code    string `json:"code" db:"code"`
	Faculty string `json:"faculty" db:"faculty"`
}
