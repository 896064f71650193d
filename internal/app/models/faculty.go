package models

// Faculty is a named faculty offered as a suggestion on student and subject forms
type Faculty struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
