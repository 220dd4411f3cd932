package models

import "time"

// Student is the academic profile attached 1:1 to a user.
type Student struct {
	ID                     string    `db:"id" json:"id"`
	UserID                 string    `db:"user_id" json:"user_id"`
	ProgramID              string    `db:"program_id" json:"program_id"`
	YearID                 string    `db:"year_id" json:"year_id"`
	StudyYearID            *string   `db:"study_year_id" json:"study_year_id,omitempty"`
	HasDisciplinaryWarning bool      `db:"has_disciplinary_warning" json:"has_disciplinary_warning"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// StudentProfile is a student joined with its program and year labels.
type StudentProfile struct {
	Student
	ProgramCode string `db:"program_code" json:"program_code"`
	ProgramName string `db:"program_name" json:"program_name"`
	YearNumber  int    `db:"year_number" json:"year_number"`
	YearName    string `db:"year_name" json:"year_name"`
}
