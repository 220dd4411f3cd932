package models

import "time"

// Program is a degree program such as MD or NS.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Year is one academic year level of a program.
type Year struct {
	ID         string `db:"id" json:"id"`
	ProgramID  string `db:"program_id" json:"program_id"`
	YearNumber int    `db:"year_number" json:"year_number"`
	Name       string `db:"name" json:"name"`
}

// Course belongs to a program and a year level.
type Course struct {
	ID          string `db:"id" json:"id"`
	ProgramID   string `db:"program_id" json:"program_id"`
	YearID      string `db:"year_id" json:"year_id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	YearNumber  int    `db:"year_number" json:"year_number"`
}

// Label renders the course as "CODE - Name".
func (c Course) Label() string {
	return c.Code + " - " + c.Name
}

// ProgramCatalog is a program with its year levels keyed by year number.
type ProgramCatalog struct {
	Program Program
	Years   map[int]Year
}
