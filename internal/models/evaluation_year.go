package models

import "time"

// EvaluationYear partitions sessions and feedback for reporting. At most one is active.
type EvaluationYear struct {
	ID         string    `db:"id" json:"id"`
	Label      string    `db:"label" json:"label"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	ProgramIDs []string  `db:"-" json:"program_ids"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationYearRequest is the payload for creating or updating an evaluation year.
type EvaluationYearRequest struct {
	Label      string   `json:"label" validate:"required,yearlabel"`
	StartDate  string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive   bool     `json:"is_active"`
	ProgramIDs []string `json:"program_ids" validate:"dive,required"`
}
