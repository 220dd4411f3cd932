package models

import "time"

// SessionStatus is the lifecycle state of a tutoring session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "Scheduled"
	SessionCompleted SessionStatus = "Completed"
	SessionCancelled SessionStatus = "Cancelled"
)

// TutoringSession is a single meeting between a tutor and a learner.
type TutoringSession struct {
	ID               string        `db:"id" json:"id"`
	TutorID          string        `db:"tutor_id" json:"tutor_id"`
	LearnerID        string        `db:"learner_id" json:"learner_id"`
	CourseID         string        `db:"course_id" json:"course_id"`
	EvaluationYearID *string       `db:"evaluation_year_id" json:"evaluation_year_id,omitempty"`
	SessionDate      time.Time     `db:"session_date" json:"session_date"`
	Duration         int           `db:"duration" json:"duration"`
	Status           SessionStatus `db:"status" json:"status"`
	Notes            string        `db:"notes" json:"notes"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionView is a session joined with display names.
type SessionView struct {
	TutoringSession
	TutorName   string `db:"tutor_name" json:"tutor_name"`
	LearnerName string `db:"learner_name" json:"learner_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	ProgramName string `db:"program_name" json:"program_name"`
}

// CreateSessionRequest is submitted by a tutor.
type CreateSessionRequest struct {
	LearnerID        string        `json:"learner_id" validate:"required"`
	CourseID         string        `json:"course_id" validate:"required"`
	EvaluationYearID string        `json:"evaluation_year_id"`
	SessionDate      time.Time     `json:"session_date" validate:"required"`
	Duration         int           `json:"duration" validate:"required,min=1,max=1440"`
	Status           SessionStatus `json:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled"`
	Notes            string        `json:"notes" validate:"max=2000"`
}
