package models

import "time"

// DurationBucket is the self-reported session length on the feedback form.
type DurationBucket string

const (
	DurationLess30 DurationBucket = "less_30"
	Duration30To60 DurationBucket = "30_60"
	Duration60To90 DurationBucket = "60_90"
	DurationMore90 DurationBucket = "more_90"
)

// Feedback is a learner's evaluation of a tutor.
type Feedback struct {
	ID                string         `db:"id" json:"id"`
	LearnerID         string         `db:"learner_id" json:"learner_id"`
	TutorID           string         `db:"tutor_id" json:"tutor_id"`
	ProgramID         string         `db:"program_id" json:"program_id"`
	YearID            string         `db:"year_id" json:"year_id"`
	SessionID         *string        `db:"session_id" json:"session_id,omitempty"`
	Topic             string         `db:"topic" json:"topic"`
	Duration          DurationBucket `db:"duration" json:"duration"`
	SessionDate       time.Time      `db:"session_date" json:"session_date"`
	ExplanationRating int            `db:"explanation_rating" json:"explanation_rating"`
	UsefulnessRating  int            `db:"usefulness_rating" json:"usefulness_rating"`
	AttendAgain       bool           `db:"attend_again" json:"attend_again"`
	WellOrganized     bool           `db:"well_organized" json:"well_organized"`
	Rating            *int           `db:"rating" json:"rating,omitempty"`
	Satisfaction      *int           `db:"satisfaction" json:"satisfaction,omitempty"`
	Helpfulness       *int           `db:"helpfulness" json:"helpfulness,omitempty"`
	Comments          string         `db:"comments" json:"comments"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// AverageRating averages the new-style ratings, falling back to legacy fields when present.
func (f Feedback) AverageRating() float64 {
	if f.Rating != nil && f.Satisfaction != nil && f.Helpfulness != nil {
		return float64(*f.Rating+*f.Satisfaction+*f.Helpfulness) / 3
	}
	return float64(f.ExplanationRating+f.UsefulnessRating) / 2
}

// SubmitFeedbackRequest is the learner feedback form.
type SubmitFeedbackRequest struct {
	ProgramID         string         `json:"program_id" validate:"required"`
	YearID            string         `json:"year_id" validate:"required"`
	TutorID           string         `json:"tutor_id" validate:"required"`
	SessionID         string         `json:"session_id"`
	Topic             string         `json:"topic" validate:"required,max=200"`
	Duration          DurationBucket `json:"duration" validate:"required,oneof=less_30 30_60 60_90 more_90"`
	ExplanationRating int            `json:"explanation_rating" validate:"required,min=1,max=5"`
	UsefulnessRating  int            `json:"usefulness_rating" validate:"required,min=1,max=5"`
	AttendAgain       *bool          `json:"attend_again" validate:"required"`
	WellOrganized     *bool          `json:"well_organized" validate:"required"`
	Comments          string         `json:"comments" validate:"max=2000"`
}
