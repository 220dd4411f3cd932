package models

import "time"

// AnalyticsFilter is the optional filter set shared by the dashboard and both exports.
// Zero values mean "unfiltered".
type AnalyticsFilter struct {
	ProgramID        string     `json:"program_id,omitempty"`
	YearID           string     `json:"year_id,omitempty"`
	CourseID         string     `json:"course_id,omitempty"`
	TutorID          string     `json:"tutor_id,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	EvaluationYearID string     `json:"evaluation_year_id,omitempty"`

	// EvaluationYear carries the resolved bounds when EvaluationYearID is set.
	EvaluationYear *EvaluationYear `json:"-"`
}

// AnalyticsMetrics are the scalar dashboard numbers.
type AnalyticsMetrics struct {
	TotalSessions int     `db:"total_sessions" json:"total_sessions"`
	TotalMinutes  int     `db:"total_minutes" json:"total_minutes"`
	TotalHours    int     `db:"-" json:"total_hours"`
	TotalLearners int     `db:"total_learners" json:"total_learners"`
	TotalTutors   int     `db:"total_tutors" json:"total_tutors"`
	TotalCourses  int     `db:"total_courses" json:"total_courses"`
	AvgUsefulness float64 `db:"-" json:"avg_usefulness_rating"`
	TotalFeedback int     `db:"-" json:"total_feedback"`
	TotalPrograms int     `db:"-" json:"total_programs"`
	TotalYears    int     `db:"-" json:"total_years"`
}

// AnalyticsBucket is one row of a breakdown: a grouping key, a display label and its aggregate.
type AnalyticsBucket struct {
	Key   string  `db:"key" json:"key"`
	Label string  `db:"label" json:"label"`
	Count int     `db:"count" json:"count"`
	Total float64 `db:"total" json:"total,omitempty"`
}

// AnalyticsBreakdowns groups every chart-ready aggregation.
type AnalyticsBreakdowns struct {
	SessionsByProgram   []AnalyticsBucket `json:"sessions_by_program"`
	FeedbackByRating    []AnalyticsBucket `json:"feedback_by_rating"`
	SessionsByStatus    []AnalyticsBucket `json:"sessions_by_status"`
	TopCourses          []AnalyticsBucket `json:"top_courses"`
	TopTutors           []AnalyticsBucket `json:"top_tutors"`
	SessionsByMonth     []AnalyticsBucket `json:"sessions_by_month"`
	HoursByTutor        []AnalyticsBucket `json:"hours_by_tutor"`
	LearnersByProgram   []AnalyticsBucket `json:"learners_by_program"`
	FeedbackAttendAgain []AnalyticsBucket `json:"feedback_attend_again"`
	SessionsByWeekday   []AnalyticsBucket `json:"sessions_by_weekday"`
	FeedbackByClarity   []AnalyticsBucket `json:"feedback_by_explanation_rating"`
}

// AnalyticsDashboard is the full dashboard payload.
type AnalyticsDashboard struct {
	Filter      AnalyticsFilter     `json:"filter"`
	Metrics     AnalyticsMetrics    `json:"metrics"`
	Breakdowns  AnalyticsBreakdowns `json:"breakdowns"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// RatedTutor is a tutor ranked by average usefulness rating.
type RatedTutor struct {
	TutorID       string  `db:"tutor_id" json:"tutor_id"`
	Name          string  `db:"name" json:"name"`
	AvgRating     float64 `db:"avg_rating" json:"avg_rating"`
	FeedbackCount int     `db:"feedback_count" json:"feedback_count"`
}

// AnalyticsLeaderboard is the content of the PDF export.
type AnalyticsLeaderboard struct {
	TotalSessions  int               `json:"total_sessions"`
	TotalHours     int               `json:"total_hours"`
	TotalLearners  int               `json:"total_learners"`
	TotalFeedback  int               `json:"total_feedback"`
	TotalTutors    int               `json:"total_tutors"`
	TopTutors      []AnalyticsBucket `json:"top_tutors"`
	TopRatedTutors []RatedTutor      `json:"top_rated_tutors"`
	TrendingTopics []AnalyticsBucket `json:"trending_topics"`
	BusiestCourses []AnalyticsBucket `json:"busiest_courses"`
}

// FeedbackView is a feedback row joined with display names.
type FeedbackView struct {
	Feedback
	TutorName   string `db:"tutor_name" json:"tutor_name"`
	LearnerName string `db:"learner_name" json:"learner_name"`
	ProgramName string `db:"program_name" json:"program_name"`
	YearName    string `db:"year_name" json:"year_name"`
}
