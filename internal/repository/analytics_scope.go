package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

// AnalyticsScope is a composed analytics filter rendered as two WHERE clauses:
// one over tutoring_sessions s joined to courses c, one over feedback f.
type AnalyticsScope struct {
	sessionConds  []string
	sessionArgs   []interface{}
	feedbackConds []string
	feedbackArgs  []interface{}
}

// ComposeAnalyticsScope applies every set filter conjunctively. Sessions are
// scoped through their course's program and year, feedback through its own
// program and year columns. The end date covers the whole day.
func ComposeAnalyticsScope(filter models.AnalyticsFilter) AnalyticsScope {
	var scope AnalyticsScope

	if filter.ProgramID != "" {
		scope.onSessions("c.program_id = $%d", filter.ProgramID)
		scope.onFeedback("f.program_id = $%d", filter.ProgramID)
	}
	if filter.YearID != "" {
		scope.onSessions("c.year_id = $%d", filter.YearID)
		scope.onFeedback("f.year_id = $%d", filter.YearID)
	}
	if filter.CourseID != "" {
		scope.onSessions("s.course_id = $%d", filter.CourseID)
	}
	if filter.TutorID != "" {
		scope.onSessions("s.tutor_id = $%d", filter.TutorID)
		scope.onFeedback("f.tutor_id = $%d", filter.TutorID)
	}
	if filter.EvaluationYear != nil {
		ey := filter.EvaluationYear
		scope.onSessions("s.evaluation_year_id = $%d", ey.ID)
		scope.onFeedback("f.session_date >= $%d", dayStart(ey.StartDate))
		scope.onFeedback("f.session_date < $%d", dayStart(ey.EndDate).AddDate(0, 0, 1))
	}
	if filter.StartDate != nil {
		start := dayStart(*filter.StartDate)
		scope.onSessions("s.session_date >= $%d", start)
		scope.onFeedback("f.session_date >= $%d", start)
	}
	if filter.EndDate != nil {
		end := dayStart(*filter.EndDate).AddDate(0, 0, 1)
		scope.onSessions("s.session_date < $%d", end)
		scope.onFeedback("f.session_date < $%d", end)
	}
	return scope
}

func (s *AnalyticsScope) onSessions(format string, arg interface{}) {
	s.sessionArgs = append(s.sessionArgs, arg)
	s.sessionConds = append(s.sessionConds, fmt.Sprintf(format, len(s.sessionArgs)))
}

func (s *AnalyticsScope) onFeedback(format string, arg interface{}) {
	s.feedbackArgs = append(s.feedbackArgs, arg)
	s.feedbackConds = append(s.feedbackConds, fmt.Sprintf(format, len(s.feedbackArgs)))
}

// Sessions returns the WHERE clause (possibly empty) and arguments for the session collection.
func (s AnalyticsScope) Sessions() (string, []interface{}) {
	return whereClause(s.sessionConds), append([]interface{}(nil), s.sessionArgs...)
}

// Feedback returns the WHERE clause (possibly empty) and arguments for the feedback collection.
func (s AnalyticsScope) Feedback() (string, []interface{}) {
	return whereClause(s.feedbackConds), append([]interface{}(nil), s.feedbackArgs...)
}

// SessionsSince narrows the session collection further to rows on or after since.
func (s AnalyticsScope) SessionsSince(since time.Time) AnalyticsScope {
	narrowed := AnalyticsScope{
		sessionConds:  append([]string(nil), s.sessionConds...),
		sessionArgs:   append([]interface{}(nil), s.sessionArgs...),
		feedbackConds: s.feedbackConds,
		feedbackArgs:  s.feedbackArgs,
	}
	narrowed.onSessions("s.session_date >= $%d", since)
	return narrowed
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
