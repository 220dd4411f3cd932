package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

const (
	sessionScopeFrom  = ` FROM tutoring_sessions s JOIN courses c ON c.id = s.course_id`
	feedbackScopeFrom = ` FROM feedback f`
)

var weekdayLabels = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AnalyticsRepository runs the aggregate queries behind the dashboard and exports.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Metrics computes the scalar totals for a scope.
func (r *AnalyticsRepository) Metrics(ctx context.Context, scope AnalyticsScope) (*models.AnalyticsMetrics, error) {
	var metrics models.AnalyticsMetrics

	where, args := scope.Sessions()
	query := `SELECT COUNT(*) AS total_sessions, COALESCE(SUM(s.duration), 0) AS total_minutes,
	COUNT(DISTINCT s.learner_id) AS total_learners, COUNT(DISTINCT s.tutor_id) AS total_tutors,
	COUNT(DISTINCT s.course_id) AS total_courses` + sessionScopeFrom + where
	if err := r.db.GetContext(ctx, &metrics, query, args...); err != nil {
		return nil, fmt.Errorf("session metrics: %w", err)
	}
	metrics.TotalHours = metrics.TotalMinutes / 60

	var fb struct {
		Total int     `db:"total"`
		Avg   float64 `db:"avg"`
	}
	where, args = scope.Feedback()
	query = `SELECT COUNT(*) AS total, COALESCE(AVG(f.usefulness_rating), 0) AS avg` + feedbackScopeFrom + where
	if err := r.db.GetContext(ctx, &fb, query, args...); err != nil {
		return nil, fmt.Errorf("feedback metrics: %w", err)
	}
	metrics.TotalFeedback = fb.Total
	metrics.AvgUsefulness = fb.Avg

	var catalog struct {
		Programs int `db:"programs"`
		Years    int `db:"years"`
	}
	if err := r.db.GetContext(ctx, &catalog, `SELECT (SELECT COUNT(*) FROM programs) AS programs, (SELECT COUNT(*) FROM years) AS years`); err != nil {
		return nil, fmt.Errorf("catalog metrics: %w", err)
	}
	metrics.TotalPrograms = catalog.Programs
	metrics.TotalYears = catalog.Years

	return &metrics, nil
}

// Breakdowns computes every chart aggregation. The monthly series covers the
// twelve months before now.
func (r *AnalyticsRepository) Breakdowns(ctx context.Context, scope AnalyticsScope, now time.Time) (*models.AnalyticsBreakdowns, error) {
	var (
		out models.AnalyticsBreakdowns
		err error
	)
	sWhere, sArgs := scope.Sessions()
	fWhere, fArgs := scope.Feedback()

	steps := []struct {
		name  string
		dest  *[]models.AnalyticsBucket
		query string
		args  []interface{}
	}{
		{"sessions by program", &out.SessionsByProgram,
			`SELECT p.id AS key, p.name AS label, COUNT(*) AS count` + sessionScopeFrom + ` JOIN programs p ON p.id = c.program_id` + sWhere +
				` GROUP BY p.id, p.name ORDER BY count DESC, label`, sArgs},
		{"feedback by rating", &out.FeedbackByRating,
			`SELECT f.usefulness_rating::text AS key, f.usefulness_rating::text AS label, COUNT(*) AS count` + feedbackScopeFrom + fWhere +
				` GROUP BY f.usefulness_rating ORDER BY f.usefulness_rating`, fArgs},
		{"sessions by status", &out.SessionsByStatus,
			`SELECT s.status AS key, s.status AS label, COUNT(*) AS count` + sessionScopeFrom + sWhere +
				` GROUP BY s.status ORDER BY s.status`, sArgs},
		{"top courses", &out.TopCourses,
			`SELECT c.id AS key, c.code || ' - ' || c.name AS label, COUNT(*) AS count` + sessionScopeFrom + sWhere +
				` GROUP BY c.id, c.code, c.name ORDER BY count DESC, label LIMIT 10`, sArgs},
		{"top tutors", &out.TopTutors,
			`SELECT t.id AS key, TRIM(t.first_name || ' ' || t.last_name) AS label, COUNT(*) AS count` + sessionScopeFrom +
				` JOIN users t ON t.id = s.tutor_id` + sWhere + ` GROUP BY t.id, t.first_name, t.last_name ORDER BY count DESC, label LIMIT 10`, sArgs},
		{"hours by tutor", &out.HoursByTutor,
			`SELECT t.id AS key, TRIM(t.first_name || ' ' || t.last_name) AS label, COUNT(*) AS count, SUM(s.duration) / 60.0 AS total` +
				sessionScopeFrom + ` JOIN users t ON t.id = s.tutor_id` + sWhere +
				` GROUP BY t.id, t.first_name, t.last_name ORDER BY total DESC, label LIMIT 10`, sArgs},
		{"learners by program", &out.LearnersByProgram,
			`SELECT p.id AS key, p.name AS label, COUNT(DISTINCT s.learner_id) AS count` + sessionScopeFrom +
				` JOIN programs p ON p.id = c.program_id` + sWhere + ` GROUP BY p.id, p.name ORDER BY count DESC, label`, sArgs},
		{"feedback attend again", &out.FeedbackAttendAgain,
			`SELECT CASE WHEN f.attend_again THEN 'true' ELSE 'false' END AS key, CASE WHEN f.attend_again THEN 'Yes' ELSE 'No' END AS label, COUNT(*) AS count` +
				feedbackScopeFrom + fWhere + ` GROUP BY f.attend_again ORDER BY 1 DESC`, fArgs},
		{"sessions by weekday", &out.SessionsByWeekday,
			`SELECT (EXTRACT(DOW FROM s.session_date)::int + 1)::text AS key, COUNT(*) AS count` + sessionScopeFrom + sWhere +
				` GROUP BY 1 ORDER BY 1`, sArgs},
		{"feedback by explanation rating", &out.FeedbackByClarity,
			`SELECT f.explanation_rating::text AS key, f.explanation_rating::text AS label, COUNT(*) AS count` + feedbackScopeFrom + fWhere +
				` GROUP BY f.explanation_rating ORDER BY f.explanation_rating`, fArgs},
	}

	for _, step := range steps {
		if *step.dest, err = r.buckets(ctx, step.query, step.args); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	monthly := scope.SessionsSince(now.AddDate(0, 0, -365))
	mWhere, mArgs := monthly.Sessions()
	out.SessionsByMonth, err = r.buckets(ctx,
		`SELECT to_char(date_trunc('month', s.session_date), 'YYYY-MM') AS key, to_char(date_trunc('month', s.session_date), 'Mon YYYY') AS label, COUNT(*) AS count`+
			sessionScopeFrom+mWhere+` GROUP BY 1, 2 ORDER BY 1`, mArgs)
	if err != nil {
		return nil, fmt.Errorf("sessions by month: %w", err)
	}

	for i := range out.SessionsByWeekday {
		if day, convErr := strconv.Atoi(out.SessionsByWeekday[i].Key); convErr == nil && day >= 1 && day <= 7 {
			out.SessionsByWeekday[i].Label = weekdayLabels[day-1]
		}
	}
	return &out, nil
}

// SessionDetails returns every scoped session, newest first.
func (r *AnalyticsRepository) SessionDetails(ctx context.Context, scope AnalyticsScope) ([]models.SessionView, error) {
	where, args := scope.Sessions()
	var sessions []models.SessionView
	if err := r.db.SelectContext(ctx, &sessions, sessionViewSelect+where+` ORDER BY s.session_date DESC`, args...); err != nil {
		return nil, fmt.Errorf("session details: %w", err)
	}
	return sessions, nil
}

// FeedbackDetails returns every scoped feedback row, newest first.
func (r *AnalyticsRepository) FeedbackDetails(ctx context.Context, scope AnalyticsScope) ([]models.FeedbackView, error) {
	where, args := scope.Feedback()
	query := `SELECT f.id, f.learner_id, f.tutor_id, f.program_id, f.year_id, f.session_id, f.topic, f.duration, f.session_date,
	f.explanation_rating, f.usefulness_rating, f.attend_again, f.well_organized, f.rating, f.satisfaction, f.helpfulness, f.comments, f.created_at,
	TRIM(t.first_name || ' ' || t.last_name) AS tutor_name, TRIM(l.first_name || ' ' || l.last_name) AS learner_name,
	p.name AS program_name, y.name AS year_name` + feedbackScopeFrom + `
	JOIN users t ON t.id = f.tutor_id
	JOIN users l ON l.id = f.learner_id
	JOIN programs p ON p.id = f.program_id
	JOIN years y ON y.id = f.year_id` + where + ` ORDER BY f.session_date DESC`
	var rows []models.FeedbackView
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("feedback details: %w", err)
	}
	return rows, nil
}

// TopRatedTutors ranks tutors by average usefulness among those with at least minFeedback entries.
func (r *AnalyticsRepository) TopRatedTutors(ctx context.Context, scope AnalyticsScope, minFeedback, limit int) ([]models.RatedTutor, error) {
	where, args := scope.Feedback()
	args = append(args, minFeedback, limit)
	query := fmt.Sprintf(`SELECT t.id AS tutor_id, TRIM(t.first_name || ' ' || t.last_name) AS name,
	AVG(f.usefulness_rating) AS avg_rating, COUNT(*) AS feedback_count`+feedbackScopeFrom+`
	JOIN users t ON t.id = f.tutor_id%s
	GROUP BY t.id, t.first_name, t.last_name HAVING COUNT(*) >= $%d
	ORDER BY avg_rating DESC, feedback_count DESC LIMIT $%d`, where, len(args)-1, len(args))
	var tutors []models.RatedTutor
	if err := r.db.SelectContext(ctx, &tutors, query, args...); err != nil {
		return nil, fmt.Errorf("top rated tutors: %w", err)
	}
	return tutors, nil
}

// TrendingTopics counts feedback by topic.
func (r *AnalyticsRepository) TrendingTopics(ctx context.Context, scope AnalyticsScope, limit int) ([]models.AnalyticsBucket, error) {
	where, args := scope.Feedback()
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT f.topic AS key, f.topic AS label, COUNT(*) AS count`+feedbackScopeFrom+`%s
	GROUP BY f.topic ORDER BY count DESC, f.topic LIMIT $%d`, where, len(args))
	topics, err := r.buckets(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("trending topics: %w", err)
	}
	return topics, nil
}

// TopTutorsBySessions ranks tutors by session count.
func (r *AnalyticsRepository) TopTutorsBySessions(ctx context.Context, scope AnalyticsScope, limit int) ([]models.AnalyticsBucket, error) {
	where, args := scope.Sessions()
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT t.id AS key, TRIM(t.first_name || ' ' || t.last_name) AS label, COUNT(*) AS count`+sessionScopeFrom+`
	JOIN users t ON t.id = s.tutor_id%s GROUP BY t.id, t.first_name, t.last_name ORDER BY count DESC, label LIMIT $%d`, where, len(args))
	tutors, err := r.buckets(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("top tutors by sessions: %w", err)
	}
	return tutors, nil
}

// BusiestCourses ranks courses by session count.
func (r *AnalyticsRepository) BusiestCourses(ctx context.Context, scope AnalyticsScope, limit int) ([]models.AnalyticsBucket, error) {
	where, args := scope.Sessions()
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT c.id AS key, c.code || ' - ' || c.name AS label, COUNT(*) AS count`+sessionScopeFrom+`%s
	GROUP BY c.id, c.code, c.name ORDER BY count DESC, label LIMIT $%d`, where, len(args))
	courses, err := r.buckets(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("busiest courses: %w", err)
	}
	return courses, nil
}

func (r *AnalyticsRepository) buckets(ctx context.Context, query string, args []interface{}) ([]models.AnalyticsBucket, error) {
	buckets := []models.AnalyticsBucket{}
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, err
	}
	return buckets, nil
}
