package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

const sessionViewSelect = `SELECT s.id, s.tutor_id, s.learner_id, s.course_id, s.evaluation_year_id, s.session_date, s.duration,
	s.status, s.notes, s.created_at, s.updated_at,
	TRIM(t.first_name || ' ' || t.last_name) AS tutor_name,
	TRIM(l.first_name || ' ' || l.last_name) AS learner_name,
	c.code AS course_code, c.name AS course_name, p.name AS program_name
	FROM tutoring_sessions s
	JOIN users t ON t.id = s.tutor_id
	JOIN users l ON l.id = s.learner_id
	JOIN courses c ON c.id = s.course_id
	JOIN programs p ON p.id = c.program_id`

// SessionRepository persists tutoring sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session. A nil EvaluationYearID is filled with the active
// evaluation year inside the same statement, or left NULL when none is active.
func (r *SessionRepository) Create(ctx context.Context, session *models.TutoringSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionScheduled
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO tutoring_sessions (id, tutor_id, learner_id, course_id, evaluation_year_id, session_date, duration, status, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, (SELECT id FROM evaluation_years WHERE is_active = TRUE LIMIT 1)), $6, $7, $8, $9, $10, $11)
	RETURNING evaluation_year_id`
	err := r.db.QueryRowxContext(ctx, query,
		session.ID, session.TutorID, session.LearnerID, session.CourseID, session.EvaluationYearID,
		session.SessionDate, session.Duration, session.Status, session.Notes, session.CreatedAt, session.UpdatedAt,
	).Scan(&session.EvaluationYearID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session view.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.SessionView, error) {
	var session models.SessionView
	if err := r.db.GetContext(ctx, &session, sessionViewSelect+` WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// ListForUser returns sessions the user tutored or attended, newest first.
func (r *SessionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.SessionView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := sessionViewSelect + ` WHERE s.tutor_id = $1 OR s.learner_id = $1 ORDER BY s.session_date DESC LIMIT $2`
	var sessions []models.SessionView
	if err := r.db.SelectContext(ctx, &sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return sessions, nil
}

// ListRecent returns the latest sessions across all users.
func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]models.SessionView, error) {
	if limit <= 0 || limit > 200 {
		limit = 10
	}
	var sessions []models.SessionView
	if err := r.db.SelectContext(ctx, &sessions, sessionViewSelect+` ORDER BY s.session_date DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return sessions, nil
}

// SessionTotals are per-user aggregates used by personal dashboards.
type SessionTotals struct {
	AsTutor               int `db:"as_tutor" json:"as_tutor"`
	AsLearner             int `db:"as_learner" json:"as_learner"`
	CompletedAsTutor      int `db:"completed_as_tutor" json:"completed_as_tutor"`
	CompletedAsLearner    int `db:"completed_as_learner" json:"completed_as_learner"`
	CompletedTutorMinutes int `db:"completed_tutor_minutes" json:"completed_tutor_minutes"`
	TutorHours            int `db:"tutor_hours" json:"tutor_hours"`
}

// TotalsForUser aggregates the user's sessions.
func (r *SessionRepository) TotalsForUser(ctx context.Context, userID string) (*SessionTotals, error) {
	const query = `SELECT
	COUNT(*) FILTER (WHERE tutor_id = $1) AS as_tutor,
	COUNT(*) FILTER (WHERE learner_id = $1) AS as_learner,
	COUNT(*) FILTER (WHERE tutor_id = $1 AND status = 'Completed') AS completed_as_tutor,
	COUNT(*) FILTER (WHERE learner_id = $1 AND status = 'Completed') AS completed_as_learner,
	COALESCE(SUM(duration) FILTER (WHERE tutor_id = $1 AND status = 'Completed'), 0) AS completed_tutor_minutes,
	COALESCE(SUM(duration) FILTER (WHERE tutor_id = $1), 0) / 60 AS tutor_hours
	FROM tutoring_sessions WHERE tutor_id = $1 OR learner_id = $1`
	var totals SessionTotals
	if err := r.db.GetContext(ctx, &totals, query, userID); err != nil {
		return nil, fmt.Errorf("session totals: %w", err)
	}
	return &totals, nil
}

// ListUpcoming returns the user's scheduled sessions from now on, soonest first.
func (r *SessionRepository) ListUpcoming(ctx context.Context, userID string, from time.Time, limit int) ([]models.SessionView, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	query := sessionViewSelect + ` WHERE (s.tutor_id = $1 OR s.learner_id = $1) AND s.status = 'Scheduled' AND s.session_date >= $2
	ORDER BY s.session_date ASC LIMIT $3`
	var sessions []models.SessionView
	if err := r.db.SelectContext(ctx, &sessions, query, userID, from, limit); err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	return sessions, nil
}

// Count returns the number of sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tutoring_sessions`); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}
