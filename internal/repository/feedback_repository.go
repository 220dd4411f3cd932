package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

// FeedbackRepository persists learner feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create stores a feedback entry.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	fb.CreatedAt = now
	if fb.SessionDate.IsZero() {
		fb.SessionDate = now
	}
	const query = `INSERT INTO feedback (id, learner_id, tutor_id, program_id, year_id, session_id, topic, duration, session_date,
	explanation_rating, usefulness_rating, attend_again, well_organized, rating, satisfaction, helpfulness, comments, created_at)
	VALUES (:id, :learner_id, :tutor_id, :program_id, :year_id, :session_id, :topic, :duration, :session_date,
	:explanation_rating, :usefulness_rating, :attend_again, :well_organized, :rating, :satisfaction, :helpfulness, :comments, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ExistsForSession reports whether a session already has feedback.
func (r *FeedbackRepository) ExistsForSession(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM feedback WHERE session_id = $1)`, sessionID); err != nil {
		return false, fmt.Errorf("check session feedback: %w", err)
	}
	return exists, nil
}

// FeedbackTotals summarise feedback given and received by one user.
type FeedbackTotals struct {
	Given         int     `db:"given" json:"given"`
	Received      int     `db:"received" json:"received"`
	AvgUsefulness float64 `db:"avg_usefulness" json:"avg_usefulness"`
}

// TotalsForUser aggregates feedback for a personal dashboard.
func (r *FeedbackRepository) TotalsForUser(ctx context.Context, userID string) (*FeedbackTotals, error) {
	const query = `SELECT
	COUNT(*) FILTER (WHERE learner_id = $1) AS given,
	COUNT(*) FILTER (WHERE tutor_id = $1) AS received,
	COALESCE(AVG(usefulness_rating) FILTER (WHERE tutor_id = $1), 0) AS avg_usefulness
	FROM feedback WHERE learner_id = $1 OR tutor_id = $1`
	var totals FeedbackTotals
	if err := r.db.GetContext(ctx, &totals, query, userID); err != nil {
		return nil, fmt.Errorf("feedback totals: %w", err)
	}
	return &totals, nil
}

// Count returns the number of feedback rows.
func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM feedback`); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return total, nil
}
