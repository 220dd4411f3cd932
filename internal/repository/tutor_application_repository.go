package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

const tutorApplicationColumns = `ta.id, ta.user_id, ta.mobile, ta.engaged_in_pal, ta.wants_training, ta.wants_certificate, ta.suggestions,
	ta.interested_as_tutor, ta.program_id, ta.year_id, ta.gpa, ta.motivation, ta.confidence_rating, ta.preferred_days,
	ta.preferred_times, ta.preferred_mode, ta.max_sessions_per_week, ta.consent, ta.status, ta.training_completed,
	ta.certification_url, ta.created_at, ta.updated_at`

const tutorApplicationViewSelect = `SELECT ` + tutorApplicationColumns + `,
	TRIM(u.first_name || ' ' || u.last_name) AS applicant_name, u.email AS applicant_email, COALESCE(u.student_id, '') AS student_id,
	p.code AS program_code, y.year_number
	FROM tutor_applications ta
	JOIN users u ON u.id = ta.user_id
	JOIN programs p ON p.id = ta.program_id
	JOIN years y ON y.id = ta.year_id`

// TutorApplicationRepository persists tutor applications and their course picks.
type TutorApplicationRepository struct {
	db *sqlx.DB
}

// NewTutorApplicationRepository constructs the repository.
func NewTutorApplicationRepository(db *sqlx.DB) *TutorApplicationRepository {
	return &TutorApplicationRepository{db: db}
}

// CreateWithApplicant resolves the applicant by student id, creating the user
// when absent and refreshing the email when it changed, then stores the
// application with its courses. Everything commits or nothing does.
func (r *TutorApplicationRepository) CreateWithApplicant(ctx context.Context, applicant *models.User, app *models.TutorApplication) error {
	if applicant.StudentID == nil || *applicant.StudentID == "" {
		return fmt.Errorf("create tutor application: applicant student id required")
	}
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		var existing models.User
		err := tx.GetContext(ctx, &existing, `SELECT `+userColumns+` FROM users WHERE student_id = $1 FOR UPDATE`, *applicant.StudentID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if applicant.ID == "" {
				applicant.ID = uuid.NewString()
			}
			applicant.Active = true
			applicant.CreatedAt = now
			applicant.UpdatedAt = now
			if err := insertUser(ctx, tx, applicant); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("find applicant: %w", err)
		default:
			if !strings.EqualFold(existing.Email, applicant.Email) {
				if _, err := tx.ExecContext(ctx, `UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`, existing.ID, applicant.Email, now); err != nil {
					return fmt.Errorf("update applicant email: %w", err)
				}
				existing.Email = applicant.Email
				existing.UpdatedAt = now
			}
			*applicant = existing
		}

		if app.ID == "" {
			app.ID = uuid.NewString()
		}
		app.UserID = applicant.ID
		app.CreatedAt = now
		app.UpdatedAt = now

		const insertApp = `INSERT INTO tutor_applications (id, user_id, mobile, engaged_in_pal, wants_training, wants_certificate, suggestions,
		interested_as_tutor, program_id, year_id, gpa, motivation, confidence_rating, preferred_days, preferred_times, preferred_mode,
		max_sessions_per_week, consent, status, training_completed, certification_url, created_at, updated_at)
		VALUES (:id, :user_id, :mobile, :engaged_in_pal, :wants_training, :wants_certificate, :suggestions,
		:interested_as_tutor, :program_id, :year_id, :gpa, :motivation, :confidence_rating, :preferred_days, :preferred_times, :preferred_mode,
		:max_sessions_per_week, :consent, :status, :training_completed, :certification_url, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertApp, app); err != nil {
			return fmt.Errorf("create tutor application: %w", err)
		}
		for _, courseID := range app.CourseIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO tutor_application_courses (application_id, course_id) VALUES ($1, $2)`, app.ID, courseID); err != nil {
				return fmt.Errorf("attach application course: %w", err)
			}
		}
		return nil
	})
}

// List returns applications matching the filter, newest first.
func (r *TutorApplicationRepository) List(ctx context.Context, filter models.TutorApplicationFilter) ([]models.TutorApplicationView, int, error) {
	where := ""
	var args []interface{}
	if filter.Status != nil {
		where = " WHERE ta.status = $1"
		args = append(args, *filter.Status)
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("%s%s ORDER BY ta.created_at DESC LIMIT %d OFFSET %d", tutorApplicationViewSelect, where, size, (page-1)*size)

	var apps []models.TutorApplicationView
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tutor applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tutor_applications ta"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count tutor applications: %w", err)
	}

	if err := r.attachCourses(ctx, apps); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// FindByID loads one application view.
func (r *TutorApplicationRepository) FindByID(ctx context.Context, id string) (*models.TutorApplicationView, error) {
	var app models.TutorApplicationView
	if err := r.db.GetContext(ctx, &app, tutorApplicationViewSelect+` WHERE ta.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find tutor application: %w", err)
	}
	apps := []models.TutorApplicationView{app}
	if err := r.attachCourses(ctx, apps); err != nil {
		return nil, err
	}
	return &apps[0], nil
}

// ListByUser returns every application submitted by a user.
func (r *TutorApplicationRepository) ListByUser(ctx context.Context, userID string) ([]models.TutorApplicationView, error) {
	var apps []models.TutorApplicationView
	if err := r.db.SelectContext(ctx, &apps, tutorApplicationViewSelect+` WHERE ta.user_id = $1 ORDER BY ta.created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("list user tutor applications: %w", err)
	}
	if err := r.attachCourses(ctx, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateStatus moderates an application.
func (r *TutorApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tutor_applications SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update tutor application status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IsApprovedTutor reports whether the user holds at least one approved application.
func (r *TutorApplicationRepository) IsApprovedTutor(ctx context.Context, userID string) (bool, error) {
	var ok bool
	const query = `SELECT EXISTS(SELECT 1 FROM tutor_applications WHERE user_id = $1 AND status = 'Approved')`
	if err := r.db.GetContext(ctx, &ok, query, userID); err != nil {
		return false, fmt.Errorf("check approved tutor: %w", err)
	}
	return ok, nil
}

// ApprovedCourseIDs returns the courses the user may tutor.
func (r *TutorApplicationRepository) ApprovedCourseIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT DISTINCT tac.course_id FROM tutor_application_courses tac
	JOIN tutor_applications ta ON ta.id = tac.application_id
	WHERE ta.user_id = $1 AND ta.status = 'Approved' ORDER BY tac.course_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return ids, nil
}

// EligibleTutors lists approved tutors of a program whose application year is
// at least minYear, excluding excludeUserID. An empty programID lists every
// approved tutor.
func (r *TutorApplicationRepository) EligibleTutors(ctx context.Context, programID string, minYear int, excludeUserID string) ([]models.EligibleTutor, error) {
	query := `SELECT DISTINCT u.id AS user_id, u.first_name, u.last_name, u.email
	FROM tutor_applications ta
	JOIN users u ON u.id = ta.user_id
	JOIN years y ON y.id = ta.year_id
	WHERE ta.status = 'Approved' AND u.active = TRUE AND u.id <> $1`
	args := []interface{}{excludeUserID}
	if programID != "" {
		query += ` AND ta.program_id = $2 AND y.year_number >= $3`
		args = append(args, programID, minYear)
	}
	query += ` ORDER BY u.first_name, u.last_name`

	var tutors []models.EligibleTutor
	if err := r.db.SelectContext(ctx, &tutors, query, args...); err != nil {
		return nil, fmt.Errorf("list eligible tutors: %w", err)
	}
	return tutors, nil
}

// CountByStatus returns application totals keyed by status.
func (r *TutorApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	var rows []struct {
		Status models.ApplicationStatus `db:"status"`
		Total  int                      `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS total FROM tutor_applications GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count tutor applications by status: %w", err)
	}
	counts := make(map[models.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *TutorApplicationRepository) attachCourses(ctx context.Context, apps []models.TutorApplicationView) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]string, len(apps))
	index := make(map[string]int, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
		index[apps[i].ID] = i
		apps[i].CourseIDs = []string{}
	}
	var rows []struct {
		ApplicationID string `db:"application_id"`
		CourseID      string `db:"course_id"`
	}
	const query = `SELECT application_id, course_id FROM tutor_application_courses WHERE application_id = ANY($1) ORDER BY course_id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list application courses: %w", err)
	}
	for _, row := range rows {
		i := index[row.ApplicationID]
		apps[i].CourseIDs = append(apps[i].CourseIDs, row.CourseID)
	}
	return nil
}
