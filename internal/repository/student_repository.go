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

// StudentRepository manages student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the profile of a user joined with program and year labels.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	const query = `SELECT s.id, s.user_id, s.program_id, s.year_id, s.study_year_id, s.has_disciplinary_warning, s.created_at, s.updated_at,
	p.code AS program_code, p.name AS program_name, y.year_number, y.name AS year_name
	FROM students s
	JOIN programs p ON p.id = s.program_id
	JOIN years y ON y.id = s.year_id
	WHERE s.user_id = $1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &profile, nil
}

// CountAll returns the number of student profiles.
func (r *StudentRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// CompleteRegistration updates the user's identity fields and upserts the
// student profile atomically. It reports whether the profile was newly created.
func (r *StudentRepository) CompleteRegistration(ctx context.Context, user *models.User, student *models.Student) (bool, error) {
	var created bool
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		user.UpdatedAt = time.Now().UTC()
		const userQuery = `UPDATE users SET email = :email, first_name = :first_name, last_name = :last_name, student_id = :student_id, role = :role, updated_at = :updated_at WHERE id = :id`
		res, err := tx.NamedExecContext(ctx, userQuery, user)
		if err != nil {
			return fmt.Errorf("update registering user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update registering user: %w", sql.ErrNoRows)
		}
		student.UserID = user.ID
		created, err = upsertStudent(ctx, tx, student)
		return err
	})
	return created, err
}

// upsertStudent inserts or updates the profile keyed by user_id. A missing
// study year defaults to the current year.
func upsertStudent(ctx context.Context, tx *sqlx.Tx, student *models.Student) (bool, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.StudyYearID == nil {
		yearID := student.YearID
		student.StudyYearID = &yearID
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, user_id, program_id, year_id, study_year_id, has_disciplinary_warning, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (user_id) DO UPDATE SET program_id = EXCLUDED.program_id, year_id = EXCLUDED.year_id,
		study_year_id = EXCLUDED.study_year_id, updated_at = EXCLUDED.updated_at
	RETURNING id, created_at, (xmax = 0) AS inserted`

	var inserted bool
	err := tx.QueryRowxContext(ctx, query,
		student.ID, student.UserID, student.ProgramID, student.YearID, student.StudyYearID,
		student.HasDisciplinaryWarning, student.CreatedAt, student.UpdatedAt,
	).Scan(&student.ID, &student.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert student: %w", err)
	}
	return inserted, nil
}
