package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

const evaluationYearColumns = `id, label, start_date, end_date, is_active, created_at, updated_at`

// EvaluationYearRepository persists evaluation years and their program links.
type EvaluationYearRepository struct {
	db *sqlx.DB
}

// NewEvaluationYearRepository instantiates the repository.
func NewEvaluationYearRepository(db *sqlx.DB) *EvaluationYearRepository {
	return &EvaluationYearRepository{db: db}
}

// List returns every evaluation year, most recent first.
func (r *EvaluationYearRepository) List(ctx context.Context) ([]models.EvaluationYear, error) {
	var years []models.EvaluationYear
	if err := r.db.SelectContext(ctx, &years, `SELECT `+evaluationYearColumns+` FROM evaluation_years ORDER BY start_date DESC`); err != nil {
		return nil, fmt.Errorf("list evaluation years: %w", err)
	}
	if len(years) == 0 {
		return years, nil
	}

	ids := make([]string, len(years))
	for i := range years {
		ids[i] = years[i].ID
	}
	links, err := r.programLinks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range years {
		years[i].ProgramIDs = links[years[i].ID]
	}
	return years, nil
}

// FindByID loads an evaluation year with its programs.
func (r *EvaluationYearRepository) FindByID(ctx context.Context, id string) (*models.EvaluationYear, error) {
	return r.findOne(ctx, `SELECT `+evaluationYearColumns+` FROM evaluation_years WHERE id = $1`, id)
}

// FindActive returns the active evaluation year.
func (r *EvaluationYearRepository) FindActive(ctx context.Context) (*models.EvaluationYear, error) {
	return r.findOne(ctx, `SELECT `+evaluationYearColumns+` FROM evaluation_years WHERE is_active = TRUE LIMIT 1`)
}

func (r *EvaluationYearRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.EvaluationYear, error) {
	var year models.EvaluationYear
	if err := r.db.GetContext(ctx, &year, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation year: %w", err)
	}
	links, err := r.programLinks(ctx, []string{year.ID})
	if err != nil {
		return nil, err
	}
	year.ProgramIDs = links[year.ID]
	return &year, nil
}

// LabelTaken reports whether label is used by an evaluation year other than excludeID.
func (r *EvaluationYearRepository) LabelTaken(ctx context.Context, label, excludeID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM evaluation_years WHERE label = $1 AND id <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, label, excludeID); err != nil {
		return false, fmt.Errorf("check evaluation year label: %w", err)
	}
	return exists, nil
}

// Create inserts the year and its program links. An active year deactivates all others.
func (r *EvaluationYearRepository) Create(ctx context.Context, year *models.EvaluationYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if year.IsActive {
			if err := deactivateOthers(ctx, tx, year.ID, now); err != nil {
				return err
			}
		}
		const query = `INSERT INTO evaluation_years (id, label, start_date, end_date, is_active, created_at, updated_at)
		VALUES (:id, :label, :start_date, :end_date, :is_active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, year); err != nil {
			return fmt.Errorf("create evaluation year: %w", err)
		}
		return replacePrograms(ctx, tx, year.ID, year.ProgramIDs)
	})
}

// Update rewrites the year and its program links.
func (r *EvaluationYearRepository) Update(ctx context.Context, year *models.EvaluationYear) error {
	now := time.Now().UTC()
	year.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if year.IsActive {
			if err := deactivateOthers(ctx, tx, year.ID, now); err != nil {
				return err
			}
		}
		const query = `UPDATE evaluation_years SET label = :label, start_date = :start_date, end_date = :end_date,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
		res, err := tx.NamedExecContext(ctx, query, year)
		if err != nil {
			return fmt.Errorf("update evaluation year: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return replacePrograms(ctx, tx, year.ID, year.ProgramIDs)
	})
}

// SetActive marks id active and clears the flag everywhere else in one transaction.
func (r *EvaluationYearRepository) SetActive(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := deactivateOthers(ctx, tx, id, now); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE evaluation_years SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, now)
		if err != nil {
			return fmt.Errorf("activate evaluation year: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// Delete removes an evaluation year. Sessions keep their rows with a cleared reference.
func (r *EvaluationYearRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM evaluation_years WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evaluation year: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EvaluationYearRepository) programLinks(ctx context.Context, ids []string) (map[string][]string, error) {
	var rows []struct {
		EvaluationYearID string `db:"evaluation_year_id"`
		ProgramID        string `db:"program_id"`
	}
	const query = `SELECT evaluation_year_id, program_id FROM evaluation_year_programs WHERE evaluation_year_id = ANY($1) ORDER BY program_id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list evaluation year programs: %w", err)
	}
	links := make(map[string][]string, len(ids))
	for _, row := range rows {
		links[row.EvaluationYearID] = append(links[row.EvaluationYearID], row.ProgramID)
	}
	return links, nil
}

func deactivateOthers(ctx context.Context, tx *sqlx.Tx, id string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `UPDATE evaluation_years SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, now, id); err != nil {
		return fmt.Errorf("deactivate other evaluation years: %w", err)
	}
	return nil
}

func replacePrograms(ctx context.Context, tx *sqlx.Tx, id string, programIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluation_year_programs WHERE evaluation_year_id = $1`, id); err != nil {
		return fmt.Errorf("clear evaluation year programs: %w", err)
	}
	for _, programID := range programIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO evaluation_year_programs (evaluation_year_id, program_id) VALUES ($1, $2)`, id, programID); err != nil {
			return fmt.Errorf("link evaluation year program: %w", err)
		}
	}
	return nil
}
