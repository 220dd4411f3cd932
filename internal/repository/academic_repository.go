package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

// AcademicRepository reads programs, year levels and courses.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs an AcademicRepository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// ListPrograms returns every program ordered by name.
func (r *AcademicRepository) ListPrograms(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, `SELECT id, name, code, description, created_at FROM programs ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindProgram returns a program by id.
func (r *AcademicRepository) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	var program models.Program
	if err := r.db.GetContext(ctx, &program, `SELECT id, name, code, description, created_at FROM programs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &program, nil
}

// ListYears returns year levels of a program ordered by number. When
// belowYear is positive only levels strictly below it are returned.
func (r *AcademicRepository) ListYears(ctx context.Context, programID string, belowYear int) ([]models.Year, error) {
	query := `SELECT id, program_id, year_number, name FROM years WHERE program_id = $1`
	args := []interface{}{programID}
	if belowYear > 0 {
		query += ` AND year_number < $2`
		args = append(args, belowYear)
	}
	query += ` ORDER BY year_number`

	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

// FindYear returns a year level by id.
func (r *AcademicRepository) FindYear(ctx context.Context, id string) (*models.Year, error) {
	var year models.Year
	if err := r.db.GetContext(ctx, &year, `SELECT id, program_id, year_number, name FROM years WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find year: %w", err)
	}
	return &year, nil
}

// ListVisibleCourses returns the courses of a program whose year level is at
// most maxYear, ordered by year level then code.
func (r *AcademicRepository) ListVisibleCourses(ctx context.Context, programID string, maxYear int) ([]models.Course, error) {
	const query = `SELECT c.id, c.program_id, c.year_id, c.code, c.name, c.description, y.year_number
	FROM courses c
	JOIN years y ON y.id = c.year_id
	WHERE c.program_id = $1 AND y.year_number <= $2
	ORDER BY y.year_number, c.code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, programID, maxYear); err != nil {
		return nil, fmt.Errorf("list visible courses: %w", err)
	}
	return courses, nil
}

// FindCourse returns a course by id.
func (r *AcademicRepository) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT c.id, c.program_id, c.year_id, c.code, c.name, c.description, y.year_number
	FROM courses c JOIN years y ON y.id = c.year_id WHERE c.id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Catalog returns every program with its year levels keyed by program code.
func (r *AcademicRepository) Catalog(ctx context.Context) (map[string]models.ProgramCatalog, error) {
	programs, err := r.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, `SELECT id, program_id, year_number, name FROM years ORDER BY program_id, year_number`); err != nil {
		return nil, fmt.Errorf("list all years: %w", err)
	}

	byProgram := make(map[string]map[int]models.Year, len(programs))
	for _, y := range years {
		if byProgram[y.ProgramID] == nil {
			byProgram[y.ProgramID] = make(map[int]models.Year)
		}
		byProgram[y.ProgramID][y.YearNumber] = y
	}

	catalog := make(map[string]models.ProgramCatalog, len(programs))
	for _, p := range programs {
		yrs := byProgram[p.ID]
		if yrs == nil {
			yrs = map[int]models.Year{}
		}
		catalog[p.Code] = models.ProgramCatalog{Program: p, Years: yrs}
	}
	return catalog, nil
}
