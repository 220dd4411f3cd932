package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

type catalogRepository interface {
	ListPrograms(ctx context.Context) ([]models.Program, error)
	FindProgram(ctx context.Context, id string) (*models.Program, error)
	ListYears(ctx context.Context, programID string, belowYear int) ([]models.Year, error)
	ListVisibleCourses(ctx context.Context, programID string, maxYear int) ([]models.Course, error)
}

// CatalogService answers program, year and course lookups.
type CatalogService struct {
	repo     catalogRepository
	students studentProfileReader
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogRepository, students studentProfileReader, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, students: students, logger: logger}
}

// Programs lists every program.
func (s *CatalogService) Programs(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Years lists the year levels of a program. With belowOwnYear the caller's own
// student year caps the result so near-peer tutors only see junior years.
func (s *CatalogService) Years(ctx context.Context, programID, userID string, belowOwnYear bool) ([]models.Year, error) {
	if err := s.ensureProgram(ctx, programID); err != nil {
		return nil, err
	}

	below := 0
	if belowOwnYear {
		profile, err := s.students.FindByUserID(ctx, userID)
		switch {
		case err == nil:
			if profile.ProgramID == programID {
				below = profile.YearNumber
			}
		case errors.Is(err, sql.ErrNoRows):
			s.logger.Debug("near-peer year filter skipped, caller has no student profile", zap.String("user_id", userID))
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
	}

	years, err := s.repo.ListYears(ctx, programID, below)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list years")
	}
	return years, nil
}

// Courses lists a program's courses whose year number is at most maxYear.
// A non-positive maxYear lists every course of the program.
func (s *CatalogService) Courses(ctx context.Context, programID string, maxYear int) ([]models.Course, error) {
	if err := s.ensureProgram(ctx, programID); err != nil {
		return nil, err
	}
	if maxYear <= 0 {
		maxYear = math.MaxInt32
	}
	courses, err := s.repo.ListVisibleCourses(ctx, programID, maxYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

func (s *CatalogService) ensureProgram(ctx context.Context, programID string) error {
	if _, err := s.repo.FindProgram(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return nil
}
