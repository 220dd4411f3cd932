package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

const dateLayout = "2006-01-02"

type evaluationYearRepository interface {
	List(ctx context.Context) ([]models.EvaluationYear, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationYear, error)
	FindActive(ctx context.Context) (*models.EvaluationYear, error)
	LabelTaken(ctx context.Context, label, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.EvaluationYear) error
	Update(ctx context.Context, year *models.EvaluationYear) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type programFinder interface {
	FindProgram(ctx context.Context, id string) (*models.Program, error)
}

// EvaluationYearService manages reporting years and the single active year.
type EvaluationYearService struct {
	repo      evaluationYearRepository
	programs  programFinder
	audit     configurationAuditLogger
	validator *validation.Validator
	logger    *zap.Logger
}

// NewEvaluationYearService constructs an EvaluationYearService.
func NewEvaluationYearService(repo evaluationYearRepository, programs programFinder, audit configurationAuditLogger, validate *validation.Validator, logger *zap.Logger) *EvaluationYearService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationYearService{repo: repo, programs: programs, audit: audit, validator: validate, logger: logger}
}

// List returns every evaluation year, newest first.
func (s *EvaluationYearService) List(ctx context.Context) ([]models.EvaluationYear, error) {
	years, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluation years")
	}
	return years, nil
}

// Get returns one evaluation year.
func (s *EvaluationYearService) Get(ctx context.Context, id string) (*models.EvaluationYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation year")
	}
	return year, nil
}

// Active returns the currently active evaluation year.
func (s *EvaluationYearService) Active(ctx context.Context) (*models.EvaluationYear, error) {
	year, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active evaluation year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active evaluation year")
	}
	return year, nil
}

// Create stores a new evaluation year. Creating it active deactivates every other year.
func (s *EvaluationYearService) Create(ctx context.Context, req models.EvaluationYearRequest) (*models.EvaluationYear, error) {
	year, err := s.fromRequest(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation year")
	}
	return year, nil
}

// Update replaces an evaluation year's fields and program links.
func (s *EvaluationYearService) Update(ctx context.Context, id string, req models.EvaluationYearRequest) (*models.EvaluationYear, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	year, err := s.fromRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}
	year.ID = current.ID
	year.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation year")
	}
	return year, nil
}

// Activate makes id the only active evaluation year.
func (s *EvaluationYearService) Activate(ctx context.Context, id, actorID string, meta models.RequestMeta) (*models.EvaluationYear, error) {
	if err := s.repo.SetActive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate evaluation year")
	}
	year, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		payload, _ := json.Marshal(map[string]interface{}{"label": year.Label, "is_active": true})
		entry := &models.AuditLog{
			Action:     models.AuditActionEvaluationActivate,
			Resource:   "evaluation_years",
			ResourceID: &year.ID,
			NewValues:  payload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}
		if actorID != "" {
			entry.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record evaluation year audit log", zap.String("id", id), zap.Error(err))
		}
	}
	return year, nil
}

// Delete removes an evaluation year. Its sessions stay and lose the link.
func (s *EvaluationYearService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evaluation year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation year")
	}
	return nil
}

func (s *EvaluationYearService) fromRequest(ctx context.Context, req models.EvaluationYearRequest, excludeID string) (*models.EvaluationYear, error) {
	req.Label = strings.TrimSpace(req.Label)
	if err := s.validator.Check(req, "invalid evaluation year payload"); err != nil {
		return nil, err
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Validation("end_date", "End date must not be before start date")
	}

	taken, err := s.repo.LabelTaken(ctx, req.Label, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check evaluation year label")
	}
	if taken {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, "evaluation year already exists"),
			map[string]string{"label": "Evaluation Year with this Year already exists."})
	}

	programIDs := make([]string, 0, len(req.ProgramIDs))
	seen := make(map[string]struct{}, len(req.ProgramIDs))
	for _, id := range req.ProgramIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.programs.FindProgram(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Validation("program_ids", "Select a valid program")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
		}
		programIDs = append(programIDs, id)
	}

	return &models.EvaluationYear{
		Label:      req.Label,
		StartDate:  start,
		EndDate:    end,
		IsActive:   req.IsActive,
		ProgramIDs: programIDs,
	}, nil
}
