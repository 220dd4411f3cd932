package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

type tutorApplicationRepository interface {
	List(ctx context.Context, filter models.TutorApplicationFilter) ([]models.TutorApplicationView, int, error)
	FindByID(ctx context.Context, id string) (*models.TutorApplicationView, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

// TutorApplicationService lists and moderates tutor applications.
type TutorApplicationService struct {
	repo      tutorApplicationRepository
	audit     configurationAuditLogger
	validator *validation.Validator
	logger    *zap.Logger
}

// NewTutorApplicationService constructs a TutorApplicationService.
func NewTutorApplicationService(repo tutorApplicationRepository, audit configurationAuditLogger, validate *validation.Validator, logger *zap.Logger) *TutorApplicationService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorApplicationService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns applications, optionally filtered by status.
func (s *TutorApplicationService) List(ctx context.Context, filter models.TutorApplicationFilter) ([]models.TutorApplicationView, *models.Pagination, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
		default:
			return nil, nil, appErrors.Validation("status", "status must be one of [Pending Approved Rejected]")
		}
	}
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutor applications")
	}
	if apps == nil {
		apps = []models.TutorApplicationView{}
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus moves an application to a new moderation status.
func (s *TutorApplicationService) UpdateStatus(ctx context.Context, id string, req models.UpdateApplicationStatusRequest, actorID string, meta models.RequestMeta) (*models.TutorApplicationView, error) {
	if err := s.validator.Check(req, "invalid status payload"); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor application")
	}
	previous := current.Status

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutor application")
	}
	current.Status = req.Status

	if s.audit != nil {
		oldPayload, _ := json.Marshal(map[string]interface{}{"status": previous})
		newPayload, _ := json.Marshal(map[string]interface{}{"status": req.Status})
		entry := &models.AuditLog{
			Action:     models.AuditActionApplicationStatus,
			Resource:   "tutor_applications",
			ResourceID: &current.ID,
			OldValues:  oldPayload,
			NewValues:  newPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}
		if actorID != "" {
			entry.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record application audit log", zap.String("id", id), zap.Error(err))
		}
	}
	return current, nil
}
