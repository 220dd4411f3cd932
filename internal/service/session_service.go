package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.TutoringSession) error
	FindByID(ctx context.Context, id string) (*models.SessionView, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]models.SessionView, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type tutorCourseReader interface {
	ApprovedCourseIDs(ctx context.Context, userID string) ([]string, error)
}

type evaluationYearFinder interface {
	FindByID(ctx context.Context, id string) (*models.EvaluationYear, error)
}

// SessionService records tutoring sessions.
type SessionService struct {
	sessions  sessionRepository
	users     userFinder
	tutors    tutorCourseReader
	years     evaluationYearFinder
	validator *validation.Validator
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions sessionRepository, users userFinder, tutors tutorCourseReader, years evaluationYearFinder, validate *validation.Validator, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, users: users, tutors: tutors, years: years, validator: validate, logger: logger}
}

// Create records a session run by tutorID. The learner must be a student and
// the course one the tutor was approved for. Without an explicit evaluation
// year the active one is assigned on insert.
func (s *SessionService) Create(ctx context.Context, tutorID string, req models.CreateSessionRequest) (*models.SessionView, error) {
	if err := s.validator.Check(req, "invalid session payload"); err != nil {
		return nil, err
	}
	if req.LearnerID == tutorID {
		return nil, appErrors.Validation("learner_id", "Tutors cannot log a session with themselves")
	}

	learner, err := s.users.FindByID(ctx, req.LearnerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}
	if err != nil || learner.Role != models.RoleStudent {
		return nil, appErrors.Validation("learner_id", "Select a valid student")
	}

	courseIDs, err := s.tutors.ApprovedCourseIDs(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor courses")
	}
	if !containsString(courseIDs, req.CourseID) {
		return nil, appErrors.Validation("course_id", "Select a course from your approved tutor applications")
	}

	session := &models.TutoringSession{
		TutorID:     tutorID,
		LearnerID:   req.LearnerID,
		CourseID:    req.CourseID,
		SessionDate: req.SessionDate.UTC(),
		Duration:    req.Duration,
		Status:      req.Status,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if req.EvaluationYearID != "" {
		if _, err := s.years.FindByID(ctx, req.EvaluationYearID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Validation("evaluation_year_id", "Select a valid evaluation year")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation year")
		}
		session.EvaluationYearID = &req.EvaluationYearID
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("session created", zap.String("session_id", session.ID), zap.String("tutor_id", tutorID))

	view, err := s.sessions.FindByID(ctx, session.ID)
	if err != nil {
		s.logger.Warn("failed to reload created session", zap.String("session_id", session.ID), zap.Error(err))
		return &models.SessionView{TutoringSession: *session}, nil
	}
	return view, nil
}

// ListMine returns the sessions the user tutored or attended.
func (s *SessionService) ListMine(ctx context.Context, userID string, limit int) ([]models.SessionView, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.SessionView{}
	}
	return sessions, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
