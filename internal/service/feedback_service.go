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

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ExistsForSession(ctx context.Context, sessionID string) (bool, error)
}

type eligibleTutorReader interface {
	EligibleTutors(ctx context.Context, programID string, minYear int, excludeUserID string) ([]models.EligibleTutor, error)
}

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.SessionView, error)
}

// FeedbackService accepts learner evaluations of tutors.
type FeedbackService struct {
	feedback  feedbackRepository
	tutors    eligibleTutorReader
	students  studentProfileReader
	sessions  sessionFinder
	academic  registrationAcademic
	validator *validation.Validator
	logger    *zap.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(feedback feedbackRepository, tutors eligibleTutorReader, students studentProfileReader, sessions sessionFinder, academic registrationAcademic, validate *validation.Validator, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		feedback:  feedback,
		tutors:    tutors,
		students:  students,
		sessions:  sessions,
		academic:  academic,
		validator: validate,
		logger:    logger,
	}
}

// EligibleTutors lists the tutors learnerID may give feedback on: approved
// tutors of the learner's program in the learner's year or above. Learners
// without a profile see every approved tutor.
func (s *FeedbackService) EligibleTutors(ctx context.Context, learnerID string) ([]models.EligibleTutor, error) {
	programID, minYear := "", 0
	profile, err := s.students.FindByUserID(ctx, learnerID)
	switch {
	case err == nil:
		programID, minYear = profile.ProgramID, profile.YearNumber
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	tutors, err := s.tutors.EligibleTutors(ctx, programID, minYear, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutors")
	}
	if tutors == nil {
		tutors = []models.EligibleTutor{}
	}
	return tutors, nil
}

// Submit stores feedback from learnerID.
func (s *FeedbackService) Submit(ctx context.Context, learnerID string, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Check(req, "invalid feedback payload"); err != nil {
		return nil, err
	}
	if _, err := resolveAcademicChoice(ctx, s.academic, req.ProgramID, req.YearID); err != nil {
		return nil, err
	}

	eligible, err := s.EligibleTutors(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, tutor := range eligible {
		if tutor.UserID == req.TutorID {
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Validation("tutor_id", "Select a valid tutor")
	}

	fb := &models.Feedback{
		LearnerID:         learnerID,
		TutorID:           req.TutorID,
		ProgramID:         req.ProgramID,
		YearID:            req.YearID,
		Topic:             strings.TrimSpace(req.Topic),
		Duration:          req.Duration,
		ExplanationRating: req.ExplanationRating,
		UsefulnessRating:  req.UsefulnessRating,
		AttendAgain:       *req.AttendAgain,
		WellOrganized:     *req.WellOrganized,
		Comments:          strings.TrimSpace(req.Comments),
	}

	if req.SessionID != "" {
		if err := s.checkSession(ctx, learnerID, req); err != nil {
			return nil, err
		}
		fb.SessionID = &req.SessionID
	}

	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit feedback")
	}
	return fb, nil
}

// checkSession ensures a linked session belongs to this learner and tutor and
// has no feedback yet.
func (s *FeedbackService) checkSession(ctx context.Context, learnerID string, req models.SubmitFeedbackRequest) error {
	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err != nil || session.LearnerID != learnerID || session.TutorID != req.TutorID {
		return appErrors.Validation("session_id", "Select one of your sessions with this tutor")
	}
	exists, err := s.feedback.ExistsForSession(ctx, req.SessionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session feedback")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Feedback already submitted for this session")
	}
	return nil
}
