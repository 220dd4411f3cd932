package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/wizard"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

const (
	// TutorCourseCount is the exact number of courses a tutor applies for.
	TutorCourseCount = 3

	tutorDeclineMessage  = "We thank you for your feedback."
	tutorApprovedMessage = "Congratulations! Your tutor application has been approved. You can now start tutoring sessions and students can submit feedback for you."

	// unusablePassword marks accounts created by the public wizard; they cannot log in until an admin sets a password.
	unusablePassword = "!"
)

type tutorApplicationCreator interface {
	CreateWithApplicant(ctx context.Context, applicant *models.User, app *models.TutorApplication) error
}

// tutorAcademic is the staged result of the tutor academic step.
type tutorAcademic struct {
	academicChoice
	GPA                *float64 `json:"gpa,omitempty"`
	Motivation         string   `json:"motivation"`
	ConfidenceRating   int      `json:"confidence_rating"`
	PreferredDays      string   `json:"preferred_days"`
	PreferredTimes     string   `json:"preferred_times"`
	PreferredMode      string   `json:"preferred_mode"`
	MaxSessionsPerWeek *int     `json:"max_sessions_per_week,omitempty"`
	Consent            bool     `json:"consent"`
}

// TutorRegistrationService runs the public three-step tutor application wizard.
type TutorRegistrationService struct {
	engine       *wizard.Engine
	academic     registrationAcademic
	applications tutorApplicationCreator
	settings     settingReader
	validator    *validation.Validator
	logger       *zap.Logger
	metrics      *MetricsService
}

// NewTutorRegistrationService wires the tutor wizard on top of store.
func NewTutorRegistrationService(store wizard.Store, academic registrationAcademic, applications tutorApplicationCreator, settings settingReader, validate *validation.Validator, logger *zap.Logger, metrics *MetricsService) *TutorRegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &TutorRegistrationService{
		engine:       wizard.NewEngine(wizard.KindTutor, store),
		academic:     academic,
		applications: applications,
		settings:     settings,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
	}
}

// Step1 stages interest and engagement answers. Applicants not interested in
// tutoring are thanked and the flow ends without staging anything.
func (s *TutorRegistrationService) Step1(ctx context.Context, wizardID string, req models.TutorStep1Request) (*models.WizardStepResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Suggestions = strings.TrimSpace(req.Suggestions)
	if err := s.validator.Check(req, "invalid tutor interest details"); err != nil {
		s.record(wizard.StepOne, OutcomeRejected)
		return nil, err
	}

	if !req.InterestedAsTutor {
		if wizardID != "" {
			if err := s.engine.Discard(ctx, wizardID); err != nil {
				s.logger.Warn("failed to discard declined tutor wizard", zap.String("wizard_id", wizardID), zap.Error(err))
			}
		}
		s.record(wizard.StepOne, OutcomeDeclined)
		return &models.WizardStepResult{Step: 1, Declined: true, Message: tutorDeclineMessage}, nil
	}

	state, err := s.engine.Start(ctx, wizardID, "")
	if err != nil {
		return nil, wizardError(err)
	}
	if err := s.engine.Advance(ctx, state, wizard.StepOne, req); err != nil {
		return nil, wizardError(err)
	}
	s.record(wizard.StepOne, OutcomeAdvanced)
	return &models.WizardStepResult{WizardID: state.ID, Step: 1, NextStep: 2}, nil
}

// Step2 stages academic details. A GPA, when given, must reach the configured
// minimum and consent is mandatory.
func (s *TutorRegistrationService) Step2(ctx context.Context, wizardID string, req models.TutorStep2Request) (*models.WizardStepResult, error) {
	state, err := s.resume(ctx, wizardID, wizard.StepTwo)
	if err != nil {
		return nil, err
	}
	req.Motivation = strings.TrimSpace(req.Motivation)
	if err := s.validator.Check(req, "invalid academic details"); err != nil {
		s.record(wizard.StepTwo, OutcomeRejected)
		return nil, err
	}
	choice, err := resolveAcademicChoice(ctx, s.academic, req.ProgramID, req.YearID)
	if err != nil {
		s.record(wizard.StepTwo, OutcomeRejected)
		return nil, err
	}
	if req.GPA != nil {
		minGPA := floatSetting(ctx, s.settings, s.logger, models.ConfigMinGPAForTutor, defaultMinGPAForTutor)
		if *req.GPA < minGPA {
			s.record(wizard.StepTwo, OutcomeRejected)
			return nil, appErrors.Validation("gpa", fmt.Sprintf("Minimum GPA of %s required to become a tutor", strconv.FormatFloat(minGPA, 'f', -1, 64)))
		}
	}
	if !req.Consent {
		s.record(wizard.StepTwo, OutcomeRejected)
		return nil, appErrors.Validation("consent", "You must consent to the terms to proceed")
	}

	staged := tutorAcademic{
		academicChoice:     choice,
		GPA:                req.GPA,
		Motivation:         req.Motivation,
		ConfidenceRating:   req.ConfidenceRating,
		PreferredDays:      strings.Join(req.PreferredDays, ", "),
		PreferredTimes:     strings.Join(req.PreferredTimes, ", "),
		PreferredMode:      req.PreferredMode,
		MaxSessionsPerWeek: req.MaxSessionsPerWeek,
		Consent:            req.Consent,
	}
	if err := s.engine.Advance(ctx, state, wizard.StepTwo, staged); err != nil {
		return nil, wizardError(err)
	}
	s.record(wizard.StepTwo, OutcomeAdvanced)
	return &models.WizardStepResult{WizardID: state.ID, Step: 2, NextStep: 3}, nil
}

// CourseOptions lists the courses the applicant may offer to tutor.
func (s *TutorRegistrationService) CourseOptions(ctx context.Context, wizardID string) (*models.CourseOptions, error) {
	state, err := s.resume(ctx, wizardID, wizard.StepThree)
	if err != nil {
		return nil, err
	}
	var staged tutorAcademic
	if err := state.Load(wizard.StepTwo, &staged); err != nil {
		return nil, wizardError(err)
	}
	courses, err := visibleCourses(ctx, s.academic, staged.academicChoice)
	if err != nil {
		return nil, err
	}
	return &models.CourseOptions{
		WizardID:      state.ID,
		ProgramID:     staged.ProgramID,
		YearNumber:    staged.YearNumber,
		Courses:       courses,
		MaxSelections: TutorCourseCount,
		ExactCount:    true,
	}, nil
}

// Step3 requires exactly three visible courses, then creates or reuses the
// applicant's account and files an approved application.
func (s *TutorRegistrationService) Step3(ctx context.Context, wizardID string, req models.CourseSelectionRequest) (*models.WizardStepResult, error) {
	state, err := s.resume(ctx, wizardID, wizard.StepThree)
	if err != nil {
		return nil, err
	}
	var interest models.TutorStep1Request
	if err := state.Load(wizard.StepOne, &interest); err != nil {
		return nil, s.restart(wizard.StepThree, err)
	}
	var staged tutorAcademic
	if err := state.Load(wizard.StepTwo, &staged); err != nil {
		return nil, s.restart(wizard.StepThree, err)
	}

	if err := s.validator.Check(req, "invalid course selection"); err != nil {
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, err
	}
	if len(req.CourseIDs) != TutorCourseCount {
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, appErrors.Validation("course_ids", fmt.Sprintf("You must select exactly %d courses", TutorCourseCount))
	}
	courses, err := visibleCourses(ctx, s.academic, staged.academicChoice)
	if err != nil {
		return nil, err
	}
	if err := checkCourseSelection(req.CourseIDs, courses); err != nil {
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, err
	}

	firstName, lastName := splitName(interest.Name)
	studentID := interest.StudentID
	applicant := &models.User{
		Email:        interest.Email,
		PasswordHash: unusablePassword,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleStudent,
		StudentID:    &studentID,
		Active:       true,
	}
	app := &models.TutorApplication{
		Mobile:             interest.Mobile,
		EngagedInPAL:       interest.EngagedInPAL,
		WantsTraining:      interest.WantsTraining,
		WantsCertificate:   interest.WantsCertificate,
		Suggestions:        interest.Suggestions,
		InterestedAsTutor:  interest.InterestedAsTutor,
		ProgramID:          staged.ProgramID,
		YearID:             staged.YearID,
		GPA:                staged.GPA,
		Motivation:         staged.Motivation,
		ConfidenceRating:   staged.ConfidenceRating,
		PreferredDays:      staged.PreferredDays,
		PreferredTimes:     staged.PreferredTimes,
		PreferredMode:      staged.PreferredMode,
		MaxSessionsPerWeek: staged.MaxSessionsPerWeek,
		Consent:            staged.Consent,
		Status:             models.ApplicationApproved,
		CourseIDs:          append([]string(nil), req.CourseIDs...),
	}
	if err := s.applications.CreateWithApplicant(ctx, applicant, app); err != nil {
		s.record(wizard.StepThree, OutcomeFailed)
		s.logger.Error("tutor application commit failed",
			zap.String("wizard_id", state.ID),
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrRegistrationFailed.Code, appErrors.ErrRegistrationFailed.Status, "Error submitting application. Please try again.")
	}

	if err := s.engine.Finish(ctx, state); err != nil {
		s.logger.Warn("failed to clear tutor wizard state", zap.String("wizard_id", state.ID), zap.Error(err))
	}
	s.record(wizard.StepThree, OutcomeCommitted)
	s.logger.Info("tutor application approved", zap.String("application_id", app.ID), zap.String("user_id", applicant.ID))

	return &models.WizardStepResult{
		Step:      3,
		Completed: true,
		Message:   tutorApprovedMessage,
		RecordID:  app.ID,
	}, nil
}

func (s *TutorRegistrationService) resume(ctx context.Context, wizardID string, step wizard.Step) (*wizard.State, error) {
	state, err := s.engine.Resume(ctx, wizardID, "", step)
	if err != nil {
		return nil, s.restart(step, err)
	}
	return state, nil
}

func (s *TutorRegistrationService) restart(step wizard.Step, err error) error {
	mapped := wizardError(err)
	if appErrors.Is(mapped, appErrors.ErrWizardRestart) {
		s.record(step, OutcomeRestarted)
	}
	return mapped
}

func (s *TutorRegistrationService) record(step wizard.Step, outcome string) {
	s.metrics.RecordWizardTransition(string(wizard.KindTutor), int(step), outcome)
}

// splitName treats the first word as the given name and the rest as the family name.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
