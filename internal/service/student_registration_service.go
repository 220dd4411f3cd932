package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/wizard"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

type registrationUserChecker interface {
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	StudentIDTaken(ctx context.Context, studentID, excludeID string) (bool, error)
}

type studentRegistrar interface {
	CompleteRegistration(ctx context.Context, user *models.User, student *models.Student) (bool, error)
}

// StudentRegistrationService runs the three-step student onboarding wizard
// for the signed-in user.
type StudentRegistrationService struct {
	engine    *wizard.Engine
	users     registrationUserChecker
	academic  registrationAcademic
	registrar studentRegistrar
	settings  settingReader
	validator *validation.Validator
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewStudentRegistrationService wires the student wizard on top of store.
func NewStudentRegistrationService(store wizard.Store, users registrationUserChecker, academic registrationAcademic, registrar studentRegistrar, settings settingReader, validate *validation.Validator, logger *zap.Logger, metrics *MetricsService) *StudentRegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &StudentRegistrationService{
		engine:    wizard.NewEngine(wizard.KindStudent, store),
		users:     users,
		academic:  academic,
		registrar: registrar,
		settings:  settings,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// Step1 stages personal information after checking uniqueness against other users.
func (s *StudentRegistrationService) Step1(ctx context.Context, wizardID, userID string, req models.StudentStep1Request) (*models.WizardStepResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validator.Check(req, "invalid personal information"); err != nil {
		s.record(wizard.StepOne, OutcomeRejected)
		return nil, err
	}

	fields := map[string]string{}
	emailTaken, err := s.users.EmailTaken(ctx, req.Email, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if emailTaken {
		fields["email"] = "A user with this email already exists."
	}
	idTaken, err := s.users.StudentIDTaken(ctx, req.StudentID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id")
	}
	if idTaken {
		fields["student_id"] = "A user with this student ID already exists."
	}
	if len(fields) > 0 {
		s.record(wizard.StepOne, OutcomeRejected)
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid personal information"), fields)
	}

	state, err := s.engine.Start(ctx, wizardID, userID)
	if err != nil {
		return nil, wizardError(err)
	}
	if err := s.engine.Advance(ctx, state, wizard.StepOne, req); err != nil {
		return nil, wizardError(err)
	}
	s.record(wizard.StepOne, OutcomeAdvanced)
	return &models.WizardStepResult{WizardID: state.ID, Step: 1, NextStep: 2}, nil
}

// Step2 stages the program and year. The year must belong to the program.
func (s *StudentRegistrationService) Step2(ctx context.Context, wizardID, userID string, req models.ProgramSelectionRequest) (*models.WizardStepResult, error) {
	state, err := s.resume(ctx, wizardID, userID, wizard.StepTwo)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req, "invalid program selection"); err != nil {
		s.record(wizard.StepTwo, OutcomeRejected)
		return nil, err
	}
	choice, err := resolveAcademicChoice(ctx, s.academic, req.ProgramID, req.YearID)
	if err != nil {
		s.record(wizard.StepTwo, OutcomeRejected)
		return nil, err
	}
	if err := s.engine.Advance(ctx, state, wizard.StepTwo, choice); err != nil {
		return nil, wizardError(err)
	}
	s.record(wizard.StepTwo, OutcomeAdvanced)
	return &models.WizardStepResult{WizardID: state.ID, Step: 2, NextStep: 3}, nil
}

// CourseOptions lists the courses visible to the staged year and the selection cap.
func (s *StudentRegistrationService) CourseOptions(ctx context.Context, wizardID, userID string) (*models.CourseOptions, error) {
	state, err := s.resume(ctx, wizardID, userID, wizard.StepThree)
	if err != nil {
		return nil, err
	}
	var choice academicChoice
	if err := state.Load(wizard.StepTwo, &choice); err != nil {
		return nil, wizardError(err)
	}
	courses, err := visibleCourses(ctx, s.academic, choice)
	if err != nil {
		return nil, err
	}
	return &models.CourseOptions{
		WizardID:      state.ID,
		ProgramID:     choice.ProgramID,
		YearNumber:    choice.YearNumber,
		Courses:       courses,
		MaxSelections: s.maxSelections(ctx),
	}, nil
}

// Step3 validates the course selection and commits the registration. The
// selected courses are checked but not stored. On a failed commit the staged
// state is kept so the user can retry.
func (s *StudentRegistrationService) Step3(ctx context.Context, wizardID, userID string, req models.CourseSelectionRequest) (*models.WizardStepResult, error) {
	state, err := s.resume(ctx, wizardID, userID, wizard.StepThree)
	if err != nil {
		return nil, err
	}
	var identity models.StudentStep1Request
	if err := state.Load(wizard.StepOne, &identity); err != nil {
		return nil, s.restart(wizard.StepThree, err)
	}
	var choice academicChoice
	if err := state.Load(wizard.StepTwo, &choice); err != nil {
		return nil, s.restart(wizard.StepThree, err)
	}

	if err := s.validator.Check(req, "invalid course selection"); err != nil {
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, err
	}
	limit := s.maxSelections(ctx)
	switch {
	case len(req.CourseIDs) == 0:
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, appErrors.Validation("course_ids", "This field is required.")
	case len(req.CourseIDs) > limit:
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, appErrors.Validation("course_ids", fmt.Sprintf("You can select a maximum of %d courses", limit))
	}
	courses, err := visibleCourses(ctx, s.academic, choice)
	if err != nil {
		return nil, err
	}
	if err := checkCourseSelection(req.CourseIDs, courses); err != nil {
		s.record(wizard.StepThree, OutcomeRejected)
		return nil, err
	}

	studentID := identity.StudentID
	user := &models.User{
		ID:        userID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      models.RoleStudent,
		StudentID: &studentID,
	}
	student := &models.Student{ProgramID: choice.ProgramID, YearID: choice.YearID}
	created, err := s.registrar.CompleteRegistration(ctx, user, student)
	if err != nil {
		s.record(wizard.StepThree, OutcomeFailed)
		s.logger.Error("student registration commit failed",
			zap.String("wizard_id", state.ID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrRegistrationFailed.Code, appErrors.ErrRegistrationFailed.Status, "Registration failed. Please try again.")
	}

	if err := s.engine.Finish(ctx, state); err != nil {
		s.logger.Warn("failed to clear student wizard state", zap.String("wizard_id", state.ID), zap.Error(err))
	}
	s.record(wizard.StepThree, OutcomeCommitted)

	action := "updated"
	if created {
		action = "created"
	}
	return &models.WizardStepResult{
		Step:      3,
		Completed: true,
		Message:   fmt.Sprintf("Student profile %s successfully! Welcome to the PAL Program.", action),
		RecordID:  student.ID,
	}, nil
}

func (s *StudentRegistrationService) resume(ctx context.Context, wizardID, userID string, step wizard.Step) (*wizard.State, error) {
	state, err := s.engine.Resume(ctx, wizardID, userID, step)
	if err != nil {
		return nil, s.restart(step, err)
	}
	return state, nil
}

func (s *StudentRegistrationService) restart(step wizard.Step, err error) error {
	mapped := wizardError(err)
	if appErrors.Is(mapped, appErrors.ErrWizardRestart) {
		s.record(step, OutcomeRestarted)
	}
	return mapped
}

func (s *StudentRegistrationService) maxSelections(ctx context.Context) int {
	return intSetting(ctx, s.settings, s.logger, models.ConfigMaxCourseSelections, defaultMaxCourseSelections)
}

func (s *StudentRegistrationService) record(step wizard.Step, outcome string) {
	s.metrics.RecordWizardTransition(string(wizard.KindStudent), int(step), outcome)
}
