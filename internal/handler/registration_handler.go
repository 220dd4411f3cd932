package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

// WizardHeader carries the wizard instance id between steps.
const WizardHeader = "X-Wizard-ID"

type studentRegistrationService interface {
	Step1(ctx context.Context, wizardID, userID string, req models.StudentStep1Request) (*models.WizardStepResult, error)
	Step2(ctx context.Context, wizardID, userID string, req models.ProgramSelectionRequest) (*models.WizardStepResult, error)
	CourseOptions(ctx context.Context, wizardID, userID string) (*models.CourseOptions, error)
	Step3(ctx context.Context, wizardID, userID string, req models.CourseSelectionRequest) (*models.WizardStepResult, error)
}

type tutorRegistrationService interface {
	Step1(ctx context.Context, wizardID string, req models.TutorStep1Request) (*models.WizardStepResult, error)
	Step2(ctx context.Context, wizardID string, req models.TutorStep2Request) (*models.WizardStepResult, error)
	CourseOptions(ctx context.Context, wizardID string) (*models.CourseOptions, error)
	Step3(ctx context.Context, wizardID string, req models.CourseSelectionRequest) (*models.WizardStepResult, error)
}

// RegistrationHandler drives the student and tutor registration wizards.
// Missing or stale wizard state answers 303 back to the wizard's first step.
type RegistrationHandler struct {
	students     studentRegistrationService
	tutors       tutorRegistrationService
	studentStart string
	tutorStart   string
}

// NewRegistrationHandler constructs the handler. apiPrefix is the mount point of
// the API and is used to build the restart location.
func NewRegistrationHandler(students studentRegistrationService, tutors tutorRegistrationService, apiPrefix string) *RegistrationHandler {
	prefix := strings.TrimRight(apiPrefix, "/")
	return &RegistrationHandler{
		students:     students,
		tutors:       tutors,
		studentStart: prefix + "/register/student/step1",
		tutorStart:   prefix + "/register/tutor/step1",
	}
}

// StudentStep1 godoc
// @Summary Student registration: personal information
// @Tags Registration
// @Accept json
// @Produce json
// @Param X-Wizard-ID header string false "Existing wizard id to restart"
// @Param payload body models.StudentStep1Request true "Personal information"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /register/student/step1 [post]
func (h *RegistrationHandler) StudentStep1(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.StudentStep1Request
	if !bindJSON(c, &req, "invalid personal information") {
		return
	}
	result, err := h.students.Step1(c.Request.Context(), wizardID(c), claims.UserID, req)
	h.respondStep(c, h.studentStart, result, err)
}

// StudentStep2 godoc
// @Summary Student registration: program and year
// @Tags Registration
// @Accept json
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Param payload body models.ProgramSelectionRequest true "Program selection"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /register/student/step2 [post]
func (h *RegistrationHandler) StudentStep2(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.ProgramSelectionRequest
	if !bindJSON(c, &req, "invalid program selection") {
		return
	}
	result, err := h.students.Step2(c.Request.Context(), wizardID(c), claims.UserID, req)
	h.respondStep(c, h.studentStart, result, err)
}

// StudentCourseOptions godoc
// @Summary Student registration: selectable courses
// @Tags Registration
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Security BearerAuth
// @Router /register/student/step3 [get]
func (h *RegistrationHandler) StudentCourseOptions(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	options, err := h.students.CourseOptions(c.Request.Context(), wizardID(c), claims.UserID)
	h.respondOptions(c, h.studentStart, options, err)
}

// StudentStep3 godoc
// @Summary Student registration: course selection and commit
// @Tags Registration
// @Accept json
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Param payload body models.CourseSelectionRequest true "Courses"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /register/student/step3 [post]
func (h *RegistrationHandler) StudentStep3(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.CourseSelectionRequest
	if !bindJSON(c, &req, "invalid course selection") {
		return
	}
	result, err := h.students.Step3(c.Request.Context(), wizardID(c), claims.UserID, req)
	h.respondStep(c, h.studentStart, result, err)
}

// TutorStep1 godoc
// @Summary Tutor registration: interest and PAL engagement
// @Description Declining tutor interest ends the wizard without creating anything
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body models.TutorStep1Request true "Interest"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /register/tutor/step1 [post]
func (h *RegistrationHandler) TutorStep1(c *gin.Context) {
	var req models.TutorStep1Request
	if !bindJSON(c, &req, "invalid tutor interest") {
		return
	}
	result, err := h.tutors.Step1(c.Request.Context(), wizardID(c), req)
	h.respondStep(c, h.tutorStart, result, err)
}

// TutorStep2 godoc
// @Summary Tutor registration: academic details
// @Tags Registration
// @Accept json
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Param payload body models.TutorStep2Request true "Academic details"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /register/tutor/step2 [post]
func (h *RegistrationHandler) TutorStep2(c *gin.Context) {
	var req models.TutorStep2Request
	if !bindJSON(c, &req, "invalid academic details") {
		return
	}
	result, err := h.tutors.Step2(c.Request.Context(), wizardID(c), req)
	h.respondStep(c, h.tutorStart, result, err)
}

// TutorCourseOptions godoc
// @Summary Tutor registration: selectable courses
// @Tags Registration
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Router /register/tutor/step3 [get]
func (h *RegistrationHandler) TutorCourseOptions(c *gin.Context) {
	options, err := h.tutors.CourseOptions(c.Request.Context(), wizardID(c))
	h.respondOptions(c, h.tutorStart, options, err)
}

// TutorStep3 godoc
// @Summary Tutor registration: course selection and commit
// @Tags Registration
// @Accept json
// @Produce json
// @Param X-Wizard-ID header string true "Wizard id from step 1"
// @Param payload body models.CourseSelectionRequest true "Courses"
// @Success 200 {object} response.Envelope
// @Failure 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /register/tutor/step3 [post]
func (h *RegistrationHandler) TutorStep3(c *gin.Context) {
	var req models.CourseSelectionRequest
	if !bindJSON(c, &req, "invalid course selection") {
		return
	}
	result, err := h.tutors.Step3(c.Request.Context(), wizardID(c), req)
	h.respondStep(c, h.tutorStart, result, err)
}

func (h *RegistrationHandler) respondStep(c *gin.Context, restart string, result *models.WizardStepResult, err error) {
	if err != nil {
		wizardFailure(c, restart, err)
		return
	}
	if result.WizardID != "" && !result.Completed {
		c.Header(WizardHeader, result.WizardID)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *RegistrationHandler) respondOptions(c *gin.Context, restart string, options *models.CourseOptions, err error) {
	if err != nil {
		wizardFailure(c, restart, err)
		return
	}
	c.Header(WizardHeader, options.WizardID)
	response.JSON(c, http.StatusOK, options, nil)
}

func wizardFailure(c *gin.Context, restart string, err error) {
	if appErrors.FromError(err).Code == appErrors.ErrWizardRestart.Code {
		response.Redirect(c, restart, err)
		return
	}
	response.Error(c, err)
}

func wizardID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(WizardHeader))
}
