package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/wizard"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

const restartMessage = "Registration data missing. Please start over."

type registrationAcademic interface {
	FindProgram(ctx context.Context, id string) (*models.Program, error)
	FindYear(ctx context.Context, id string) (*models.Year, error)
	ListVisibleCourses(ctx context.Context, programID string, maxYear int) ([]models.Course, error)
}

// academicChoice is the staged result of a program selection step.
type academicChoice struct {
	ProgramID  string `json:"program_id"`
	YearID     string `json:"year_id"`
	YearNumber int    `json:"year_number"`
}

// wizardError converts engine failures into API errors. Any ordering problem
// sends the client back to step one.
func wizardError(err error) error {
	if errors.Is(err, wizard.ErrOutOfOrder) || errors.Is(err, wizard.ErrInvalidStep) {
		return appErrors.Wrap(err, appErrors.ErrWizardRestart.Code, appErrors.ErrWizardRestart.Status, restartMessage)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration state")
}

// resolveAcademicChoice checks that yearID is one of programID's years.
func resolveAcademicChoice(ctx context.Context, academic registrationAcademic, programID, yearID string) (academicChoice, error) {
	if _, err := academic.FindProgram(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academicChoice{}, appErrors.Validation("program_id", "Select a valid program")
		}
		return academicChoice{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	year, err := academic.FindYear(ctx, yearID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return academicChoice{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}
	if err != nil || year.ProgramID != programID {
		return academicChoice{}, appErrors.Validation("year_id", "Select a valid year for the chosen program")
	}
	return academicChoice{ProgramID: programID, YearID: year.ID, YearNumber: year.YearNumber}, nil
}

// visibleCourses lists the courses a holder of choice may pick: every course
// of the program up to and including their year.
func visibleCourses(ctx context.Context, academic registrationAcademic, choice academicChoice) ([]models.Course, error) {
	courses, err := academic.ListVisibleCourses(ctx, choice.ProgramID, choice.YearNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// checkCourseSelection rejects duplicates and courses outside the visible set.
func checkCourseSelection(selected []string, visible []models.Course) error {
	allowed := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		allowed[c.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			return appErrors.Validation("course_ids", "Each course may only be selected once")
		}
		seen[id] = struct{}{}
		if _, ok := allowed[id]; !ok {
			return appErrors.Validation("course_ids", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", id))
		}
	}
	return nil
}
