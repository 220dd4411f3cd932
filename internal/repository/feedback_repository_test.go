package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

func TestFeedbackCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback").WillReturnResult(sqlmock.NewResult(1, 1))

	fb := &models.Feedback{LearnerID: "l1", TutorID: "t1", ProgramID: "p1", YearID: "y1", Topic: "ECG", Duration: models.Duration30To60, ExplanationRating: 5, UsefulnessRating: 4}
	require.NoError(t, repo.Create(context.Background(), fb))
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.SessionDate.IsZero())
	assert.Equal(t, fb.CreatedAt, fb.SessionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackCreateWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback").WillReturnError(errors.New("fk violation"))

	err := repo.Create(context.Background(), &models.Feedback{ID: "fb-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create feedback")
}

func TestFeedbackExistsForSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFeedbackTotalsForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("FROM feedback WHERE learner_id = \\$1 OR tutor_id = \\$1").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"given", "received", "avg_usefulness"}).AddRow(2, 6, 4.5))

	totals, err := repo.TotalsForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Given)
	assert.Equal(t, 6, totals.Received)
	assert.Equal(t, 4.5, totals.AvgUsefulness)
}
