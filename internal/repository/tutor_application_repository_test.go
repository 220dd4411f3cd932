package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

func newApplication() *models.TutorApplication {
	return &models.TutorApplication{
		EngagedInPAL:      models.EngagedAsLearner,
		InterestedAsTutor: true,
		ProgramID:         "prog-md",
		YearID:            "year-md-4",
		Motivation:        "help juniors",
		ConfidenceRating:  4,
		Consent:           true,
		Status:            models.ApplicationApproved,
		CourseIDs:         []string{"c1", "c2", "c3"},
	}
}

func TestCreateWithApplicantCreatesMissingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE student_id = $1 FOR UPDATE")).WithArgs("S300").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tutor_applications").WillReturnResult(sqlmock.NewResult(1, 1))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO tutor_application_courses").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	sid := "S300"
	applicant := &models.User{Email: "tutor@uni.edu", FirstName: "Sam", StudentID: &sid, Role: models.RoleStudent, PasswordHash: "!"}
	app := newApplication()
	require.NoError(t, repo.CreateWithApplicant(context.Background(), applicant, app))

	assert.NotEmpty(t, applicant.ID)
	assert.True(t, applicant.Active)
	assert.Equal(t, applicant.ID, app.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithApplicantRefreshesEmailOfExistingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("S300").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u7", "old@uni.edu", "hash", "Sam", "Ng", "Student", "S300", true, nil, now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = $2")).WithArgs("u7", "new@uni.edu", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tutor_applications").WillReturnResult(sqlmock.NewResult(1, 1))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO tutor_application_courses").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	sid := "S300"
	applicant := &models.User{Email: "new@uni.edu", StudentID: &sid}
	app := newApplication()
	require.NoError(t, repo.CreateWithApplicant(context.Background(), applicant, app))

	assert.Equal(t, "u7", applicant.ID)
	assert.Equal(t, "new@uni.edu", applicant.Email)
	assert.Equal(t, "hash", applicant.PasswordHash)
	assert.Equal(t, "u7", app.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithApplicantRollsBackOnCourseFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tutor_applications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tutor_application_courses").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	sid := "S301"
	err := repo.CreateWithApplicant(context.Background(), &models.User{Email: "x@uni.edu", StudentID: &sid}, newApplication())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectExec("UPDATE tutor_applications SET status").WithArgs("a1", models.ApplicationRejected, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "a1", models.ApplicationRejected), sql.ErrNoRows)
}

func TestEligibleTutorsFiltersByProgramAndYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("u.id <> $1 AND ta.program_id = $2 AND y.year_number >= $3")).
		WithArgs("learner", "prog-md", 2).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email"}).AddRow("t1", "Kim", "Ra", "kim@uni.edu"))

	tutors, err := repo.EligibleTutors(context.Background(), "prog-md", 2, "learner")
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "t1", tutors[0].UserID)
}

func TestEligibleTutorsWithoutProgramListsAllApproved(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("u.id <> $1 ORDER BY u.first_name")).
		WithArgs("learner").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email"}))

	tutors, err := repo.EligibleTutors(context.Background(), "", 0, "learner")
	require.NoError(t, err)
	assert.Empty(t, tutors)
}

func TestCountApplicationsByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectQuery("GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).AddRow("Pending", 2).AddRow("Approved", 5))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.ApplicationPending])
	assert.Equal(t, 0, counts[models.ApplicationRejected])
}
