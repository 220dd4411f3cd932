package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

var userRowColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "role", "student_id", "active", "last_login", "created_at", "updated_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "postgres")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "Ana@Uni.edu", "hash", "Ana", "Lee", string(models.RoleStudent), "S100", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("ana@uni.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ana@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lee", user.FullName())
	require.NotNil(t, user.StudentID)
	assert.Equal(t, "S100", *user.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDPassesNoRowsThrough(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentIDTakenExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE student_id = $1 AND id <> $2)")).
		WithArgs("S100", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.StudentIDTaken(context.Background(), "S100", "u1")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersAppliesSearchAndPaging(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	role := models.RoleStudent
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE 1=1 AND role = $1 AND (LOWER(email) LIKE $2")).
		WithArgs(role, "%lee%").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "a@uni.edu", "hash", "Ana", "Lee", "Student", nil, true, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs(role, "%lee%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Search: "Lee", Page: 2, PageSize: 500, SortBy: "password_hash"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 21, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithStudentProfileRunsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO students .* ON CONFLICT \\(user_id\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow("st1", time.Now(), true))
	mock.ExpectCommit()

	user := &models.User{Email: "a@uni.edu", Role: models.RoleStudent, Active: true}
	student := &models.Student{ProgramID: "prog-md", YearID: "year-md-2"}
	require.NoError(t, repo.Create(context.Background(), user, student))

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, student.UserID)
	require.NotNil(t, student.StudyYearID)
	assert.Equal(t, "year-md-2", *student.StudyYearID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserRollsBackWhenProfileFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO students").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Email: "a@uni.edu"}, &models.Student{ProgramID: "p", YearID: "y"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserReportsMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).WithArgs("u9").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "u9"), sql.ErrNoRows)
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	assert.NotEmpty(t, token.ID)
	assert.False(t, token.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
