package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

func TestConfigurationRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	rows := sqlmock.NewRows([]string{"key", "value", "description", "updated_at"}).
		AddRow(models.ConfigMaxCourseSelections, "3", "Courses per student", time.Now()).
		AddRow(models.ConfigMinGPAForTutor, "3.0", "Minimum tutor GPA", time.Now())
	mock.ExpectQuery("SELECT key, value, description, updated_at FROM configs ORDER BY key").WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "3", result[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	mock.ExpectQuery("FROM configs WHERE key").WithArgs("unknown").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestConfigurationRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	mock.ExpectExec("INSERT INTO configs .* ON CONFLICT \\(key\\)").
		WithArgs(models.ConfigMaxCourseSelections, "4", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := &models.Configuration{Key: models.ConfigMaxCourseSelections, Value: "4"}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.False(t, cfg.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
