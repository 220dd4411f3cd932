package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListYearsBelowOwnYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAcademicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM years WHERE program_id = $1 AND year_number < $2 ORDER BY year_number")).
		WithArgs("prog-md", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "year_number", "name"}).
			AddRow("year-md-1", "prog-md", 1, "Year 1").
			AddRow("year-md-2", "prog-md", 2, "Year 2"))

	years, err := repo.ListYears(context.Background(), "prog-md", 3)
	require.NoError(t, err)
	assert.Len(t, years, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListYearsUnbounded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAcademicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM years WHERE program_id = $1 ORDER BY year_number")).
		WithArgs("prog-ns").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "year_number", "name"}))

	years, err := repo.ListYears(context.Background(), "prog-ns", 0)
	require.NoError(t, err)
	assert.Empty(t, years)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVisibleCoursesIsCumulative(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAcademicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.program_id = $1 AND y.year_number <= $2 ORDER BY y.year_number, c.code")).
		WithArgs("prog-md", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "year_id", "code", "name", "description", "year_number"}).
			AddRow("c1", "prog-md", "year-md-1", "ANAT101", "Anatomy", "", 1).
			AddRow("c2", "prog-md", "year-md-2", "PATH201", "Pathology", "", 2))

	courses, err := repo.ListVisibleCourses(context.Background(), "prog-md", 2)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "PATH201 - Pathology", courses[1].Label())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogIndexesYearsByProgramCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAcademicRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM programs ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "description", "created_at"}).
			AddRow("prog-md", "Medicine", "MD", "", now).
			AddRow("prog-ns", "Nursing", "NS", "", now))
	mock.ExpectQuery("FROM years ORDER BY program_id, year_number").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "year_number", "name"}).
			AddRow("year-md-6", "prog-md", 6, "Year 6").
			AddRow("year-ns-4", "prog-ns", 4, "Year 4"))

	catalog, err := repo.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "year-md-6", catalog["MD"].Years[6].ID)
	_, ok := catalog["NS"].Years[6]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
