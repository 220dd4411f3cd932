package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

func TestAnalyticsMetricsIntegerDividesHours(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	scope := ComposeAnalyticsScope(models.AnalyticsFilter{ProgramID: "prog-md"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM tutoring_sessions s JOIN courses c ON c.id = s.course_id WHERE c.program_id = $1")).
		WithArgs("prog-md").
		WillReturnRows(sqlmock.NewRows([]string{"total_sessions", "total_minutes", "total_learners", "total_tutors", "total_courses"}).
			AddRow(3, 179, 2, 1, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback f WHERE f.program_id = $1")).
		WithArgs("prog-md").
		WillReturnRows(sqlmock.NewRows([]string{"total", "avg"}).AddRow(4, 4.25))
	mock.ExpectQuery("FROM programs").
		WillReturnRows(sqlmock.NewRows([]string{"programs", "years"}).AddRow(2, 10))

	metrics, err := repo.Metrics(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalHours)
	assert.Equal(t, 4, metrics.TotalFeedback)
	assert.InDelta(t, 4.25, metrics.AvgUsefulness, 0.001)
	assert.Equal(t, 10, metrics.TotalYears)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsBreakdownsLabelsWeekdays(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	bucketCols := []string{"key", "label", "count"}
	for i := 0; i < 8; i++ {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(bucketCols))
	}
	mock.ExpectQuery("EXTRACT\\(DOW").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("1", 2).AddRow("6", 5))
	mock.ExpectQuery("explanation_rating").WillReturnRows(sqlmock.NewRows(bucketCols).AddRow("5", "5", 1))
	mock.ExpectQuery("date_trunc\\('month'").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(bucketCols).AddRow("2025-10", "Oct 2025", 7))

	out, err := repo.Breakdowns(context.Background(), ComposeAnalyticsScope(models.AnalyticsFilter{}), time.Now())
	require.NoError(t, err)
	require.Len(t, out.SessionsByWeekday, 2)
	assert.Equal(t, "Sunday", out.SessionsByWeekday[0].Label)
	assert.Equal(t, "Friday", out.SessionsByWeekday[1].Label)
	assert.NotNil(t, out.TopCourses)
	assert.Len(t, out.FeedbackByClarity, 1)
	assert.Equal(t, 7, out.SessionsByMonth[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopRatedTutorsRequiresMinimumFeedback(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("HAVING COUNT(*) >= $1")).
		WithArgs(3, 5).
		WillReturnRows(sqlmock.NewRows([]string{"tutor_id", "name", "avg_rating", "feedback_count"}).AddRow("t1", "Kim Ra", 4.8, 6))

	tutors, err := repo.TopRatedTutors(context.Background(), ComposeAnalyticsScope(models.AnalyticsFilter{}), 3, 5)
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, 6, tutors[0].FeedbackCount)
}
