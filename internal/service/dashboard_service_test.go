package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

type fakeDashboardSessions struct {
	upcoming  []models.SessionView
	totals    repository.SessionTotals
	lastFrom  time.Time
	lastLimit int
}

func (f *fakeDashboardSessions) Count(ctx context.Context) (int, error) { return 12, nil }

func (f *fakeDashboardSessions) ListUpcoming(ctx context.Context, userID string, from time.Time, limit int) ([]models.SessionView, error) {
	f.lastFrom, f.lastLimit = from, limit
	return f.upcoming, nil
}

func (f *fakeDashboardSessions) TotalsForUser(ctx context.Context, userID string) (*repository.SessionTotals, error) {
	totals := f.totals
	return &totals, nil
}

type fakeDashboardApplications struct {
	counts map[models.ApplicationStatus]int
	byUser []models.TutorApplicationView
}

func (f *fakeDashboardApplications) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	return f.counts, nil
}

func (f *fakeDashboardApplications) ListByUser(ctx context.Context, userID string) ([]models.TutorApplicationView, error) {
	return f.byUser, nil
}

type fakeDashboardFeedback struct {
	totals repository.FeedbackTotals
}

func (f *fakeDashboardFeedback) TotalsForUser(ctx context.Context, userID string) (*repository.FeedbackTotals, error) {
	totals := f.totals
	return &totals, nil
}

func newDashboardForTest(profiles fakeProfiles) (*DashboardService, *fakeDashboardSessions) {
	users := newFakeUserRepo(
		models.User{ID: "admin", Role: models.RoleAdmin},
		models.User{ID: "tutor", Role: models.RoleTutor},
		models.User{ID: "student", Role: models.RoleStudent},
		models.User{ID: "fresh", Role: models.RoleStudent},
	)
	sessions := &fakeDashboardSessions{totals: repository.SessionTotals{CompletedAsTutor: 4, CompletedAsLearner: 2, CompletedTutorMinutes: 240}}
	apps := &fakeDashboardApplications{
		counts: map[models.ApplicationStatus]int{models.ApplicationPending: 3, models.ApplicationApproved: 7},
		byUser: []models.TutorApplicationView{{TutorApplication: models.TutorApplication{ID: "app-1"}}},
	}
	feedback := &fakeDashboardFeedback{totals: repository.FeedbackTotals{Given: 1, Received: 5, AvgUsefulness: 4.2}}
	svc := NewDashboardService(users, sessions, apps, feedback, profiles, nil)
	svc.now = func() time.Time { return time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC) }
	return svc, sessions
}

func TestDashboardServiceAdmin(t *testing.T) {
	svc, _ := newDashboardForTest(fakeProfiles{})

	dash, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, dash.TotalUsers)
	assert.Equal(t, 2, dash.TotalStudents)
	assert.Equal(t, 1, dash.TotalTutors)
	assert.Equal(t, 12, dash.TotalSessions)
	assert.Equal(t, 3, dash.PendingApplications)
}

func TestDashboardServicePersonalTutor(t *testing.T) {
	svc, sessions := newDashboardForTest(fakeProfiles{})

	dash, err := svc.Personal(context.Background(), "tutor")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, dash.Role)
	assert.Len(t, dash.Applications, 1)
	assert.Equal(t, 4, dash.CompletedSessions)
	assert.Equal(t, 240, dash.CompletedMinutes)
	assert.Equal(t, 4.2, dash.AvgUsefulness)
	assert.NotNil(t, dash.UpcomingSessions)
	assert.Equal(t, upcomingSessionsLimit, sessions.lastLimit)
	assert.Equal(t, svc.now(), sessions.lastFrom)
}

func TestDashboardServicePersonalStudent(t *testing.T) {
	svc, _ := newDashboardForTest(fakeProfiles{"student": mdProfile("student", 2)})

	dash, err := svc.Personal(context.Background(), "student")
	require.NoError(t, err)
	require.NotNil(t, dash.Profile)
	assert.Equal(t, 2, dash.Profile.YearNumber)
	assert.Equal(t, 2, dash.CompletedSessions)
	assert.False(t, dash.RegistrationNeeded)

	fresh, err := svc.Personal(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Nil(t, fresh.Profile)
	assert.True(t, fresh.RegistrationNeeded)

	admin, err := svc.Personal(context.Background(), "admin")
	require.NoError(t, err)
	assert.False(t, admin.RegistrationNeeded)

	_, err = svc.Personal(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
