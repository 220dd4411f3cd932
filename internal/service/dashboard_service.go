package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

const upcomingSessionsLimit = 5

type dashboardUserCounter interface {
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type dashboardSessionReader interface {
	Count(ctx context.Context) (int, error)
	ListUpcoming(ctx context.Context, userID string, from time.Time, limit int) ([]models.SessionView, error)
	TotalsForUser(ctx context.Context, userID string) (*repository.SessionTotals, error)
}

type dashboardApplicationReader interface {
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error)
	ListByUser(ctx context.Context, userID string) ([]models.TutorApplicationView, error)
}

type dashboardFeedbackReader interface {
	TotalsForUser(ctx context.Context, userID string) (*repository.FeedbackTotals, error)
}

// AdminDashboard summarises the whole programme.
type AdminDashboard struct {
	TotalUsers          int       `json:"total_users"`
	TotalStudents       int       `json:"total_students"`
	TotalTutors         int       `json:"total_tutors"`
	TotalSessions       int       `json:"total_sessions"`
	PendingApplications int       `json:"pending_applications"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// PersonalDashboard is the signed-in user's own overview.
type PersonalDashboard struct {
	Role               models.UserRole               `json:"role"`
	Profile            *models.StudentProfile        `json:"profile,omitempty"`
	Applications       []models.TutorApplicationView `json:"applications,omitempty"`
	UpcomingSessions   []models.SessionView          `json:"upcoming_sessions"`
	CompletedSessions  int                           `json:"completed_sessions"`
	CompletedMinutes   int                           `json:"completed_minutes,omitempty"`
	FeedbackGiven      int                           `json:"feedback_given"`
	FeedbackReceived   int                           `json:"feedback_received"`
	AvgUsefulness      float64                       `json:"avg_usefulness_rating,omitempty"`
	RegistrationNeeded bool                          `json:"registration_needed,omitempty"`
}

// DashboardService composes admin and personal dashboards.
type DashboardService struct {
	users        dashboardUserCounter
	sessions     dashboardSessionReader
	applications dashboardApplicationReader
	feedback     dashboardFeedbackReader
	students     studentProfileReader
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(users dashboardUserCounter, sessions dashboardSessionReader, applications dashboardApplicationReader, feedback dashboardFeedbackReader, students studentProfileReader, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:        users,
		sessions:     sessions,
		applications: applications,
		feedback:     feedback,
		students:     students,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Admin returns programme-wide counters.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	var (
		result = &AdminDashboard{GeneratedAt: s.now()}
		err    error
	)
	if result.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, dashboardError(err)
	}
	if result.TotalStudents, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, dashboardError(err)
	}
	if result.TotalTutors, err = s.users.CountByRole(ctx, models.RoleTutor); err != nil {
		return nil, dashboardError(err)
	}
	if result.TotalSessions, err = s.sessions.Count(ctx); err != nil {
		return nil, dashboardError(err)
	}
	counts, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	result.PendingApplications = counts[models.ApplicationPending]
	return result, nil
}

// Personal returns the overview for userID, shaped by their role.
func (s *DashboardService) Personal(ctx context.Context, userID string) (*PersonalDashboard, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, dashboardError(err)
	}

	upcoming, err := s.sessions.ListUpcoming(ctx, userID, s.now(), upcomingSessionsLimit)
	if err != nil {
		return nil, dashboardError(err)
	}
	if upcoming == nil {
		upcoming = []models.SessionView{}
	}
	totals, err := s.sessions.TotalsForUser(ctx, userID)
	if err != nil {
		return nil, dashboardError(err)
	}
	feedback, err := s.feedback.TotalsForUser(ctx, userID)
	if err != nil {
		return nil, dashboardError(err)
	}

	result := &PersonalDashboard{
		Role:             user.Role,
		UpcomingSessions: upcoming,
		FeedbackGiven:    feedback.Given,
		FeedbackReceived: feedback.Received,
	}

	switch user.Role {
	case models.RoleTutor:
		apps, err := s.applications.ListByUser(ctx, userID)
		if err != nil {
			return nil, dashboardError(err)
		}
		result.Applications = apps
		result.CompletedSessions = totals.CompletedAsTutor
		result.CompletedMinutes = totals.CompletedTutorMinutes
		result.AvgUsefulness = feedback.AvgUsefulness
	default:
		result.CompletedSessions = totals.CompletedAsLearner
		profile, err := s.students.FindByUserID(ctx, userID)
		switch {
		case err == nil:
			result.Profile = profile
		case errors.Is(err, sql.ErrNoRows):
			result.RegistrationNeeded = user.Role == models.RoleStudent
		default:
			return nil, dashboardError(err)
		}
	}
	return result, nil
}

func dashboardError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
}
