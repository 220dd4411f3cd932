package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/export"
)

const (
	leaderboardTopTutors   = 5
	leaderboardTopRated    = 5
	leaderboardMinFeedback = 3
	leaderboardTopics      = 10
	leaderboardCourses     = 10

	defaultPDFTitle = "PAL Analytics Report"
)

// AnalyticsRepository describes the aggregate queries AnalyticsService relies on.
type AnalyticsRepository interface {
	Metrics(ctx context.Context, scope repository.AnalyticsScope) (*models.AnalyticsMetrics, error)
	Breakdowns(ctx context.Context, scope repository.AnalyticsScope, now time.Time) (*models.AnalyticsBreakdowns, error)
	SessionDetails(ctx context.Context, scope repository.AnalyticsScope) ([]models.SessionView, error)
	FeedbackDetails(ctx context.Context, scope repository.AnalyticsScope) ([]models.FeedbackView, error)
	TopRatedTutors(ctx context.Context, scope repository.AnalyticsScope, minFeedback, limit int) ([]models.RatedTutor, error)
	TrendingTopics(ctx context.Context, scope repository.AnalyticsScope, limit int) ([]models.AnalyticsBucket, error)
	TopTutorsBySessions(ctx context.Context, scope repository.AnalyticsScope, limit int) ([]models.AnalyticsBucket, error)
	BusiestCourses(ctx context.Context, scope repository.AnalyticsScope, limit int) ([]models.AnalyticsBucket, error)
}

type roleCounter interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// AnalyticsService computes the filtered dashboard and its exports. Every path
// goes through the same composed scope.
type AnalyticsService struct {
	repo     AnalyticsRepository
	users    roleCounter
	years    evaluationYearFinder
	programs programFinder
	xlsx     *export.XLSXExporter
	pdf      *export.PDFExporter
	pdfTitle string
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, users roleCounter, years evaluationYearFinder, programs programFinder, metrics *MetricsService, logger *zap.Logger, pdfTitle string) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(pdfTitle) == "" {
		pdfTitle = defaultPDFTitle
	}
	return &AnalyticsService{
		repo:     repo,
		users:    users,
		years:    years,
		programs: programs,
		xlsx:     export.NewXLSXExporter(export.DefaultHeaderStyle),
		pdf:      export.NewPDFExporter(),
		pdfTitle: pdfTitle,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard returns the scalar metrics and every breakdown for filter.
func (s *AnalyticsService) Dashboard(ctx context.Context, filter models.AnalyticsFilter) (*models.AnalyticsDashboard, error) {
	scope, filter, err := s.scope(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	metrics, err := s.repo.Metrics(ctx, scope)
	if err != nil {
		return nil, analyticsError(err)
	}
	now := s.now()
	breakdowns, err := s.repo.Breakdowns(ctx, scope, now)
	if err != nil {
		return nil, analyticsError(err)
	}
	s.metrics.ObserveAnalyticsQuery("dashboard", time.Since(start))

	return &models.AnalyticsDashboard{
		Filter:      filter,
		Metrics:     *metrics,
		Breakdowns:  *breakdowns,
		GeneratedAt: now.UTC(),
	}, nil
}

// ExportExcel renders the Summary Metrics, Sessions Detail and Feedback Detail workbook.
func (s *AnalyticsService) ExportExcel(ctx context.Context, filter models.AnalyticsFilter) (*ExportFile, error) {
	scope, filter, err := s.scope(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	metrics, err := s.repo.Metrics(ctx, scope)
	if err != nil {
		return nil, analyticsError(err)
	}
	sessions, err := s.repo.SessionDetails(ctx, scope)
	if err != nil {
		return nil, analyticsError(err)
	}
	feedback, err := s.repo.FeedbackDetails(ctx, scope)
	if err != nil {
		return nil, analyticsError(err)
	}
	s.metrics.ObserveAnalyticsQuery("export_excel", time.Since(start))

	payload, err := s.xlsx.Render(workbookSheets(metrics, sessions, feedback))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}
	s.metrics.RecordExport("xlsx")

	return &ExportFile{
		Filename:    s.workbookFilename(ctx, filter),
		ContentType: s.xlsx.ContentType(),
		Payload:     payload,
	}, nil
}

// ExportPDF renders the leaderboard report.
func (s *AnalyticsService) ExportPDF(ctx context.Context, filter models.AnalyticsFilter) (*ExportFile, error) {
	board, err := s.Leaderboard(ctx, filter)
	if err != nil {
		return nil, err
	}
	generated := s.now()

	payload, err := s.pdf.Render(leaderboardReport(s.pdfTitle, generated, board))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.metrics.RecordExport("pdf")

	return &ExportFile{
		Filename:    fmt.Sprintf("pal_analytics_%s.pdf", generated.Format("20060102_150405")),
		ContentType: s.pdf.ContentType(),
		Payload:     payload,
	}, nil
}

// Leaderboard computes the ranking set behind the PDF export.
func (s *AnalyticsService) Leaderboard(ctx context.Context, filter models.AnalyticsFilter) (*models.AnalyticsLeaderboard, error) {
	scope, _, err := s.scope(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	metrics, err := s.repo.Metrics(ctx, scope)
	if err != nil {
		return nil, analyticsError(err)
	}
	board := &models.AnalyticsLeaderboard{
		TotalSessions: metrics.TotalSessions,
		TotalHours:    metrics.TotalHours,
		TotalLearners: metrics.TotalLearners,
		TotalFeedback: metrics.TotalFeedback,
	}
	if board.TotalTutors, err = s.users.CountByRole(ctx, models.RoleTutor); err != nil {
		return nil, analyticsError(err)
	}
	if board.TopTutors, err = s.repo.TopTutorsBySessions(ctx, scope, leaderboardTopTutors); err != nil {
		return nil, analyticsError(err)
	}
	if board.TopRatedTutors, err = s.repo.TopRatedTutors(ctx, scope, leaderboardMinFeedback, leaderboardTopRated); err != nil {
		return nil, analyticsError(err)
	}
	if board.TrendingTopics, err = s.repo.TrendingTopics(ctx, scope, leaderboardTopics); err != nil {
		return nil, analyticsError(err)
	}
	if board.BusiestCourses, err = s.repo.BusiestCourses(ctx, scope, leaderboardCourses); err != nil {
		return nil, analyticsError(err)
	}
	s.metrics.ObserveAnalyticsQuery("leaderboard", time.Since(start))
	return board, nil
}

// scope resolves the evaluation year bounds and composes the shared filter.
func (s *AnalyticsService) scope(ctx context.Context, filter models.AnalyticsFilter) (repository.AnalyticsScope, models.AnalyticsFilter, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return repository.AnalyticsScope{}, filter, appErrors.Validation("end_date", "End date must not be before start date")
	}
	filter.EvaluationYear = nil
	if filter.EvaluationYearID != "" {
		year, err := s.years.FindByID(ctx, filter.EvaluationYearID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.AnalyticsScope{}, filter, appErrors.Validation("evaluation_year_id", "Select a valid evaluation year")
			}
			return repository.AnalyticsScope{}, filter, analyticsError(err)
		}
		filter.EvaluationYear = year
	}
	return repository.ComposeAnalyticsScope(filter), filter, nil
}

func (s *AnalyticsService) workbookFilename(ctx context.Context, filter models.AnalyticsFilter) string {
	parts := []string{"PAL_Analytics"}
	if filter.ProgramID != "" {
		program, err := s.programs.FindProgram(ctx, filter.ProgramID)
		switch {
		case err == nil:
			parts = append(parts, program.Code)
		case !errors.Is(err, sql.ErrNoRows):
			s.logger.Warn("failed to load program for export filename", zap.String("program_id", filter.ProgramID), zap.Error(err))
		}
	}
	if filter.StartDate != nil {
		parts = append(parts, "from_"+filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		parts = append(parts, "to_"+filter.EndDate.Format(dateLayout))
	}
	parts = append(parts, s.now().Format("20060102_150405"))
	return strings.Join(parts, "_") + ".xlsx"
}

func workbookSheets(metrics *models.AnalyticsMetrics, sessions []models.SessionView, feedback []models.FeedbackView) []export.Sheet {
	summary := export.Sheet{
		Name:        "Summary Metrics",
		Headers:     []string{"Metric", "Value"},
		ColumnWidth: 25,
		Rows: [][]interface{}{
			{"Total Sessions", metrics.TotalSessions},
			{"Total Hours", metrics.TotalHours},
			{"Total Learners", metrics.TotalLearners},
			{"Total Tutors", metrics.TotalTutors},
			{"Total Courses", metrics.TotalCourses},
			{"Total Feedback", metrics.TotalFeedback},
			{"Average Rating", export.Number{Value: metrics.AvgUsefulness, Format: "0.00"}},
		},
	}

	sessionSheet := export.Sheet{
		Name:        "Sessions Detail",
		Headers:     []string{"ID", "Date", "Tutor", "Learner", "Course", "Program", "Duration (min)", "Status"},
		ColumnWidth: 20,
		Rows:        make([][]interface{}, 0, len(sessions)),
	}
	for _, session := range sessions {
		course := ""
		if session.CourseCode != "" || session.CourseName != "" {
			course = session.CourseCode + " - " + session.CourseName
		}
		sessionSheet.Rows = append(sessionSheet.Rows, []interface{}{
			session.ID,
			session.SessionDate.Format(dateLayout),
			session.TutorName,
			session.LearnerName,
			course,
			session.ProgramName,
			session.Duration,
			string(session.Status),
		})
	}

	feedbackSheet := export.Sheet{
		Name:        "Feedback Detail",
		Headers:     []string{"ID", "Date", "Tutor", "Learner", "Program", "Year", "Explanation Rating", "Usefulness Rating", "Attend Again", "Well Organized"},
		ColumnWidth: 18,
		Rows:        make([][]interface{}, 0, len(feedback)),
	}
	for _, fb := range feedback {
		feedbackSheet.Rows = append(feedbackSheet.Rows, []interface{}{
			fb.ID,
			fb.SessionDate.Format(dateLayout),
			fb.TutorName,
			fb.LearnerName,
			fb.ProgramName,
			fb.YearName,
			fb.ExplanationRating,
			fb.UsefulnessRating,
			yesNo(fb.AttendAgain),
			yesNo(fb.WellOrganized),
		})
	}

	return []export.Sheet{summary, sessionSheet, feedbackSheet}
}

func leaderboardReport(title string, generated time.Time, board *models.AnalyticsLeaderboard) export.Report {
	report := export.Report{
		Title:    title,
		Subtitle: "Generated " + generated.Format("2006-01-02 15:04"),
		Summary: []export.Metric{
			{Label: "Total Sessions", Value: strconv.Itoa(board.TotalSessions)},
			{Label: "Total Hours", Value: strconv.Itoa(board.TotalHours)},
			{Label: "Total Learners", Value: strconv.Itoa(board.TotalLearners)},
			{Label: "Total Feedback", Value: strconv.Itoa(board.TotalFeedback)},
			{Label: "Total Tutors", Value: strconv.Itoa(board.TotalTutors)},
		},
	}

	report.Sections = append(report.Sections,
		bucketSection("Top Tutors by Sessions", "Tutor", "Sessions", board.TopTutors),
		ratedSection(board.TopRatedTutors),
		bucketSection("Trending Topics", "Topic", "Feedback", board.TrendingTopics),
		bucketSection("Busiest Courses", "Course", "Sessions", board.BusiestCourses),
	)
	return report
}

func bucketSection(title, labelHeader, countHeader string, buckets []models.AnalyticsBucket) export.Section {
	section := export.Section{Title: title, Data: export.Dataset{Headers: []string{"#", labelHeader, countHeader}}}
	for i, b := range buckets {
		section.Data.Rows = append(section.Data.Rows, map[string]string{
			"#":         strconv.Itoa(i + 1),
			labelHeader: b.Label,
			countHeader: strconv.Itoa(b.Count),
		})
	}
	return section
}

func ratedSection(tutors []models.RatedTutor) export.Section {
	section := export.Section{
		Title: "Top Rated Tutors",
		Data:  export.Dataset{Headers: []string{"#", "Tutor", "Avg Rating", "Feedback"}},
	}
	for i, t := range tutors {
		section.Data.Rows = append(section.Data.Rows, map[string]string{
			"#":          strconv.Itoa(i + 1),
			"Tutor":      t.Name,
			"Avg Rating": strconv.FormatFloat(t.AvgRating, 'f', 2, 64),
			"Feedback":   strconv.Itoa(t.FeedbackCount),
		})
	}
	return section
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func analyticsError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute analytics")
}
