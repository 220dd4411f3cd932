package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/service"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type analyticsService interface {
	Dashboard(ctx context.Context, filter models.AnalyticsFilter) (*models.AnalyticsDashboard, error)
	Leaderboard(ctx context.Context, filter models.AnalyticsFilter) (*models.AnalyticsLeaderboard, error)
	ExportExcel(ctx context.Context, filter models.AnalyticsFilter) (*service.ExportFile, error)
	ExportPDF(ctx context.Context, filter models.AnalyticsFilter) (*service.ExportFile, error)
}

// AnalyticsHandler exposes the filtered analytics dashboard and its downloads.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard godoc
// @Summary Analytics dashboard
// @Description Scalar metrics and chart breakdowns. Every filter is optional and they combine conjunctively.
// @Tags Analytics
// @Produce json
// @Param program_id query string false "Program"
// @Param year_id query string false "Year"
// @Param course_id query string false "Course"
// @Param tutor_id query string false "Tutor"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param evaluation_year_id query string false "Evaluation year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	dash, err := h.analytics.Dashboard(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Leaderboard godoc
// @Summary Analytics leaderboard
// @Description The ranking data rendered by the PDF export
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/leaderboard [get]
func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.analytics.Leaderboard(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// ExportExcel godoc
// @Summary Download the analytics workbook
// @Tags Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/export/excel [get]
func (h *AnalyticsHandler) ExportExcel(c *gin.Context) {
	h.export(c, h.analytics.ExportExcel)
}

// ExportPDF godoc
// @Summary Download the analytics leaderboard PDF
// @Tags Analytics
// @Produce application/pdf
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/export/pdf [get]
func (h *AnalyticsHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.analytics.ExportPDF)
}

func (h *AnalyticsHandler) export(c *gin.Context, render func(context.Context, models.AnalyticsFilter) (*service.ExportFile, error)) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := render(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func parseAnalyticsFilter(c *gin.Context) (models.AnalyticsFilter, error) {
	filter := models.AnalyticsFilter{
		ProgramID:        strings.TrimSpace(c.Query("program_id")),
		YearID:           strings.TrimSpace(c.Query("year_id")),
		CourseID:         strings.TrimSpace(c.Query("course_id")),
		TutorID:          strings.TrimSpace(c.Query("tutor_id")),
		EvaluationYearID: strings.TrimSpace(c.Query("evaluation_year_id")),
	}
	var err error
	if filter.StartDate, err = queryDate(c, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate(c, "end_date"); err != nil {
		return filter, err
	}
	return filter, nil
}
