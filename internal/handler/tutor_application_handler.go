package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type tutorApplicationService interface {
	List(ctx context.Context, filter models.TutorApplicationFilter) ([]models.TutorApplicationView, *models.Pagination, error)
	UpdateStatus(ctx context.Context, id string, req models.UpdateApplicationStatusRequest, actorID string, meta models.RequestMeta) (*models.TutorApplicationView, error)
}

// TutorApplicationHandler lets staff review tutor applications.
type TutorApplicationHandler struct {
	service tutorApplicationService
}

// NewTutorApplicationHandler constructs the handler.
func NewTutorApplicationHandler(svc tutorApplicationService) *TutorApplicationHandler {
	return &TutorApplicationHandler{service: svc}
}

// List godoc
// @Summary List tutor applications
// @Tags TutorApplications
// @Produce json
// @Param status query string false "Pending, Approved or Rejected"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tutor-applications [get]
func (h *TutorApplicationHandler) List(c *gin.Context) {
	filter := models.TutorApplicationFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		filter.Status = &s
	}
	apps, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// UpdateStatus godoc
// @Summary Moderate a tutor application
// @Tags TutorApplications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body models.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /tutor-applications/{id}/status [patch]
func (h *TutorApplicationHandler) UpdateStatus(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.UpdateApplicationStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	app, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}
