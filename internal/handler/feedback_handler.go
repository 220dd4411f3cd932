package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type feedbackService interface {
	EligibleTutors(ctx context.Context, learnerID string) ([]models.EligibleTutor, error)
	Submit(ctx context.Context, learnerID string, req models.SubmitFeedbackRequest) (*models.Feedback, error)
}

// FeedbackHandler collects learner feedback on tutors.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(svc feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// EligibleTutors godoc
// @Summary Tutors the caller may rate
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback/tutors [get]
func (h *FeedbackHandler) EligibleTutors(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	tutors, err := h.service.EligibleTutors(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutors, nil)
}

// Submit godoc
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body models.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.SubmitFeedbackRequest
	if !bindJSON(c, &req, "invalid feedback payload") {
		return
	}
	fb, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fb)
}
