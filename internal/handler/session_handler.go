package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

const maxSessionListLimit = 200

type sessionService interface {
	Create(ctx context.Context, tutorID string, req models.CreateSessionRequest) (*models.SessionView, error)
	ListMine(ctx context.Context, userID string, limit int) ([]models.SessionView, error)
}

// SessionHandler records tutoring sessions.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary Record a tutoring session
// @Description The course must be one of the caller's approved tutoring courses
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body models.CreateSessionRequest true "Session"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.CreateSessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ListMine godoc
// @Summary List the caller's sessions as tutor or learner
// @Tags Sessions
// @Produce json
// @Param limit query int false "Maximum rows (default 50)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/mine [get]
func (h *SessionHandler) ListMine(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > maxSessionListLimit {
		limit = maxSessionListLimit
	}
	sessions, err := h.service.ListMine(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}
