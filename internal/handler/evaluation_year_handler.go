package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type evaluationYearService interface {
	List(ctx context.Context) ([]models.EvaluationYear, error)
	Get(ctx context.Context, id string) (*models.EvaluationYear, error)
	Active(ctx context.Context) (*models.EvaluationYear, error)
	Create(ctx context.Context, req models.EvaluationYearRequest) (*models.EvaluationYear, error)
	Update(ctx context.Context, id string, req models.EvaluationYearRequest) (*models.EvaluationYear, error)
	Activate(ctx context.Context, id, actorID string, meta models.RequestMeta) (*models.EvaluationYear, error)
	Delete(ctx context.Context, id string) error
}

// EvaluationYearHandler manages the academic evaluation periods.
type EvaluationYearHandler struct {
	service evaluationYearService
}

// NewEvaluationYearHandler constructs the handler.
func NewEvaluationYearHandler(svc evaluationYearService) *EvaluationYearHandler {
	return &EvaluationYearHandler{service: svc}
}

// List godoc
// @Summary List evaluation years
// @Tags EvaluationYears
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years [get]
func (h *EvaluationYearHandler) List(c *gin.Context) {
	years, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Get godoc
// @Summary Get evaluation year
// @Tags EvaluationYears
// @Produce json
// @Param id path string true "Evaluation year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years/{id} [get]
func (h *EvaluationYearHandler) Get(c *gin.Context) {
	year, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Active godoc
// @Summary Get the active evaluation year
// @Tags EvaluationYears
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years/active [get]
func (h *EvaluationYearHandler) Active(c *gin.Context) {
	year, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Create evaluation year
// @Description Creating an active year deactivates every other year
// @Tags EvaluationYears
// @Accept json
// @Produce json
// @Param payload body models.EvaluationYearRequest true "Evaluation year"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years [post]
func (h *EvaluationYearHandler) Create(c *gin.Context) {
	var req models.EvaluationYearRequest
	if !bindJSON(c, &req, "invalid evaluation year payload") {
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update evaluation year
// @Tags EvaluationYears
// @Accept json
// @Produce json
// @Param id path string true "Evaluation year ID"
// @Param payload body models.EvaluationYearRequest true "Evaluation year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years/{id} [put]
func (h *EvaluationYearHandler) Update(c *gin.Context) {
	var req models.EvaluationYearRequest
	if !bindJSON(c, &req, "invalid evaluation year payload") {
		return
	}
	year, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Activate godoc
// @Summary Make an evaluation year the active one
// @Tags EvaluationYears
// @Produce json
// @Param id path string true "Evaluation year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years/{id}/activate [post]
func (h *EvaluationYearHandler) Activate(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	year, err := h.service.Activate(c.Request.Context(), c.Param("id"), claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete evaluation year
// @Description Sessions keep their rows but lose the year reference
// @Tags EvaluationYears
// @Param id path string true "Evaluation year ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evaluation-years/{id} [delete]
func (h *EvaluationYearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
