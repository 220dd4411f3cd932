package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/middleware"
	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type catalogService interface {
	Programs(ctx context.Context) ([]models.Program, error)
	Years(ctx context.Context, programID, userID string, belowOwnYear bool) ([]models.Year, error)
	Courses(ctx context.Context, programID string, maxYear int) ([]models.Course, error)
}

// CatalogHandler serves the program, year and course lookups used by the registration forms.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Programs godoc
// @Summary List programs
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *CatalogHandler) Programs(c *gin.Context) {
	programs, err := h.service.Programs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Years godoc
// @Summary List a program's years
// @Description With below_own_year=true only years under the caller's own student year are returned.
// @Tags Catalog
// @Produce json
// @Param id path string true "Program ID"
// @Param below_own_year query bool false "Near-peer filter"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/years [get]
func (h *CatalogHandler) Years(c *gin.Context) {
	below, _ := strconv.ParseBool(c.Query("below_own_year"))
	userID := ""
	if claims := middleware.CurrentUser(c); claims != nil {
		userID = claims.UserID
	}

	years, err := h.service.Years(c.Request.Context(), c.Param("id"), userID, below)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Courses godoc
// @Summary List courses visible up to a year
// @Tags Catalog
// @Produce json
// @Param id path string true "Program ID"
// @Param max_year query int false "Highest year number; omitted means all"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context(), c.Param("id"), queryInt(c, "max_year", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
