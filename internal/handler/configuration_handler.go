package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/pkg/response"
)

type configurationService interface {
	List(ctx context.Context) ([]models.Configuration, error)
	Update(ctx context.Context, key string, req models.UpdateConfigurationRequest, actorID string, meta models.RequestMeta) (*models.Configuration, error)
}

// ConfigurationHandler exposes the admin-tunable registration settings.
type ConfigurationHandler struct {
	service configurationService
}

// NewConfigurationHandler constructs the handler.
func NewConfigurationHandler(svc configurationService) *ConfigurationHandler {
	return &ConfigurationHandler{service: svc}
}

// List godoc
// @Summary List settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings [get]
func (h *ConfigurationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update a setting
// @Description maxCourseSelections takes a positive integer, minGpaForTutor a decimal between 0 and 4
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body models.UpdateConfigurationRequest true "New value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *ConfigurationHandler) Update(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req models.UpdateConfigurationRequest
	if !bindJSON(c, &req, "invalid setting payload") {
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("key"), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
