package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentryops/guard-roster-api/internal/service"
	"github.com/sentryops/guard-roster-api/pkg/response"
)

// RateHandler exposes the effective pay component resolver.
type RateHandler struct {
	service *service.RateService
}

// NewRateHandler constructs handler.
func NewRateHandler(svc *service.RateService) *RateHandler {
	return &RateHandler{service: svc}
}

// Resolve godoc
// @Summary Resolve effective pay components for a site and position
// @Tags Catalog
// @Produce json
// @Param siteId path string true "Site ID"
// @Param positionId path string true "Position ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sites/{siteId}/rates/{positionId} [get]
func (h *RateHandler) Resolve(c *gin.Context) {
	components, err := h.service.Resolve(c.Request.Context(), c.Param("siteId"), c.Param("positionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, components, nil)
}
