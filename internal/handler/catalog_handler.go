package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/service"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
	"github.com/sentryops/guard-roster-api/pkg/response"
)

// CatalogHandler manages per-site shift slot endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListSlots godoc
// @Summary List shift slots for a site
// @Tags Catalog
// @Produce json
// @Param siteId path string true "Site ID"
// @Success 200 {object} response.Envelope
// @Router /sites/{siteId}/slots [get]
func (h *CatalogHandler) ListSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// GetSlot godoc
// @Summary Get one shift slot
// @Tags Catalog
// @Produce json
// @Param siteId path string true "Site ID"
// @Param code path string true "Shift code"
// @Success 200 {object} response.Envelope
// @Router /sites/{siteId}/slots/{code} [get]
func (h *CatalogHandler) GetSlot(c *gin.Context) {
	slot, err := h.service.GetSlot(c.Request.Context(), c.Param("siteId"), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// CreateSlot godoc
// @Summary Create shift slot
// @Tags Catalog
// @Accept json
// @Produce json
// @Param siteId path string true "Site ID"
// @Param payload body dto.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /sites/{siteId}/slots [post]
func (h *CatalogHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), c.Param("siteId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateSlot godoc
// @Summary Update shift slot
// @Tags Catalog
// @Accept json
// @Produce json
// @Param siteId path string true "Site ID"
// @Param code path string true "Shift code"
// @Param payload body dto.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /sites/{siteId}/slots/{code} [patch]
func (h *CatalogHandler) UpdateSlot(c *gin.Context) {
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.UpdateSlot(c.Request.Context(), c.Param("siteId"), c.Param("code"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// DeleteSlot godoc
// @Summary Delete shift slot
// @Tags Catalog
// @Produce json
// @Param siteId path string true "Site ID"
// @Param code path string true "Shift code"
// @Success 204 {object} nil
// @Router /sites/{siteId}/slots/{code} [delete]
func (h *CatalogHandler) DeleteSlot(c *gin.Context) {
	if err := h.service.DeleteSlot(c.Request.Context(), c.Param("siteId"), c.Param("code"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
