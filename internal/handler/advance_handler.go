package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/service"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
	"github.com/sentryops/guard-roster-api/pkg/response"
)

// AdvanceHandler manages advance and cash payment document endpoints.
type AdvanceHandler struct {
	service *service.AdvanceService
}

// NewAdvanceHandler constructs handler.
func NewAdvanceHandler(svc *service.AdvanceService) *AdvanceHandler {
	return &AdvanceHandler{service: svc}
}

// List godoc
// @Summary List advance documents
// @Tags Advances
// @Produce json
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param type query string false "Filter by type (advance or cash)"
// @Success 200 {object} response.Envelope
// @Router /advances [get]
func (h *AdvanceHandler) List(c *gin.Context) {
	query := dto.AdvanceListQuery{
		Date: c.Query("date"),
		Type: c.Query("type"),
	}
	docs, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Get godoc
// @Summary Get one advance document
// @Tags Advances
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advances/{id} [get]
func (h *AdvanceHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Create godoc
// @Summary Create an advance document
// @Tags Advances
// @Accept json
// @Produce json
// @Param payload body dto.CreateAdvanceRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advances [post]
func (h *AdvanceHandler) Create(c *gin.Context) {
	var req dto.CreateAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Update godoc
// @Summary Update an advance document
// @Tags Advances
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateAdvanceRequest true "Document edits"
// @Success 200 {object} response.Envelope
// @Router /advances/{id} [put]
func (h *AdvanceHandler) Update(c *gin.Context) {
	var req dto.UpdateAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// UpdateStatus godoc
// @Summary Move an advance document through its workflow
// @Tags Advances
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.AdvanceStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /advances/{id}/status [put]
func (h *AdvanceHandler) UpdateStatus(c *gin.Context) {
	var req dto.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete an advance document
// @Tags Advances
// @Param id path string true "Document ID"
// @Success 204 "No Content"
// @Router /advances/{id} [delete]
func (h *AdvanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
