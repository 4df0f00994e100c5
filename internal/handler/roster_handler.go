package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/service"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
	"github.com/sentryops/guard-roster-api/pkg/response"
)

// RosterHandler manages assignment ledger endpoints.
type RosterHandler struct {
	service *service.RosterService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Assign godoc
// @Summary Assign a guard to a shift slot
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.AssignRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roster/assign [post]
func (h *RosterHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Unassign godoc
// @Summary Remove a committed assignment
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.UnassignRequest true "Unassign payload"
// @Success 200 {object} response.Envelope
// @Router /roster/unassign [post]
func (h *RosterHandler) Unassign(c *gin.Context) {
	var req dto.UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	removed, err := h.service.Unassign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed, nil)
}

// Move godoc
// @Summary Move a guard between slots on the same date
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.MoveRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Router /roster/move [post]
func (h *RosterHandler) Move(c *gin.Context) {
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	moved, err := h.service.Move(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, moved, nil)
}

// Replace godoc
// @Summary Replace the whole schedule for one site and date
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceScheduleRequest true "Replacement payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roster/replace [post]
func (h *RosterHandler) Replace(c *gin.Context) {
	var req dto.ReplaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.service.Replace(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// GetSchedule godoc
// @Summary Get the schedule for one site and date
// @Tags Roster
// @Produce json
// @Param siteId path string true "Site ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/schedules/{siteId}/{date} [get]
func (h *RosterHandler) GetSchedule(c *gin.Context) {
	detail, err := h.service.GetSchedule(c.Request.Context(), c.Param("siteId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List schedules
// @Tags Roster
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Param site_id query string false "Filter by site"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /roster/schedules [get]
func (h *RosterHandler) List(c *gin.Context) {
	var query dto.ScheduleListQuery
	query.StartDate = c.Query("start_date")
	query.EndDate = c.Query("end_date")
	query.SiteID = c.Query("site_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		query.PageSize = size
	}

	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Index godoc
// @Summary Date-to-site schedule index over a range
// @Tags Roster
// @Produce json
// @Param start_date query string true "Range start (YYYY-MM-DD)"
// @Param end_date query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/index [get]
func (h *RosterHandler) Index(c *gin.Context) {
	query := dto.ScheduleIndexQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	index, err := h.service.Index(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, index, nil)
}

// Availability godoc
// @Summary List guards with no assignment on a date
// @Tags Roster
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/availability [get]
func (h *RosterHandler) Availability(c *gin.Context) {
	guards, err := h.service.AvailableGuards(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guards, nil)
}
