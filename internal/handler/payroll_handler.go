package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/service"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
	"github.com/sentryops/guard-roster-api/pkg/response"
)

type exportService interface {
	CreateJob(ctx context.Context, req dto.ExportRequest, claims *models.JWTClaims) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// PayrollHandler exposes work history and export endpoints.
type PayrollHandler struct {
	history *service.HistoryService
	exports exportService
	logger  *zap.Logger
}

// NewPayrollHandler constructs handler.
func NewPayrollHandler(history *service.HistoryService, exports exportService, logger *zap.Logger) *PayrollHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollHandler{history: history, exports: exports, logger: logger}
}

// WorkHistory godoc
// @Summary Guard work history over a date range
// @Tags Payroll
// @Produce json
// @Param guardId path string true "Guard ID"
// @Param start_date query string true "Range start (YYYY-MM-DD)"
// @Param end_date query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /payroll/guards/{guardId}/work-history [get]
func (h *PayrollHandler) WorkHistory(c *gin.Context) {
	query := dto.WorkHistoryQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	history, err := h.history.WorkHistory(c.Request.Context(), c.Param("guardId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// GuardSummary godoc
// @Summary Lifetime guard work summary
// @Tags Payroll
// @Produce json
// @Param guardId path string true "Guard ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/guards/{guardId}/summary [get]
func (h *PayrollHandler) GuardSummary(c *gin.Context) {
	summary, err := h.history.GuardSummary(c.Request.Context(), c.Param("guardId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// CreateExport godoc
// @Summary Queue an asynchronous payroll export
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /payroll/exports [post]
func (h *PayrollHandler) CreateExport(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Export job status
// @Tags Payroll
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/exports/status/{id} [get]
func (h *PayrollHandler) ExportStatus(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadExport godoc
// @Summary Download a finished export artifact
// @Tags Payroll
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /payroll/exports/download/{token} [get]
func (h *PayrollHandler) DownloadExport(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		h.logger.Warn("stat export artifact", zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "export artifact unavailable"))
		return
	}

	contentType := "text/csv"
	if download.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}
