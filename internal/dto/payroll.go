package dto

import "github.com/sentryops/guard-roster-api/internal/models"

// WorkHistoryQuery bounds a guard's payroll replay. Dates are inclusive.
type WorkHistoryQuery struct {
	StartDate string `form:"start_date" validate:"required"`
	EndDate   string `form:"end_date" validate:"required"`
}

// ExportRequest asks for an asynchronous payroll export.
type ExportRequest struct {
	GuardID   string              `json:"guard_id" validate:"required"`
	StartDate string              `json:"start_date" validate:"required"`
	EndDate   string              `json:"end_date" validate:"required"`
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges a queued export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, once finished, the signed
// download URL.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
