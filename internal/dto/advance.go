package dto

import "github.com/sentryops/guard-roster-api/internal/models"

// AdvanceItemRequest is one guard line on an advance document payload.
type AdvanceItemRequest struct {
	GuardID string  `json:"guard_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"gt=0"`
	Reason  string  `json:"reason" validate:"max=500"`
}

// CreateAdvanceRequest opens a new advance or cash payment document.
type CreateAdvanceRequest struct {
	DocNumber string               `json:"doc_number" validate:"required,max=50"`
	Date      string               `json:"date" validate:"required"`
	Type      models.AdvanceType   `json:"type" validate:"required,oneof=advance cash"`
	Status    models.AdvanceStatus `json:"status" validate:"omitempty,oneof=Draft Pending"`
	Items     []AdvanceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateAdvanceRequest carries free-form edits to an existing document. Nil
// fields are left untouched.
type UpdateAdvanceRequest struct {
	DocNumber *string              `json:"doc_number,omitempty" validate:"omitempty,max=50"`
	Date      *string              `json:"date,omitempty"`
	Type      *string              `json:"type,omitempty" validate:"omitempty,oneof=advance cash"`
	Items     []AdvanceItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// AdvanceListQuery filters the document list.
type AdvanceListQuery struct {
	Date string `form:"date"`
	Type string `form:"type"`
}

// AdvanceStatusRequest moves a document through its workflow.
type AdvanceStatusRequest struct {
	Status models.AdvanceStatus `json:"status" validate:"required,oneof=Draft Pending Approved Rejected"`
}

// AdvanceResponse decorates a document with its summed total.
type AdvanceResponse struct {
	models.DailyAdvance
	TotalAmount float64 `json:"total_amount"`
}
