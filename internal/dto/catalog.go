package dto

import "github.com/sentryops/guard-roster-api/internal/models"

// CreateSlotRequest describes a new shift slot for a site.
type CreateSlotRequest struct {
	ShiftCode      string `json:"shift_code" validate:"required,max=50"`
	Name           string `json:"name" validate:"required,max=200"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	NumberOfPeople int    `json:"number_of_people" validate:"gte=0"`
	Classification string `json:"classification" validate:"omitempty,oneof=day night"`
}

// UpdateSlotRequest carries free-form edits to an existing slot. Nil fields
// are left untouched.
type UpdateSlotRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=200"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	NumberOfPeople *int    `json:"number_of_people,omitempty" validate:"omitempty,gte=0"`
	Classification *string `json:"classification,omitempty" validate:"omitempty,oneof=day night"`
}

// SlotResponse decorates a shift definition with its lock status.
type SlotResponse struct {
	models.ShiftDefinition
	Locked bool `json:"locked"`
}
