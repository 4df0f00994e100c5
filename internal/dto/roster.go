package dto

// AssignRequest commits one guard to a shift slot on a date.
type AssignRequest struct {
	GuardID           string  `json:"guard_id" validate:"required"`
	SiteID            string  `json:"site_id" validate:"required"`
	Date              string  `json:"date" validate:"required"` // YYYY-MM-DD
	ShiftCode         string  `json:"shift_code" validate:"required"`
	PositionID        string  `json:"position_id" validate:"required"`
	PositionAllowance float64 `json:"position_allowance" validate:"gte=0"`
	OtherAllowance    float64 `json:"other_allowance" validate:"gte=0"`
}

// UnassignRequest removes a committed assignment.
type UnassignRequest struct {
	GuardID   string `json:"guard_id" validate:"required"`
	SiteID    string `json:"site_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	ShiftCode string `json:"shift_code" validate:"required"`
}

// MoveRequest shifts a guard between two slots within the same (site, date).
type MoveRequest struct {
	GuardID       string `json:"guard_id" validate:"required"`
	SiteID        string `json:"site_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	FromShiftCode string `json:"from_shift_code" validate:"required"`
	ToShiftCode   string `json:"to_shift_code" validate:"required,nefield=FromShiftCode"`
}

// ReplaceEntry is one proposed assignment inside a whole-day replacement.
type ReplaceEntry struct {
	GuardID           string  `json:"guard_id" validate:"required"`
	PositionID        string  `json:"position_id" validate:"required"`
	PositionAllowance float64 `json:"position_allowance" validate:"gte=0"`
	OtherAllowance    float64 `json:"other_allowance" validate:"gte=0"`
}

// ReplaceScheduleRequest is the bulk upsert of everything the editing UI shows
// for one (site, date): shift code -> proposed guards, all-or-nothing.
type ReplaceScheduleRequest struct {
	SiteID string                    `json:"site_id" validate:"required"`
	Date   string                    `json:"date" validate:"required"`
	Shifts map[string][]ReplaceEntry `json:"shifts" validate:"required"`
}

// ScheduleIndexQuery bounds the calendar projection.
type ScheduleIndexQuery struct {
	StartDate string `form:"start_date" validate:"required"`
	EndDate   string `form:"end_date" validate:"required"`
}

// ScheduleListQuery filters the schedule list projection.
type ScheduleListQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SiteID    string `form:"site_id"`
	Page      int    `form:"page" validate:"omitempty,gte=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}
