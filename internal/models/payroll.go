package models

import "time"

// WorkDay is one day of a guard's work history, reconstructed from the frozen
// components of the committed assignment. Nothing here is re-resolved from the
// current catalog or rate configuration.
type WorkDay struct {
	Date                time.Time           `json:"date"`
	SiteID              string              `json:"site_id"`
	SiteName            string              `json:"site_name"`
	ShiftCode           string              `json:"shift_code"`
	ShiftClassification ShiftClassification `json:"shift"`
	Position            string              `json:"position"`
	DailyRate           float64             `json:"daily_rate"`
	DiligenceBonus      float64             `json:"diligence_bonus"`
	SevenDayBonus       float64             `json:"seven_day_bonus"`
	PointBonus          float64             `json:"point_bonus"`
	PositionAllowance   float64             `json:"position_allowance"`
	OtherAllowance      float64             `json:"other_allowance"`
	TotalIncome         float64             `json:"total_income"`
}

// WorkHistorySummary aggregates a guard's work days over a range.
type WorkHistorySummary struct {
	TotalWorkDays   int     `json:"total_work_days"`
	TotalIncome     float64 `json:"total_income"`
	DayShiftCount   int     `json:"day_shift_count"`
	NightShiftCount int     `json:"night_shift_count"`
}

// WorkHistory is the payroll view of one guard over a date range.
type WorkHistory struct {
	GuardID   string             `json:"guard_id"`
	GuardCode string             `json:"guard_code"`
	GuardName string             `json:"guard_name"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Summary   WorkHistorySummary `json:"summary"`
	WorkDays  []WorkDay          `json:"work_days"`
}

// SiteWorkTotal counts a guard's work days at one site.
type SiteWorkTotal struct {
	SiteID   string `db:"site_id" json:"site_id"`
	SiteName string `db:"site_name" json:"site_name"`
	WorkDays int    `db:"work_days" json:"work_days"`
}

// GuardSummary is the all-time roll-up for one guard, including the sites
// they worked most.
type GuardSummary struct {
	GuardID   string             `json:"guard_id"`
	GuardCode string             `json:"guard_code"`
	GuardName string             `json:"guard_name"`
	Summary   WorkHistorySummary `json:"summary"`
	TopSites  []SiteWorkTotal    `json:"top_sites"`
}
