package models

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Schedule is the aggregate of all assignments for one (site, date) pair.
// A schedule row exists only while it holds at least one assignment; the
// repository deletes it when the last assignment is removed.
type Schedule struct {
	ID           string     `db:"id" json:"id"`
	SiteID       string     `db:"site_id" json:"site_id"`
	ScheduleDate time.Time  `db:"schedule_date" json:"schedule_date"`
	CreatedBy    *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Assignment records that one guard works one shift slot at one site on one
// date, with pay components frozen at commit time.
type Assignment struct {
	ID                  string              `db:"id" json:"id"`
	ScheduleID          string              `db:"schedule_id" json:"schedule_id"`
	ScheduleDate        time.Time           `db:"schedule_date" json:"schedule_date"`
	SiteID              string              `db:"site_id" json:"site_id"`
	GuardID             string              `db:"guard_id" json:"guard_id"`
	GuardName           string              `db:"guard_name" json:"guard_name"`
	ShiftCode           string              `db:"shift_code" json:"shift_code"`
	ShiftClassification ShiftClassification `db:"shift_classification" json:"shift_classification"`
	Position            string              `db:"position" json:"position"`
	DailyRate           float64             `db:"daily_rate" json:"daily_rate"`
	DiligenceBonus      float64             `db:"diligence_bonus" json:"diligence_bonus"`
	SevenDayBonus       float64             `db:"seven_day_bonus" json:"seven_day_bonus"`
	PointBonus          float64             `db:"point_bonus" json:"point_bonus"`
	PositionAllowance   float64             `db:"position_allowance" json:"position_allowance"`
	OtherAllowance      float64             `db:"other_allowance" json:"other_allowance"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
}

// TotalIncome is the gross daily income for the assignment: the frozen rate
// plus every bonus and allowance component. Each assignment is exactly one
// calendar day of work, so there is no working-days multiplier here.
func (a Assignment) TotalIncome() float64 {
	return a.DailyRate + a.DiligenceBonus + a.SevenDayBonus + a.PointBonus + a.PositionAllowance + a.OtherAllowance
}

// ScheduleDetail is a schedule with its assignments grouped by shift code.
type ScheduleDetail struct {
	Schedule
	SiteName string                  `json:"site_name"`
	Shifts   map[string][]Assignment `json:"shifts"`
}

// ScheduleIndexEntry is one cell of the calendar projection: headcounts for a
// site on a date.
type ScheduleIndexEntry struct {
	ScheduleID  string         `json:"schedule_id"`
	SiteID      string         `json:"site_id"`
	SiteName    string         `json:"site_name"`
	TotalGuards int            `json:"total_guards"`
	ByShift     map[string]int `json:"by_shift"`
}

// ScheduleIndex groups entries by date then site.
type ScheduleIndex map[string]map[string]ScheduleIndexEntry

// ScheduleListItem summarises one schedule row for list views.
type ScheduleListItem struct {
	ID           string    `db:"id" json:"id"`
	SiteID       string    `db:"site_id" json:"site_id"`
	SiteName     string    `db:"site_name" json:"site_name"`
	ScheduleDate time.Time `db:"schedule_date" json:"schedule_date"`
	TotalGuards  int       `db:"total_guards" json:"total_guards"`
}

// DoubleBookingError reports that a guard already holds an assignment on the
// date, somewhere across all sites.
type DoubleBookingError struct {
	GuardID  string `json:"guard_id"`
	Date     string `json:"date"`
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name,omitempty"`
	Shift    string `json:"shift_code,omitempty"`
}

func (e *DoubleBookingError) Error() string {
	return fmt.Sprintf("guard %s is already assigned on %s at site %s", e.GuardID, e.Date, e.SiteID)
}

// CapacityError reports a full shift slot.
type CapacityError struct {
	SiteID    string `json:"site_id"`
	Date      string `json:"date"`
	ShiftCode string `json:"shift_code"`
	Capacity  int    `json:"capacity"`
	Assigned  int    `json:"assigned"`
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("shift %s at site %s on %s is full (%d/%d)", e.ShiftCode, e.SiteID, e.Date, e.Assigned, e.Capacity)
}

// SlotLockedError reports that a shift definition cannot be removed while it
// still backs committed assignments on any date.
type SlotLockedError struct {
	SiteID    string `json:"site_id"`
	ShiftCode string `json:"shift_code"`
}

func (e *SlotLockedError) Error() string {
	return fmt.Sprintf("shift %s at site %s has committed assignments", e.ShiftCode, e.SiteID)
}

// ReplaceValidationError aggregates every violation found while dry-running a
// whole-day schedule replacement, so the caller can surface all conflicts at
// once instead of fixing them one at a time.
type ReplaceValidationError struct {
	SiteID string        `json:"site_id"`
	Date   string        `json:"date"`
	Errors []interface{} `json:"errors"`
}

func (e *ReplaceValidationError) Error() string {
	return fmt.Sprintf("schedule replacement for site %s on %s has %d conflicts", e.SiteID, e.Date, len(e.Errors))
}

// ConflictDetail extracts the structured payload from a domain conflict error,
// if the error (or anything it wraps) carries one.
func ConflictDetail(err error) interface{} {
	var dbl *DoubleBookingError
	if errors.As(err, &dbl) {
		return dbl
	}
	var cap *CapacityError
	if errors.As(err, &cap) {
		return cap
	}
	var locked *SlotLockedError
	if errors.As(err, &locked) {
		return locked
	}
	var replace *ReplaceValidationError
	if errors.As(err, &replace) {
		return replace
	}
	return nil
}
