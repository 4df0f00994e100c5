package models

import "time"

// ShiftClassification is a static day/night property of a shift slot. It is
// frozen onto assignments so payroll summaries never depend on later catalog
// edits.
type ShiftClassification string

const (
	ShiftDay   ShiftClassification = "day"
	ShiftNight ShiftClassification = "night"
)

// Valid reports whether the classification is one of the known values.
func (c ShiftClassification) Valid() bool {
	return c == ShiftDay || c == ShiftNight
}

// ShiftDefinition is a site-scoped, date-independent shift slot.
// NumberOfPeople is the headcount target; zero means unconstrained.
type ShiftDefinition struct {
	ID             string              `db:"id" json:"id"`
	SiteID         string              `db:"site_id" json:"site_id"`
	ShiftCode      string              `db:"shift_code" json:"shift_code"`
	Name           string              `db:"name" json:"name"`
	StartTime      string              `db:"start_time" json:"start_time"` // HH:MM
	EndTime        string              `db:"end_time" json:"end_time"`     // HH:MM
	NumberOfPeople int                 `db:"number_of_people" json:"number_of_people"`
	Classification ShiftClassification `db:"classification" json:"classification"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time          `db:"updated_at" json:"updated_at,omitempty"`
}
