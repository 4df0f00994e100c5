package models

import "time"

// SiteServiceRate overrides a position's pay components for one site.
// Each custom component is independently nullable: a nil value means "use the
// position default for this component", not zero.
type SiteServiceRate struct {
	ID                   string     `db:"id" json:"id"`
	SiteID               string     `db:"site_id" json:"site_id"`
	PositionID           string     `db:"position_id" json:"position_id"`
	UseDefaultRate       bool       `db:"use_default_rate" json:"use_default_rate"`
	CustomRate           *float64   `db:"custom_rate" json:"custom_rate,omitempty"`
	CustomDiligenceBonus *float64   `db:"custom_diligence_bonus" json:"custom_diligence_bonus,omitempty"`
	CustomSevenDayBonus  *float64   `db:"custom_seven_day_bonus" json:"custom_seven_day_bonus,omitempty"`
	CustomPointBonus     *float64   `db:"custom_point_bonus" json:"custom_point_bonus,omitempty"`
	Remarks              *string    `db:"remarks" json:"remarks,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// RateComponents is the effective daily pay for one (site, position) pair,
// produced by the rate resolver and frozen onto assignments at commit time.
type RateComponents struct {
	PositionID     string  `json:"position_id"`
	PositionCode   string  `json:"position_code"`
	PositionName   string  `json:"position_name"`
	DailyRate      float64 `json:"daily_rate"`
	DiligenceBonus float64 `json:"diligence_bonus"`
	SevenDayBonus  float64 `json:"seven_day_bonus"`
	PointBonus     float64 `json:"point_bonus"`
	Overridden     bool    `json:"overridden"`
}
