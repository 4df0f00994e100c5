package models

import "time"

// Position is the service master record carrying default daily pay components.
// A committed assignment freezes resolved values; later edits here only affect
// future resolutions.
type Position struct {
	ID             string     `db:"id" json:"id"`
	Code           string     `db:"code" json:"code"`
	Name           string     `db:"name" json:"name"`
	DailyRate      float64    `db:"daily_rate" json:"daily_rate"`
	DiligenceBonus float64    `db:"diligence_bonus" json:"diligence_bonus"`
	SevenDayBonus  float64    `db:"seven_day_bonus" json:"seven_day_bonus"`
	PointBonus     float64    `db:"point_bonus" json:"point_bonus"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
