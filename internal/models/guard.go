package models

import "time"

// Guard is master data owned by the personnel system; the roster reads it to
// validate assignment targets and to freeze display names onto assignments.
type Guard struct {
	ID        string    `db:"id" json:"id"`
	GuardCode string    `db:"guard_code" json:"guard_code"` // e.g. PG-0001
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FullName joins the name parts the way rosters display them.
func (g Guard) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

// Site is a client location master record, read-only for the roster.
type Site struct {
	ID        string    `db:"id" json:"id"`
	SiteCode  string    `db:"site_code" json:"site_code"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
