package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// HistoryRepository replays frozen assignment snapshots for payroll views.
// Nothing here joins back to positions or rate overrides: the stored
// components are the authority.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// HistoryRow is one committed assignment joined with its site name.
type HistoryRow struct {
	models.Assignment
	SiteName string `db:"site_name"`
}

// ListByGuardAndRange returns a guard's committed assignments inside the
// inclusive date range, oldest first.
func (r *HistoryRepository) ListByGuardAndRange(ctx context.Context, guardID string, start, end time.Time) ([]HistoryRow, error) {
	const query = `
SELECT a.id, a.schedule_id, a.schedule_date, a.site_id, st.name AS site_name, a.guard_id, a.guard_name,
	a.shift_code, a.shift_classification, a.position,
	a.daily_rate, a.diligence_bonus, a.seven_day_bonus, a.point_bonus, a.position_allowance, a.other_allowance,
	a.created_at
FROM assignments a
JOIN sites st ON st.id = a.site_id
WHERE a.guard_id = $1 AND a.schedule_date BETWEEN $2 AND $3
ORDER BY a.schedule_date ASC`
	var rows []HistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, guardID, start, end); err != nil {
		return nil, fmt.Errorf("list guard work days: %w", err)
	}
	return rows, nil
}

// GuardTotals aggregates a guard's entire committed history in one query.
func (r *HistoryRepository) GuardTotals(ctx context.Context, guardID string) (models.WorkHistorySummary, error) {
	const query = `
SELECT
	COUNT(*) AS total_work_days,
	COALESCE(SUM(daily_rate + diligence_bonus + seven_day_bonus + point_bonus + position_allowance + other_allowance), 0) AS total_income,
	COUNT(*) FILTER (WHERE shift_classification = 'day') AS day_shift_count,
	COUNT(*) FILTER (WHERE shift_classification = 'night') AS night_shift_count
FROM assignments
WHERE guard_id = $1`
	var row struct {
		TotalWorkDays   int     `db:"total_work_days"`
		TotalIncome     float64 `db:"total_income"`
		DayShiftCount   int     `db:"day_shift_count"`
		NightShiftCount int     `db:"night_shift_count"`
	}
	if err := r.db.GetContext(ctx, &row, query, guardID); err != nil {
		return models.WorkHistorySummary{}, fmt.Errorf("aggregate guard totals: %w", err)
	}
	return models.WorkHistorySummary{
		TotalWorkDays:   row.TotalWorkDays,
		TotalIncome:     row.TotalIncome,
		DayShiftCount:   row.DayShiftCount,
		NightShiftCount: row.NightShiftCount,
	}, nil
}

// TopSites returns the sites a guard worked most, capped at limit.
func (r *HistoryRepository) TopSites(ctx context.Context, guardID string, limit int) ([]models.SiteWorkTotal, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
SELECT a.site_id, st.name AS site_name, COUNT(*) AS work_days
FROM assignments a
JOIN sites st ON st.id = a.site_id
WHERE a.guard_id = $1
GROUP BY a.site_id, st.name
ORDER BY work_days DESC, site_name ASC
LIMIT $2`
	var totals []models.SiteWorkTotal
	if err := r.db.SelectContext(ctx, &totals, query, guardID, limit); err != nil {
		return nil, fmt.Errorf("aggregate guard site totals: %w", err)
	}
	return totals, nil
}
