package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// ScheduleRepository owns the assignment ledger: every mutation runs inside a
// single transaction holding an advisory lock on the (site, date) pair, so
// capacity checks and the lazy schedule lifecycle cannot interleave. The
// unique index on (guard_id, schedule_date) backs the no-double-booking
// invariant against cross-site races the lock does not cover.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const assignmentColumns = `id, schedule_id, schedule_date, site_id, guard_id, guard_name, shift_code, shift_classification, position, daily_rate, diligence_bonus, seven_day_bonus, point_bonus, position_allowance, other_allowance, created_at`

// dateLockKey derives the advisory lock key for a (site, date) pair.
func dateLockKey(siteID string, date time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(siteID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(date.Format(models.DateFormat)))
	return int64(h.Sum64())
}

func acquireDateLock(ctx context.Context, tx *sqlx.Tx, siteID string, date time.Time) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, dateLockKey(siteID, date)); err != nil {
		return fmt.Errorf("acquire schedule lock: %w", err)
	}
	return nil
}

// AssignParams carries a fully resolved assignment: the caller has already
// validated the guard and resolved the pay components to freeze.
type AssignParams struct {
	SiteID            string
	Date              time.Time
	ShiftCode         string
	GuardID           string
	GuardName         string
	Position          string
	Rate              models.RateComponents
	PositionAllowance float64
	OtherAllowance    float64
	ActorID           *string
}

// Assign commits one guard into one shift slot for one date.
func (r *ScheduleRepository) Assign(ctx context.Context, params AssignParams) (assignment *models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = acquireDateLock(ctx, tx, params.SiteID, params.Date); err != nil {
		return nil, err
	}

	shift, err := r.lockedShift(ctx, tx, params.SiteID, params.ShiftCode)
	if err != nil {
		return nil, err
	}

	if err = r.checkCapacity(ctx, tx, shift, params.Date, 1); err != nil {
		return nil, err
	}
	if err = r.checkGuardFree(ctx, tx, params.GuardID, params.Date); err != nil {
		return nil, err
	}

	scheduleID, err := r.upsertSchedule(ctx, tx, params.SiteID, params.Date, params.ActorID)
	if err != nil {
		return nil, err
	}

	assignment = &models.Assignment{
		ID:                  uuid.NewString(),
		ScheduleID:          scheduleID,
		ScheduleDate:        params.Date,
		SiteID:              params.SiteID,
		GuardID:             params.GuardID,
		GuardName:           params.GuardName,
		ShiftCode:           params.ShiftCode,
		ShiftClassification: shift.Classification,
		Position:            params.Position,
		DailyRate:           params.Rate.DailyRate,
		DiligenceBonus:      params.Rate.DiligenceBonus,
		SevenDayBonus:       params.Rate.SevenDayBonus,
		PointBonus:          params.Rate.PointBonus,
		PositionAllowance:   params.PositionAllowance,
		OtherAllowance:      params.OtherAllowance,
		CreatedAt:           time.Now().UTC(),
	}
	if err = r.insertAssignment(ctx, tx, assignment); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign: %w", err)
	}
	return assignment, nil
}

// Unassign removes a guard from a shift slot and returns the removed row.
// Deleting the last assignment of the day also removes the schedule row.
func (r *ScheduleRepository) Unassign(ctx context.Context, siteID string, date time.Time, shiftCode, guardID string) (removed *models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unassign transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = acquireDateLock(ctx, tx, siteID, date); err != nil {
		return nil, err
	}

	var assignment models.Assignment
	const selectQuery = `SELECT ` + assignmentColumns + ` FROM assignments
WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3 AND guard_id = $4`
	if err = tx.GetContext(ctx, &assignment, selectQuery, siteID, date, shiftCode, guardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, assignment.ID); err != nil {
		return nil, fmt.Errorf("delete assignment: %w", err)
	}

	if err = r.reapSchedule(ctx, tx, assignment.ScheduleID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unassign: %w", err)
	}
	return &assignment, nil
}

// Move shifts a guard between two slots of the same site and date. The frozen
// pay components travel untouched; only the slot and its classification
// change. Same date and site means the move can never trip the guard's own
// double-booking constraint.
func (r *ScheduleRepository) Move(ctx context.Context, siteID string, date time.Time, guardID, fromShift, toShift string) (moved *models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin move transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = acquireDateLock(ctx, tx, siteID, date); err != nil {
		return nil, err
	}

	var assignment models.Assignment
	const selectQuery = `SELECT ` + assignmentColumns + ` FROM assignments
WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3 AND guard_id = $4`
	if err = tx.GetContext(ctx, &assignment, selectQuery, siteID, date, fromShift, guardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}

	target, err := r.lockedShift(ctx, tx, siteID, toShift)
	if err != nil {
		return nil, err
	}
	if err = r.checkCapacity(ctx, tx, target, date, 1); err != nil {
		return nil, err
	}

	const updateQuery = `UPDATE assignments SET shift_code = $1, shift_classification = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, target.ShiftCode, target.Classification, assignment.ID); err != nil {
		return nil, fmt.Errorf("move assignment: %w", err)
	}
	assignment.ShiftCode = target.ShiftCode
	assignment.ShiftClassification = target.Classification

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}
	return &assignment, nil
}

// ReplaceEntry is one resolved assignment in a whole-day replacement.
type ReplaceEntry struct {
	GuardID           string
	GuardName         string
	Position          string
	Rate              models.RateComponents
	PositionAllowance float64
	OtherAllowance    float64
}

// ReplaceParams describes a whole-day schedule replacement for one site.
type ReplaceParams struct {
	SiteID  string
	Date    time.Time
	Shifts  map[string][]ReplaceEntry
	ActorID *string
}

// Replace atomically swaps the full day's assignments for the site. The new
// state is validated in full before anything is written: the caller receives
// either the committed (before, after) pair or a ReplaceValidationError
// aggregating every violation. An empty Shifts map clears the day.
func (r *ScheduleRepository) Replace(ctx context.Context, params ReplaceParams) (before, after []models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin replace transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = acquireDateLock(ctx, tx, params.SiteID, params.Date); err != nil {
		return nil, nil, err
	}

	shifts, err := r.siteShifts(ctx, tx, params.SiteID)
	if err != nil {
		return nil, nil, err
	}

	if err = r.validateReplacement(ctx, tx, params, shifts); err != nil {
		return nil, nil, err
	}

	before, err = r.assignmentsForUpdate(ctx, tx, params.SiteID, params.Date)
	if err != nil {
		return nil, nil, err
	}

	const clearQuery = `DELETE FROM assignments WHERE site_id = $1 AND schedule_date = $2`
	if _, err = tx.ExecContext(ctx, clearQuery, params.SiteID, params.Date); err != nil {
		return nil, nil, fmt.Errorf("clear schedule: %w", err)
	}

	total := 0
	for _, entries := range params.Shifts {
		total += len(entries)
	}
	if total == 0 {
		const dropQuery = `DELETE FROM schedules WHERE site_id = $1 AND schedule_date = $2`
		if _, err = tx.ExecContext(ctx, dropQuery, params.SiteID, params.Date); err != nil {
			return nil, nil, fmt.Errorf("drop empty schedule: %w", err)
		}
		if err = tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("commit replace: %w", err)
		}
		return before, nil, nil
	}

	scheduleID, err := r.upsertSchedule(ctx, tx, params.SiteID, params.Date, params.ActorID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	after = make([]models.Assignment, 0, total)
	for shiftCode, entries := range params.Shifts {
		shift := shifts[shiftCode]
		for _, entry := range entries {
			assignment := models.Assignment{
				ID:                  uuid.NewString(),
				ScheduleID:          scheduleID,
				ScheduleDate:        params.Date,
				SiteID:              params.SiteID,
				GuardID:             entry.GuardID,
				GuardName:           entry.GuardName,
				ShiftCode:           shiftCode,
				ShiftClassification: shift.Classification,
				Position:            entry.Position,
				DailyRate:           entry.Rate.DailyRate,
				DiligenceBonus:      entry.Rate.DiligenceBonus,
				SevenDayBonus:       entry.Rate.SevenDayBonus,
				PointBonus:          entry.Rate.PointBonus,
				PositionAllowance:   entry.PositionAllowance,
				OtherAllowance:      entry.OtherAllowance,
				CreatedAt:           now,
			}
			if err = r.insertAssignment(ctx, tx, &assignment); err != nil {
				return nil, nil, err
			}
			after = append(after, assignment)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit replace: %w", err)
	}
	return before, after, nil
}

func (r *ScheduleRepository) validateReplacement(ctx context.Context, tx *sqlx.Tx, params ReplaceParams, shifts map[string]models.ShiftDefinition) error {
	date := params.Date.Format(models.DateFormat)
	violations := make([]interface{}, 0)

	guardIDs := make([]string, 0)
	seen := make(map[string]string) // guardID -> first shift code
	for shiftCode, entries := range params.Shifts {
		shift, ok := shifts[shiftCode]
		if !ok {
			violations = append(violations, map[string]string{
				"site_id":    params.SiteID,
				"shift_code": shiftCode,
				"reason":     "shift is not defined for this site",
			})
			continue
		}
		if shift.NumberOfPeople > 0 && len(entries) > shift.NumberOfPeople {
			violations = append(violations, &models.CapacityError{
				SiteID:    params.SiteID,
				Date:      date,
				ShiftCode: shiftCode,
				Capacity:  shift.NumberOfPeople,
				Assigned:  len(entries),
			})
		}
		for _, entry := range entries {
			if _, dup := seen[entry.GuardID]; dup {
				violations = append(violations, &models.DoubleBookingError{
					GuardID: entry.GuardID,
					Date:    date,
					SiteID:  params.SiteID,
					Shift:   shiftCode,
				})
				continue
			}
			seen[entry.GuardID] = shiftCode
			guardIDs = append(guardIDs, entry.GuardID)
		}
	}

	if len(guardIDs) > 0 {
		const conflictQuery = `
SELECT a.guard_id, a.site_id, st.name AS site_name, a.shift_code
FROM assignments a
JOIN sites st ON st.id = a.site_id
WHERE a.schedule_date = $1 AND a.guard_id = ANY($2) AND a.site_id <> $3`
		var conflicts []struct {
			GuardID   string `db:"guard_id"`
			SiteID    string `db:"site_id"`
			SiteName  string `db:"site_name"`
			ShiftCode string `db:"shift_code"`
		}
		if err := tx.SelectContext(ctx, &conflicts, conflictQuery, params.Date, pq.Array(guardIDs), params.SiteID); err != nil {
			return fmt.Errorf("check cross-site conflicts: %w", err)
		}
		for _, c := range conflicts {
			violations = append(violations, &models.DoubleBookingError{
				GuardID:  c.GuardID,
				Date:     date,
				SiteID:   c.SiteID,
				SiteName: c.SiteName,
				Shift:    c.ShiftCode,
			})
		}
	}

	if len(violations) > 0 {
		return &models.ReplaceValidationError{SiteID: params.SiteID, Date: date, Errors: violations}
	}
	return nil
}

// ListAssignments returns the committed assignments for one site and date.
func (r *ScheduleRepository) ListAssignments(ctx context.Context, siteID string, date time.Time) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments
WHERE site_id = $1 AND schedule_date = $2 ORDER BY shift_code ASC, guard_name ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, siteID, date); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ScheduleIndexRow is one (site, date, shift) headcount slice of the calendar
// projection.
type ScheduleIndexRow struct {
	ScheduleID   string    `db:"schedule_id"`
	SiteID       string    `db:"site_id"`
	SiteName     string    `db:"site_name"`
	ScheduleDate time.Time `db:"schedule_date"`
	ShiftCode    string    `db:"shift_code"`
	GuardCount   int       `db:"guard_count"`
}

// Index returns per-shift headcounts for every schedule in the range.
func (r *ScheduleRepository) Index(ctx context.Context, start, end time.Time) ([]ScheduleIndexRow, error) {
	const query = `
SELECT
	s.id AS schedule_id,
	s.site_id AS site_id,
	st.name AS site_name,
	s.schedule_date AS schedule_date,
	a.shift_code AS shift_code,
	COUNT(a.id) AS guard_count
FROM schedules s
JOIN sites st ON st.id = s.site_id
JOIN assignments a ON a.schedule_id = s.id
WHERE s.schedule_date BETWEEN $1 AND $2
GROUP BY s.id, s.site_id, st.name, s.schedule_date, a.shift_code
ORDER BY s.schedule_date ASC, st.name ASC, a.shift_code ASC`
	var rows []ScheduleIndexRow
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("build schedule index: %w", err)
	}
	return rows, nil
}

// ScheduleListFilter narrows the schedule list projection.
type ScheduleListFilter struct {
	SiteID string
	Start  *time.Time
	End    *time.Time
	Limit  int
	Offset int
}

// List returns schedule summaries newest first.
func (r *ScheduleRepository) List(ctx context.Context, filter ScheduleListFilter) ([]models.ScheduleListItem, int, error) {
	where := strings.Builder{}
	where.WriteString("WHERE 1=1")
	args := []interface{}{}
	if filter.SiteID != "" {
		args = append(args, filter.SiteID)
		fmt.Fprintf(&where, " AND s.site_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		fmt.Fprintf(&where, " AND s.schedule_date >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		fmt.Fprintf(&where, " AND s.schedule_date <= $%d", len(args))
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules s %s", where.String())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	listQuery := fmt.Sprintf(`
SELECT
	s.id AS id,
	s.site_id AS site_id,
	st.name AS site_name,
	s.schedule_date AS schedule_date,
	COUNT(a.id) AS total_guards
FROM schedules s
JOIN sites st ON st.id = s.site_id
LEFT JOIN assignments a ON a.schedule_id = s.id
%s
GROUP BY s.id, s.site_id, st.name, s.schedule_date
ORDER BY s.schedule_date DESC, st.name ASC
LIMIT $%d OFFSET $%d`, where.String(), limitPos, offsetPos)

	var items []models.ScheduleListItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	return items, total, nil
}

func (r *ScheduleRepository) lockedShift(ctx context.Context, tx *sqlx.Tx, siteID, shiftCode string) (*models.ShiftDefinition, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shift_definitions WHERE site_id = $1 AND shift_code = $2`
	var shift models.ShiftDefinition
	if err := tx.GetContext(ctx, &shift, query, siteID, shiftCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get shift definition: %w", err)
	}
	return &shift, nil
}

func (r *ScheduleRepository) checkCapacity(ctx context.Context, tx *sqlx.Tx, shift *models.ShiftDefinition, date time.Time, adding int) error {
	if shift.NumberOfPeople <= 0 {
		return nil
	}
	var assigned int
	const query = `SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3`
	if err := tx.GetContext(ctx, &assigned, query, shift.SiteID, date, shift.ShiftCode); err != nil {
		return fmt.Errorf("count shift assignments: %w", err)
	}
	if assigned+adding > shift.NumberOfPeople {
		return &models.CapacityError{
			SiteID:    shift.SiteID,
			Date:      date.Format(models.DateFormat),
			ShiftCode: shift.ShiftCode,
			Capacity:  shift.NumberOfPeople,
			Assigned:  assigned,
		}
	}
	return nil
}

func (r *ScheduleRepository) checkGuardFree(ctx context.Context, tx *sqlx.Tx, guardID string, date time.Time) error {
	const query = `
SELECT a.site_id, st.name AS site_name, a.shift_code
FROM assignments a
JOIN sites st ON st.id = a.site_id
WHERE a.guard_id = $1 AND a.schedule_date = $2`
	var existing struct {
		SiteID    string `db:"site_id"`
		SiteName  string `db:"site_name"`
		ShiftCode string `db:"shift_code"`
	}
	err := tx.GetContext(ctx, &existing, query, guardID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check guard availability: %w", err)
	}
	return &models.DoubleBookingError{
		GuardID:  guardID,
		Date:     date.Format(models.DateFormat),
		SiteID:   existing.SiteID,
		SiteName: existing.SiteName,
		Shift:    existing.ShiftCode,
	}
}

func (r *ScheduleRepository) upsertSchedule(ctx context.Context, tx *sqlx.Tx, siteID string, date time.Time, actorID *string) (string, error) {
	const query = `
INSERT INTO schedules (id, site_id, schedule_date, created_by, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ON CONSTRAINT schedules_site_date_key
DO UPDATE SET updated_at = EXCLUDED.created_at
RETURNING id`
	var id string
	if err := tx.GetContext(ctx, &id, query, uuid.NewString(), siteID, date, actorID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("upsert schedule: %w", err)
	}
	return id, nil
}

func (r *ScheduleRepository) insertAssignment(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error {
	const query = `
INSERT INTO assignments (id, schedule_id, schedule_date, site_id, guard_id, guard_name, shift_code, shift_classification, position, daily_rate, diligence_bonus, seven_day_bonus, point_bonus, position_allowance, other_allowance, created_at)
VALUES (:id, :schedule_id, :schedule_date, :site_id, :guard_id, :guard_name, :shift_code, :shift_classification, :position, :daily_rate, :diligence_bonus, :seven_day_bonus, :point_bonus, :position_allowance, :other_allowance, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, assignment); err != nil {
		if isUniqueViolation(err, "assignments_guard_date_key") {
			return &models.DoubleBookingError{
				GuardID: assignment.GuardID,
				Date:    assignment.ScheduleDate.Format(models.DateFormat),
				SiteID:  assignment.SiteID,
			}
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) reapSchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error {
	var remaining int
	if err := tx.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM assignments WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("count remaining assignments: %w", err)
	}
	if remaining > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, scheduleID); err != nil {
		return fmt.Errorf("delete empty schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) assignmentsForUpdate(ctx context.Context, tx *sqlx.Tx, siteID string, date time.Time) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments
WHERE site_id = $1 AND schedule_date = $2 ORDER BY shift_code ASC, guard_name ASC`
	var assignments []models.Assignment
	if err := tx.SelectContext(ctx, &assignments, query, siteID, date); err != nil {
		return nil, fmt.Errorf("snapshot assignments: %w", err)
	}
	return assignments, nil
}

func (r *ScheduleRepository) siteShifts(ctx context.Context, tx *sqlx.Tx, siteID string) (map[string]models.ShiftDefinition, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shift_definitions WHERE site_id = $1`
	var shifts []models.ShiftDefinition
	if err := tx.SelectContext(ctx, &shifts, query, siteID); err != nil {
		return nil, fmt.Errorf("load site shifts: %w", err)
	}
	out := make(map[string]models.ShiftDefinition, len(shifts))
	for _, shift := range shifts {
		out[shift.ShiftCode] = shift
	}
	return out, nil
}
