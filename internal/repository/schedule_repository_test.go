package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func shiftRows(siteID, code string, capacity int, classification models.ShiftClassification) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "site_id", "shift_code", "name", "start_time", "end_time", "number_of_people", "classification", "created_at", "updated_at"}).
		AddRow("shift-1", siteID, code, "Day Shift", "08:00", "20:00", capacity, string(classification), time.Now(), nil)
}

func assignParamsFixture(date time.Time) AssignParams {
	return AssignParams{
		SiteID:    "site-1",
		Date:      date,
		ShiftCode: "DAY",
		GuardID:   "guard-1",
		GuardName: "Somchai Prasert",
		Position:  "Security Guard",
		Rate: models.RateComponents{
			PositionID:     "pos-1",
			DailyRate:      450,
			DiligenceBonus: 30,
			SevenDayBonus:  20,
			PointBonus:     10,
		},
	}
}

func TestScheduleRepositoryAssign(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions WHERE site_id = $1 AND shift_code = $2`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(shiftRows("site-1", "DAY", 2, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3`)).
		WithArgs("site-1", date, "DAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.guard_id = $1 AND a.schedule_date = $2`)).
		WithArgs("guard-1", date).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO schedules`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sched-1"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO assignments`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assignment, err := repo.Assign(context.Background(), assignParamsFixture(date))
	require.NoError(t, err)
	assert.Equal(t, "sched-1", assignment.ScheduleID)
	assert.Equal(t, models.ShiftDay, assignment.ShiftClassification)
	assert.Equal(t, 450.0, assignment.DailyRate)
	assert.Equal(t, 510.0, assignment.TotalIncome())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryAssignCapacityExceeded(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(shiftRows("site-1", "DAY", 2, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments`)).
		WithArgs("site-1", date, "DAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	_, err := repo.Assign(context.Background(), assignParamsFixture(date))
	var capErr *models.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Capacity)
	assert.Equal(t, 2, capErr.Assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryAssignUnlimitedCapacitySkipsCount(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(shiftRows("site-1", "DAY", 0, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.guard_id = $1 AND a.schedule_date = $2`)).
		WithArgs("guard-1", date).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO schedules`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sched-1"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO assignments`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Assign(context.Background(), assignParamsFixture(date))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryAssignDoubleBooked(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(shiftRows("site-1", "DAY", 2, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments`)).
		WithArgs("site-1", date, "DAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.guard_id = $1 AND a.schedule_date = $2`)).
		WithArgs("guard-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"site_id", "site_name", "shift_code"}).
			AddRow("site-2", "Riverside Tower", "NIGHT"))
	mock.ExpectRollback()

	_, err := repo.Assign(context.Background(), assignParamsFixture(date))
	var dbl *models.DoubleBookingError
	require.ErrorAs(t, err, &dbl)
	assert.Equal(t, "site-2", dbl.SiteID)
	assert.Equal(t, "Riverside Tower", dbl.SiteName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryAssignMissingShift(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions`)).
		WithArgs("site-1", "DAY").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Assign(context.Background(), assignParamsFixture(date))
	require.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUnassignReapsEmptySchedule(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assignmentRow := sqlmock.NewRows([]string{
		"id", "schedule_id", "schedule_date", "site_id", "guard_id", "guard_name",
		"shift_code", "shift_classification", "position",
		"daily_rate", "diligence_bonus", "seven_day_bonus", "point_bonus", "position_allowance", "other_allowance",
		"created_at",
	}).AddRow("assign-1", "sched-1", date, "site-1", "guard-1", "Somchai Prasert",
		"DAY", "day", "Security Guard", 450.0, 30.0, 20.0, 10.0, 0.0, 0.0, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM assignments
WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3 AND guard_id = $4`)).
		WithArgs("site-1", date, "DAY", "guard-1").
		WillReturnRows(assignmentRow)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM assignments WHERE id = $1`)).
		WithArgs("assign-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments WHERE schedule_id = $1`)).
		WithArgs("sched-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedules WHERE id = $1`)).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.Unassign(context.Background(), "site-1", date, "DAY", "guard-1")
	require.NoError(t, err)
	assert.Equal(t, "assign-1", removed.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryMoveKeepsFrozenComponents(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assignmentRow := sqlmock.NewRows([]string{
		"id", "schedule_id", "schedule_date", "site_id", "guard_id", "guard_name",
		"shift_code", "shift_classification", "position",
		"daily_rate", "diligence_bonus", "seven_day_bonus", "point_bonus", "position_allowance", "other_allowance",
		"created_at",
	}).AddRow("assign-1", "sched-1", date, "site-1", "guard-1", "Somchai Prasert",
		"DAY", "day", "Security Guard", 450.0, 30.0, 20.0, 10.0, 0.0, 0.0, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM assignments
WHERE site_id = $1 AND schedule_date = $2 AND shift_code = $3 AND guard_id = $4`)).
		WithArgs("site-1", date, "DAY", "guard-1").
		WillReturnRows(assignmentRow)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions`)).
		WithArgs("site-1", "NIGHT").
		WillReturnRows(shiftRows("site-1", "NIGHT", 3, models.ShiftNight))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments`)).
		WithArgs("site-1", date, "NIGHT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE assignments SET shift_code = $1, shift_classification = $2 WHERE id = $3`)).
		WithArgs("NIGHT", models.ShiftNight, "assign-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := repo.Move(context.Background(), "site-1", date, "guard-1", "DAY", "NIGHT")
	require.NoError(t, err)
	assert.Equal(t, "NIGHT", moved.ShiftCode)
	assert.Equal(t, models.ShiftNight, moved.ShiftClassification)
	assert.Equal(t, 450.0, moved.DailyRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceRejectsAllViolationsAtOnce(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions WHERE site_id = $1`)).
		WithArgs("site-1").
		WillReturnRows(shiftRows("site-1", "DAY", 1, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.schedule_date = $1 AND a.guard_id = ANY($2) AND a.site_id <> $3`)).
		WillReturnRows(sqlmock.NewRows([]string{"guard_id", "site_id", "site_name", "shift_code"}))
	mock.ExpectRollback()

	params := ReplaceParams{
		SiteID: "site-1",
		Date:   date,
		Shifts: map[string][]ReplaceEntry{
			"DAY": {
				{GuardID: "guard-1", GuardName: "Somchai Prasert", Position: "Security Guard"},
				{GuardID: "guard-1", GuardName: "Somchai Prasert", Position: "Security Guard"},
			},
			"GHOST": {
				{GuardID: "guard-2", GuardName: "Anan Wong", Position: "Security Guard"},
			},
		},
	}

	_, _, err := repo.Replace(context.Background(), params)
	var replaceErr *models.ReplaceValidationError
	require.ErrorAs(t, err, &replaceErr)
	// capacity overflow on DAY, duplicated guard, undefined GHOST slot,
	// collected in one pass
	assert.Len(t, replaceErr.Errors, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceClearsDay(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assignmentRow := sqlmock.NewRows([]string{
		"id", "schedule_id", "schedule_date", "site_id", "guard_id", "guard_name",
		"shift_code", "shift_classification", "position",
		"daily_rate", "diligence_bonus", "seven_day_bonus", "point_bonus", "position_allowance", "other_allowance",
		"created_at",
	}).AddRow("assign-1", "sched-1", date, "site-1", "guard-1", "Somchai Prasert",
		"DAY", "day", "Security Guard", 450.0, 30.0, 20.0, 10.0, 0.0, 0.0, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(dateLockKey("site-1", date)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_definitions WHERE site_id = $1`)).
		WithArgs("site-1").
		WillReturnRows(shiftRows("site-1", "DAY", 1, models.ShiftDay))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM assignments
WHERE site_id = $1 AND schedule_date = $2`)).
		WithArgs("site-1", date).
		WillReturnRows(assignmentRow)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM assignments WHERE site_id = $1 AND schedule_date = $2`)).
		WithArgs("site-1", date).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedules WHERE site_id = $1 AND schedule_date = $2`)).
		WithArgs("site-1", date).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	before, after, err := repo.Replace(context.Background(), ReplaceParams{
		SiteID: "site-1",
		Date:   date,
		Shifts: map[string][]ReplaceEntry{},
	})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Empty(t, after)
	assert.NoError(t, mock.ExpectationsWereMet())
}
