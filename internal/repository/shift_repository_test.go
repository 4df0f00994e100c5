package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

func newShiftRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestShiftRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shift_definitions`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "shift_definitions_site_code_key"})

	err := repo.Create(context.Background(), &models.ShiftDefinition{
		SiteID:         "site-1",
		ShiftCode:      "DAY",
		Name:           "Day Shift",
		StartTime:      "08:00",
		EndTime:        "20:00",
		NumberOfPeople: 2,
		Classification: models.ShiftDay,
	})

	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrDuplicateSlot.Code, appErr.Code)
}

func TestShiftRepositoryDeleteLockedByAssignments(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND shift_code = $2`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "site-1", "DAY")
	var locked *models.SlotLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "DAY", locked.ShiftCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryDeleteUnreferenced(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND shift_code = $2`)).
		WithArgs("site-1", "DAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shift_definitions WHERE site_id = $1 AND shift_code = $2`)).
		WithArgs("site-1", "DAY").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "site-1", "DAY")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	err := repo.Update(context.Background(), "site-1", "DAY", UpdateShiftParams{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryUpdateMissingSlot(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	name := "Renamed"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE shift_definitions SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "site-1", "GHOST", UpdateShiftParams{Name: &name})
	require.True(t, errors.Is(err, errShiftNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
