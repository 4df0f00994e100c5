package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

func newAdvanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestAdvanceRepositoryCreateDuplicateDocNumber(t *testing.T) {
	db, mock, cleanup := newAdvanceRepoMock(t)
	defer cleanup()
	repo := NewAdvanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO daily_advances`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "daily_advances_doc_number_key"})

	err := repo.Create(context.Background(), &models.DailyAdvance{
		DocNumber: "ADV-2026-001",
		Date:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Type:      models.AdvanceTypeAdvance,
		Status:    models.AdvanceStatusDraft,
		Items:     models.AdvanceItems{{GuardID: "guard-1", Amount: 500}},
		CreatedBy: "user-1",
	})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDuplicateDoc.Code, appErr.Code)
}

func TestAdvanceRepositoryListFiltersByDateAndType(t *testing.T) {
	db, mock, cleanup := newAdvanceRepoMock(t)
	defer cleanup()
	repo := NewAdvanceRepository(db)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "doc_number", "advance_date", "advance_type", "status",
		"items", "created_by", "approved_by", "created_at", "updated_at",
	}).AddRow("adv-1", "ADV-2026-001", date, "advance", "Draft",
		[]byte(`[{"guard_id":"guard-1","amount":500,"reason":""}]`), "user-1", nil, time.Now(), nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM daily_advances WHERE advance_date = $1 AND advance_type = $2 AND created_by = $3 ORDER BY created_at DESC`)).
		WithArgs(date, "advance", "user-1").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), AdvanceListFilter{
		Date:      &date,
		Type:      models.AdvanceTypeAdvance,
		CreatedBy: "user-1",
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ADV-2026-001", docs[0].DocNumber)
	require.Len(t, docs[0].Items, 1)
	assert.Equal(t, 500.0, docs[0].Items[0].Amount)
}

func TestAdvanceRepositoryUpdateStatusStampsApprover(t *testing.T) {
	db, mock, cleanup := newAdvanceRepoMock(t)
	defer cleanup()
	repo := NewAdvanceRepository(db)

	approver := "admin-1"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE daily_advances SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`)).
		WithArgs("Approved", "admin-1", sqlmock.AnyArg(), "adv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "adv-1", models.AdvanceStatusApproved, &approver)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
