package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
)

func newExportJobRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestExportJobRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO export_jobs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.ExportJob{
		Params: models.ExportJobParams{
			GuardID:   "guard-1",
			StartDate: "2026-03-01",
			EndDate:   "2026-03-31",
			Format:    models.ExportFormatCSV,
		},
		CreatedBy: "user-1",
	}
	err := repo.Create(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestExportJobRepositoryUpdateBuildsPartialSet(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	status := models.ExportStatusFinished
	url := "/exports/job-1"
	finished := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE export_jobs SET status = $1, result_url = $2, finished_at = $3 WHERE id = $4`)).
		WithArgs(string(status), url, finished, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{
		Status:     &status,
		ResultURL:  &url,
		FinishedAt: &finished,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	rows := sqlmock.NewRows([]string{"id", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", []byte(`{"guardId":"guard-1","startDate":"2026-03-01","endDate":"2026-03-31","format":"csv"}`),
			"QUEUED", 0, nil, "user-1", time.Now(), nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM export_jobs WHERE status = 'QUEUED'`)).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "guard-1", jobs[0].Params.GuardID)
	assert.Equal(t, models.ExportFormatCSV, jobs[0].Params.Format)
}
