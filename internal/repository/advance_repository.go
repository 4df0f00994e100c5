package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

// AdvanceRepository persists daily advance documents.
type AdvanceRepository struct {
	db *sqlx.DB
}

// NewAdvanceRepository constructs the repository.
func NewAdvanceRepository(db *sqlx.DB) *AdvanceRepository {
	return &AdvanceRepository{db: db}
}

const advanceColumns = `id, doc_number, advance_date, advance_type, status, items, created_by, approved_by, created_at, updated_at`

// Create inserts a new advance document. A duplicate document number is
// reported through the unique constraint.
func (r *AdvanceRepository) Create(ctx context.Context, doc *models.DailyAdvance) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO daily_advances (id, doc_number, advance_date, advance_type, status, items, created_by, created_at)
VALUES (:id, :doc_number, :advance_date, :advance_type, :status, :items, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		if isUniqueViolation(err, "daily_advances_doc_number_key") {
			return appErrors.Clone(appErrors.ErrDuplicateDoc, fmt.Sprintf("document %s already exists", doc.DocNumber))
		}
		return fmt.Errorf("create daily advance: %w", err)
	}
	return nil
}

// GetByID returns a document by its identifier.
func (r *AdvanceRepository) GetByID(ctx context.Context, id string) (*models.DailyAdvance, error) {
	const query = `SELECT ` + advanceColumns + ` FROM daily_advances WHERE id = $1`
	var doc models.DailyAdvance
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, fmt.Errorf("get daily advance: %w", err)
	}
	return &doc, nil
}

// AdvanceListFilter narrows the document list. Zero values mean no filter.
type AdvanceListFilter struct {
	Date      *time.Time
	Type      models.AdvanceType
	CreatedBy string
}

// List returns documents newest first, honouring the filter.
func (r *AdvanceRepository) List(ctx context.Context, filter AdvanceListFilter) ([]models.DailyAdvance, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	argPos := 1

	if filter.Date != nil {
		where = append(where, fmt.Sprintf("advance_date = $%d", argPos))
		args = append(args, *filter.Date)
		argPos++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("advance_type = $%d", argPos))
		args = append(args, filter.Type)
		argPos++
	}
	if filter.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", argPos))
		args = append(args, filter.CreatedBy)
		argPos++
	}

	query := `SELECT ` + advanceColumns + ` FROM daily_advances`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var docs []models.DailyAdvance
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list daily advances: %w", err)
	}
	return docs, nil
}

// UpdateAdvanceParams defines the mutable document fields.
type UpdateAdvanceParams struct {
	DocNumber *string
	Date      *time.Time
	Type      *models.AdvanceType
	Items     models.AdvanceItems
}

// Update persists the provided changes for a document.
func (r *AdvanceRepository) Update(ctx context.Context, id string, params UpdateAdvanceParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.DocNumber != nil {
		set = append(set, fmt.Sprintf("doc_number = $%d", argPos))
		args = append(args, *params.DocNumber)
		argPos++
	}
	if params.Date != nil {
		set = append(set, fmt.Sprintf("advance_date = $%d", argPos))
		args = append(args, *params.Date)
		argPos++
	}
	if params.Type != nil {
		set = append(set, fmt.Sprintf("advance_type = $%d", argPos))
		args = append(args, *params.Type)
		argPos++
	}
	if params.Items != nil {
		set = append(set, fmt.Sprintf("items = $%d", argPos))
		args = append(args, params.Items)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	set = append(set, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	query := fmt.Sprintf("UPDATE daily_advances SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "daily_advances_doc_number_key") {
			return appErrors.Clone(appErrors.ErrDuplicateDoc, fmt.Sprintf("document %s already exists", *params.DocNumber))
		}
		return fmt.Errorf("update daily advance: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves a document through its workflow, stamping the approver
// when a verdict is recorded.
func (r *AdvanceRepository) UpdateStatus(ctx context.Context, id string, status models.AdvanceStatus, approvedBy *string) error {
	const query = `UPDATE daily_advances SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, approvedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update daily advance status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document.
func (r *AdvanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM daily_advances WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete daily advance: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
