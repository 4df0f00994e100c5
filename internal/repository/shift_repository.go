package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// ShiftRepository persists the site-scoped shift catalog.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs the repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

const shiftColumns = `id, site_id, shift_code, name, start_time, end_time, number_of_people, classification, created_at, updated_at`

// ListBySite returns every shift definition for the site ordered by code.
func (r *ShiftRepository) ListBySite(ctx context.Context, siteID string) ([]models.ShiftDefinition, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shift_definitions WHERE site_id = $1 ORDER BY shift_code ASC`
	var shifts []models.ShiftDefinition
	if err := r.db.SelectContext(ctx, &shifts, query, siteID); err != nil {
		return nil, fmt.Errorf("list shift definitions: %w", err)
	}
	return shifts, nil
}

// GetBySiteAndCode returns a single shift definition.
func (r *ShiftRepository) GetBySiteAndCode(ctx context.Context, siteID, shiftCode string) (*models.ShiftDefinition, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shift_definitions WHERE site_id = $1 AND shift_code = $2`
	var shift models.ShiftDefinition
	if err := r.db.GetContext(ctx, &shift, query, siteID, shiftCode); err != nil {
		return nil, fmt.Errorf("get shift definition: %w", err)
	}
	return &shift, nil
}

// Create inserts a new shift definition. A duplicate (site, code) pair is
// reported through the unique constraint.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.ShiftDefinition) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO shift_definitions (id, site_id, shift_code, name, start_time, end_time, number_of_people, classification, created_at)
VALUES (:id, :site_id, :shift_code, :name, :start_time, :end_time, :number_of_people, :classification, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		if isUniqueViolation(err, "shift_definitions_site_code_key") {
			return appErrDuplicateSlot(shift.SiteID, shift.ShiftCode)
		}
		return fmt.Errorf("create shift definition: %w", err)
	}
	return nil
}

// UpdateShiftParams defines the mutable shift definition fields.
type UpdateShiftParams struct {
	Name           *string
	StartTime      *string
	EndTime        *string
	NumberOfPeople *int
	Classification *models.ShiftClassification
}

// Update persists the provided changes for a shift definition.
func (r *ShiftRepository) Update(ctx context.Context, siteID, shiftCode string, params UpdateShiftParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	argPos := 1

	if params.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}
	if params.StartTime != nil {
		set = append(set, fmt.Sprintf("start_time = $%d", argPos))
		args = append(args, *params.StartTime)
		argPos++
	}
	if params.EndTime != nil {
		set = append(set, fmt.Sprintf("end_time = $%d", argPos))
		args = append(args, *params.EndTime)
		argPos++
	}
	if params.NumberOfPeople != nil {
		set = append(set, fmt.Sprintf("number_of_people = $%d", argPos))
		args = append(args, *params.NumberOfPeople)
		argPos++
	}
	if params.Classification != nil {
		set = append(set, fmt.Sprintf("classification = $%d", argPos))
		args = append(args, *params.Classification)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	set = append(set, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	query := fmt.Sprintf("UPDATE shift_definitions SET %s WHERE site_id = $%d AND shift_code = $%d", strings.Join(set, ", "), argPos, argPos+1)
	args = append(args, siteID, shiftCode)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update shift definition: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errShiftNotFound
	}
	return nil
}

// Delete removes a shift definition. Removal is refused while any committed
// assignment on any date still references the slot.
func (r *ShiftRepository) Delete(ctx context.Context, siteID, shiftCode string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin shift delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	const countQuery = `SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND shift_code = $2`
	if err = tx.GetContext(ctx, &count, countQuery, siteID, shiftCode); err != nil {
		return fmt.Errorf("count slot assignments: %w", err)
	}
	if count > 0 {
		err = &models.SlotLockedError{SiteID: siteID, ShiftCode: shiftCode}
		return err
	}

	const deleteQuery = `DELETE FROM shift_definitions WHERE site_id = $1 AND shift_code = $2`
	res, execErr := tx.ExecContext(ctx, deleteQuery, siteID, shiftCode)
	if execErr != nil {
		err = fmt.Errorf("delete shift definition: %w", execErr)
		return err
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		err = errShiftNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit shift delete: %w", err)
	}
	return nil
}

// AssignmentCount reports how many committed assignments reference the slot
// across all dates.
func (r *ShiftRepository) AssignmentCount(ctx context.Context, siteID, shiftCode string) (int, error) {
	const query = `SELECT COUNT(*) FROM assignments WHERE site_id = $1 AND shift_code = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, siteID, shiftCode); err != nil {
		return 0, fmt.Errorf("count slot assignments: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a Postgres unique violation on the
// named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !asPQError(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}
