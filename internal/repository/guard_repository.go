package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// GuardRepository reads guard master data. The roster never mutates guards.
type GuardRepository struct {
	db *sqlx.DB
}

// NewGuardRepository constructs the repository.
func NewGuardRepository(db *sqlx.DB) *GuardRepository {
	return &GuardRepository{db: db}
}

const guardColumns = `id, guard_code, first_name, last_name, active, created_at`

// GetByID returns a guard row by its identifier.
func (r *GuardRepository) GetByID(ctx context.Context, id string) (*models.Guard, error) {
	const query = `SELECT ` + guardColumns + ` FROM guards WHERE id = $1`
	var guard models.Guard
	if err := r.db.GetContext(ctx, &guard, query, id); err != nil {
		return nil, fmt.Errorf("get guard: %w", err)
	}
	return &guard, nil
}

// GetByCode returns a guard row by its personnel code (e.g. PG-0001).
func (r *GuardRepository) GetByCode(ctx context.Context, code string) (*models.Guard, error) {
	const query = `SELECT ` + guardColumns + ` FROM guards WHERE guard_code = $1`
	var guard models.Guard
	if err := r.db.GetContext(ctx, &guard, query, code); err != nil {
		return nil, fmt.Errorf("get guard by code: %w", err)
	}
	return &guard, nil
}

// ListAvailableOn returns active guards with no assignment anywhere on the
// given date, ordered for stable roster pickers.
func (r *GuardRepository) ListAvailableOn(ctx context.Context, date time.Time) ([]models.Guard, error) {
	const query = `
SELECT g.id, g.guard_code, g.first_name, g.last_name, g.active, g.created_at
FROM guards g
WHERE g.active = TRUE
	AND NOT EXISTS (
		SELECT 1 FROM assignments a
		WHERE a.guard_id = g.id AND a.schedule_date = $1
	)
ORDER BY g.guard_code ASC`
	var guards []models.Guard
	if err := r.db.SelectContext(ctx, &guards, query, date); err != nil {
		return nil, fmt.Errorf("list available guards: %w", err)
	}
	return guards, nil
}
