package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// PositionRepository reads service position master data carrying the default
// pay components the rate resolver falls back to.
type PositionRepository struct {
	db *sqlx.DB
}

// NewPositionRepository constructs the repository.
func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

const positionColumns = `id, code, name, daily_rate, diligence_bonus, seven_day_bonus, point_bonus, active, created_at, updated_at`

// GetByID returns a position row by its identifier.
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*models.Position, error) {
	const query = `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	var position models.Position
	if err := r.db.GetContext(ctx, &position, query, id); err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return &position, nil
}

// ListActive returns active positions ordered by code.
func (r *PositionRepository) ListActive(ctx context.Context) ([]models.Position, error) {
	const query = `SELECT ` + positionColumns + ` FROM positions WHERE active = TRUE ORDER BY code ASC`
	var positions []models.Position
	if err := r.db.SelectContext(ctx, &positions, query); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}
