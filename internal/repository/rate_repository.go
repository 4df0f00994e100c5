package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// RateRepository reads per-site service rate overrides. Overrides are
// maintained by the contract-management surface; the roster only consumes
// them during rate resolution.
type RateRepository struct {
	db *sqlx.DB
}

// NewRateRepository constructs the repository.
func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

const rateColumns = `id, site_id, position_id, use_default_rate, custom_rate, custom_diligence_bonus, custom_seven_day_bonus, custom_point_bonus, remarks, created_at, updated_at`

// GetBySiteAndPosition returns the override row for the pair, or nil when no
// override exists and the position defaults apply in full.
func (r *RateRepository) GetBySiteAndPosition(ctx context.Context, siteID, positionID string) (*models.SiteServiceRate, error) {
	const query = `SELECT ` + rateColumns + ` FROM site_service_rates WHERE site_id = $1 AND position_id = $2`
	var rate models.SiteServiceRate
	if err := r.db.GetContext(ctx, &rate, query, siteID, positionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site service rate: %w", err)
	}
	return &rate, nil
}

// ListBySite returns every override configured for the site.
func (r *RateRepository) ListBySite(ctx context.Context, siteID string) ([]models.SiteServiceRate, error) {
	const query = `SELECT ` + rateColumns + ` FROM site_service_rates WHERE site_id = $1 ORDER BY position_id ASC`
	var rates []models.SiteServiceRate
	if err := r.db.SelectContext(ctx, &rates, query, siteID); err != nil {
		return nil, fmt.Errorf("list site service rates: %w", err)
	}
	return rates, nil
}
