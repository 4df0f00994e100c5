package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// SiteRepository reads client site master data.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository constructs the repository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// GetByID returns a site row by its identifier.
func (r *SiteRepository) GetByID(ctx context.Context, id string) (*models.Site, error) {
	const query = `SELECT id, site_code, name, active, created_at FROM sites WHERE id = $1`
	var site models.Site
	if err := r.db.GetContext(ctx, &site, query, id); err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}
	return &site, nil
}

// ListActive returns every active site ordered by code.
func (r *SiteRepository) ListActive(ctx context.Context) ([]models.Site, error) {
	const query = `SELECT id, site_code, name, active, created_at FROM sites WHERE active = TRUE ORDER BY site_code ASC`
	var sites []models.Site
	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}
