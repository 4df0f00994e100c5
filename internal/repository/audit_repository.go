package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sentryops/guard-roster-api/internal/models"
)

// AuditRepository persists change facts handed off after scheduling commits.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert stores one change fact.
func (r *AuditRepository) Insert(ctx context.Context, fact *models.ChangeFact) error {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_events (id, action, entity_type, entity_id, actor_id, before, after, created_at)
VALUES (:id, :action, :entity_type, :entity_id, :actor_id, :before, :after, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fact); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByEntity returns change facts for one entity, newest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.ChangeFact, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, action, entity_type, entity_id, actor_id, before, after, created_at
FROM audit_events WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC LIMIT $3`
	var facts []models.ChangeFact
	if err := r.db.SelectContext(ctx, &facts, query, entityType, entityID, limit); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return facts, nil
}
