package models

import "time"

// AuditAction classifies a change fact.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// ChangeFact is the record handed to the audit collaborator after a
// scheduling transaction commits. Before and After hold enough of the
// schedule state for the collaborator to compute a field-level diff; the
// roster neither stores diffs nor blocks on delivery.
type ChangeFact struct {
	ID         string      `db:"id" json:"id"`
	Action     AuditAction `db:"action" json:"action"`
	EntityType string      `db:"entity_type" json:"entity_type"`
	EntityID   string      `db:"entity_id" json:"entity_id"` // siteID:date
	ActorID    *string     `db:"actor_id" json:"actor_id,omitempty"`
	Before     []byte      `db:"before" json:"before,omitempty"`
	After      []byte      `db:"after" json:"after,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
