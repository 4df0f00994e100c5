package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AdvanceType distinguishes salary advances from ad-hoc cash payouts.
type AdvanceType string

const (
	AdvanceTypeAdvance AdvanceType = "advance"
	AdvanceTypeCash    AdvanceType = "cash"
)

// Valid reports whether the value is a known advance type.
func (t AdvanceType) Valid() bool {
	return t == AdvanceTypeAdvance || t == AdvanceTypeCash
}

// AdvanceStatus tracks a document through its approval workflow.
type AdvanceStatus string

const (
	AdvanceStatusDraft    AdvanceStatus = "Draft"
	AdvanceStatusPending  AdvanceStatus = "Pending"
	AdvanceStatusApproved AdvanceStatus = "Approved"
	AdvanceStatusRejected AdvanceStatus = "Rejected"
)

// Valid reports whether the value is a known workflow status.
func (s AdvanceStatus) Valid() bool {
	switch s {
	case AdvanceStatusDraft, AdvanceStatusPending, AdvanceStatusApproved, AdvanceStatusRejected:
		return true
	}
	return false
}

// AdvanceItem is one guard's line on an advance document.
type AdvanceItem struct {
	GuardID string  `json:"guard_id"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason"`
}

// AdvanceItems is the document's line items persisted as JSONB.
type AdvanceItems []AdvanceItem

// Value marshals the items to JSON for persistence.
func (i AdvanceItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

// Scan unmarshals items from the stored JSON payload.
func (i *AdvanceItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported advance items type %T", src)
	}
}

// Total sums the line amounts.
func (i AdvanceItems) Total() float64 {
	var total float64
	for _, item := range i {
		total += item.Amount
	}
	return total
}

// DailyAdvance is a dated advance or cash payment document. Documents start as
// drafts owned by their creator and move through Pending to an admin's
// Approved or Rejected verdict.
type DailyAdvance struct {
	ID         string        `db:"id" json:"id"`
	DocNumber  string        `db:"doc_number" json:"doc_number"`
	Date       time.Time     `db:"advance_date" json:"date"`
	Type       AdvanceType   `db:"advance_type" json:"type"`
	Status     AdvanceStatus `db:"status" json:"status"`
	Items      AdvanceItems  `db:"items" json:"items"`
	CreatedBy  string        `db:"created_by" json:"created_by"`
	ApprovedBy *string       `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}
