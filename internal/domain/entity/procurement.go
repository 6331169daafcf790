package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcurementStatus is the persisted procurement request lifecycle state.
// APPROVED and REJECTED are terminal; there is no resubmission path.
type ProcurementStatus string

const (
	ProcurementDraft     ProcurementStatus = "DRAFT"
	ProcurementSubmitted ProcurementStatus = "SUBMITTED"
	ProcurementApproved  ProcurementStatus = "APPROVED"
	ProcurementRejected  ProcurementStatus = "REJECTED"
)

// ProcurementRequest is a staff-initiated purchase request for a project.
// Cost is the sum of item estimates, fixed at submission time.
type ProcurementRequest struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	ProjectID       string            `json:"project_id"`
	CreatedByID     string            `json:"created_by_id"`
	Status          ProcurementStatus `json:"status"`
	Cost            decimal.Decimal   `json:"cost"`
	ApprovedByID    *string           `json:"approved_by_id,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ItemType distinguishes goods from contracted work
type ItemType string

const (
	ItemMaterial ItemType = "MATERIAL"
	ItemService  ItemType = "SERVICE"
)

// ProcurementItem is a line of a procurement request. Items are mutable only
// while the owning request is in DRAFT.
type ProcurementItem struct {
	ID            string           `json:"id"`
	RequestID     string           `json:"request_id"`
	Name          string           `json:"name"`
	Quantity      int              `json:"quantity"`
	Unit          string           `json:"unit,omitempty"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	Type          ItemType         `json:"type"`
	CreatedAt     time.Time        `json:"created_at"`
}
