package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimesheetStatus is the persisted timesheet review state
type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetApproved TimesheetStatus = "APPROVED"
	TimesheetRejected TimesheetStatus = "REJECTED"
)

// TimesheetEntry is a staff member's logged hours against a project.
// Entries are deletable only while PENDING and immutable once reviewed.
type TimesheetEntry struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	StaffID         string          `json:"staff_id"`
	EntryDate       time.Time       `json:"entry_date"`
	Hours           decimal.Decimal `json:"hours"`
	Notes           string          `json:"notes,omitempty"`
	Status          TimesheetStatus `json:"status"`
	ReviewedByID    *string         `json:"reviewed_by_id,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time       `json:"submitted_at"`
}
