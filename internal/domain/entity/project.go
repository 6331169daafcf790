package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the persisted project lifecycle state
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "PENDING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

// Project is the root of the ownership tree: every procurement request,
// invoice, timesheet entry and chat thread belongs to exactly one project.
type Project struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	ClientID     string          `json:"client_id"`
	Status       ProjectStatus   `json:"status"`
	ApprovedByID *string         `json:"approved_by_id,omitempty"`
	ExpectedEnd  *time.Time      `json:"expected_completion_date,omitempty"`
	Budget       decimal.Decimal `json:"budget"`
	Category     string          `json:"category,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProjectStaff is the assignment join row, unique per (project, staff) pair.
// Removal is a hard delete; chat membership is soft-left separately.
type ProjectStaff struct {
	ProjectID  string    `json:"project_id"`
	StaffID    string    `json:"staff_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// ProjectEventType classifies entries in the append-only project update log
type ProjectEventType string

const (
	EventCreated        ProjectEventType = "CREATED"
	EventStartRequested ProjectEventType = "START_REQUESTED"
	EventApproved       ProjectEventType = "APPROVED"
	EventProgressUpdate ProjectEventType = "PROGRESS_UPDATE"
	EventCompleted      ProjectEventType = "COMPLETED"
)

// ProjectUpdate is one entry of the project's append-only event log
type ProjectUpdate struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id"`
	StaffID   string           `json:"staff_id"`
	EventType ProjectEventType `json:"event_type"`
	Progress  int              `json:"progress"`
	Note      string           `json:"note,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
