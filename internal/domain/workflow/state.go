package workflow

import "projectdesk/internal/domain/entity"

// State represents a lifecycle state of one of the workflow entities. Each
// entity declares its own state set when its machine is built; validity is a
// property of the machine configuration, not of the type.
type State string

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Project states
const (
	ProjectPending    = State(entity.ProjectPending)
	ProjectInProgress = State(entity.ProjectInProgress)
	ProjectCompleted  = State(entity.ProjectCompleted)
)

// Procurement request states
const (
	ProcurementDraft     = State(entity.ProcurementDraft)
	ProcurementSubmitted = State(entity.ProcurementSubmitted)
	ProcurementApproved  = State(entity.ProcurementApproved)
	ProcurementRejected  = State(entity.ProcurementRejected)
)

// Purchase order states
const (
	PurchaseOrderCreated            = State(entity.PurchaseOrderCreated)
	PurchaseOrderOrdered            = State(entity.PurchaseOrderOrdered)
	PurchaseOrderPartiallyDelivered = State(entity.PurchaseOrderPartiallyDelivered)
	PurchaseOrderDelivered          = State(entity.PurchaseOrderDelivered)
	PurchaseOrderCancelled          = State(entity.PurchaseOrderCancelled)
)

// Invoice states
const (
	InvoicePending  = State(entity.InvoicePending)
	InvoiceApproved = State(entity.InvoiceApproved)
	InvoiceRejected = State(entity.InvoiceRejected)
	InvoicePaid     = State(entity.InvoicePaid)
)

// Timesheet states
const (
	TimesheetPending  = State(entity.TimesheetPending)
	TimesheetApproved = State(entity.TimesheetApproved)
	TimesheetRejected = State(entity.TimesheetRejected)
)
