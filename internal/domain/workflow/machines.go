package workflow

import "projectdesk/internal/domain/entity"

// One transition table per entity. Services build a machine positioned at
// the persisted status, fire the trigger for the requested operation and
// write back the machine's resulting state. Illegal transitions fail closed
// before any write happens.

func projectBuilder() *Builder {
	b := NewBuilder()
	// request-start does not change status; it only fans out notifications
	b.Configure(ProjectPending).
		Permit(TriggerRequestStart, ProjectPending).
		Permit(TriggerApprove, ProjectInProgress)
	b.Configure(ProjectInProgress).
		Permit(TriggerComplete, ProjectCompleted)
	b.Configure(ProjectCompleted)
	return b
}

// NewProjectMachine builds the project lifecycle machine positioned at the
// given status
func NewProjectMachine(status entity.ProjectStatus) (StateMachine, error) {
	return projectBuilder().Build(State(status))
}

func procurementBuilder() *Builder {
	b := NewBuilder()
	b.Configure(ProcurementDraft).
		Permit(TriggerSubmit, ProcurementSubmitted)
	b.Configure(ProcurementSubmitted).
		Permit(TriggerApprove, ProcurementApproved).
		Permit(TriggerReject, ProcurementRejected)
	// terminal: no resubmission path after rejection
	b.Configure(ProcurementApproved)
	b.Configure(ProcurementRejected)
	return b
}

// NewProcurementMachine builds the procurement request machine positioned at
// the given status
func NewProcurementMachine(status entity.ProcurementStatus) (StateMachine, error) {
	return procurementBuilder().Build(State(status))
}

func purchaseOrderBuilder() *Builder {
	b := NewBuilder()
	b.Configure(PurchaseOrderCreated).
		Permit(TriggerOrder, PurchaseOrderOrdered)
	b.Configure(PurchaseOrderOrdered).
		Permit(TriggerDeliver, PurchaseOrderDelivered)
	// PARTIALLY_DELIVERED is reserved: declared so a row holding it is not
	// treated as corrupt, but no trigger currently produces it
	b.Configure(PurchaseOrderPartiallyDelivered).
		Permit(TriggerDeliver, PurchaseOrderDelivered)
	b.Configure(PurchaseOrderDelivered)
	b.Configure(PurchaseOrderCancelled)
	return b
}

// NewPurchaseOrderMachine builds the purchase order machine positioned at
// the given status
func NewPurchaseOrderMachine(status entity.PurchaseOrderStatus) (StateMachine, error) {
	return purchaseOrderBuilder().Build(State(status))
}

func invoiceBuilder() *Builder {
	b := NewBuilder()
	b.Configure(InvoicePending).
		Permit(TriggerApprove, InvoiceApproved).
		Permit(TriggerReject, InvoiceRejected)
	// client mark-paid is a flag, not a transition; only admin confirmation
	// reaches PAID
	b.Configure(InvoiceApproved).
		Permit(TriggerConfirmPayment, InvoicePaid)
	b.Configure(InvoiceRejected)
	b.Configure(InvoicePaid)
	return b
}

// NewInvoiceMachine builds the invoice machine positioned at the given
// status
func NewInvoiceMachine(status entity.InvoiceStatus) (StateMachine, error) {
	return invoiceBuilder().Build(State(status))
}

func timesheetBuilder() *Builder {
	b := NewBuilder()
	b.Configure(TimesheetPending).
		Permit(TriggerApprove, TimesheetApproved).
		Permit(TriggerReject, TimesheetRejected)
	b.Configure(TimesheetApproved)
	b.Configure(TimesheetRejected)
	return b
}

// NewTimesheetMachine builds the timesheet review machine positioned at the
// given status
func NewTimesheetMachine(status entity.TimesheetStatus) (StateMachine, error) {
	return timesheetBuilder().Build(State(status))
}
