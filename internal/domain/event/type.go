package event

// Type identifies the type of domain event
type Type string

const (
	TypeProjectCreated        Type = "project.created"
	TypeProjectStartRequested Type = "project.start_requested"
	TypeProjectApproved       Type = "project.approved"
	TypeProjectCompleted      Type = "project.completed"
	TypeStaffAssigned         Type = "project.staff_assigned"
	TypeStaffRemoved          Type = "project.staff_removed"

	TypeProcurementCreated   Type = "procurement.created"
	TypeProcurementSubmitted Type = "procurement.submitted"
	TypeProcurementApproved  Type = "procurement.approved"
	TypeProcurementRejected  Type = "procurement.rejected"

	TypePurchaseOrderCreated   Type = "purchase_order.created"
	TypePurchaseOrderOrdered   Type = "purchase_order.ordered"
	TypePurchaseOrderDelivered Type = "purchase_order.delivered"

	TypeInvoiceCreated          Type = "invoice.created"
	TypeInvoiceApproved         Type = "invoice.approved"
	TypeInvoiceRejected         Type = "invoice.rejected"
	TypeInvoiceClientMarkedPaid Type = "invoice.client_marked_paid"
	TypeInvoicePaymentConfirmed Type = "invoice.payment_confirmed"

	TypeTimesheetCreated  Type = "timesheet.created"
	TypeTimesheetApproved Type = "timesheet.approved"
	TypeTimesheetRejected Type = "timesheet.rejected"
	TypeTimesheetDeleted  Type = "timesheet.deleted"

	TypeDocumentUploaded Type = "document.uploaded"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}
