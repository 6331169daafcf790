package service

import (
	"context"
	"fmt"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/event"
)

// Effects wires the side-effect handlers onto the dispatcher: the audit
// trail, chat membership maintenance and notification fan-out. Handlers run
// after the triggering write commits and are isolated by the dispatcher, so
// a failed notification never rolls back a transition.
type Effects struct {
	audit         AuditService
	chat          ChatService
	notifications NotificationService
	logger        Logger
}

// NewEffects creates the side-effect registrar
func NewEffects(
	audit AuditService,
	chat ChatService,
	notifications NotificationService,
	logger Logger,
) *Effects {
	return &Effects{
		audit:         audit,
		chat:          chat,
		notifications: notifications,
		logger:        logger,
	}
}

// Register subscribes every handler. Must run before the first workflow
// operation so that project creation provisions its chat threads.
func (e *Effects) Register(d dispatcher.Dispatcher) {
	for eventType, entry := range auditTable {
		entry := entry
		d.SubscribeNamed(eventType, "audit", func(ctx context.Context, evt *event.Event) error {
			e.audit.Log(ctx, evt.ActorID, entry.action, entry.entity, evt.EntityID, entry.message(evt))
			return nil
		})
	}

	d.SubscribeNamed(event.TypeProjectCreated, "chat-provision", e.onProjectCreated)
	d.SubscribeNamed(event.TypeStaffAssigned, "chat-add-staff", e.onStaffAssigned)
	d.SubscribeNamed(event.TypeStaffRemoved, "chat-remove-user", e.onStaffRemoved)

	d.SubscribeNamed(event.TypeProjectStartRequested, "notify-admins", func(ctx context.Context, evt *event.Event) error {
		return e.notifications.NotifyAdmins(ctx,
			"Project approval requested",
			fmt.Sprintf("Project %q is awaiting approval", evt.PayloadString("project_name")),
			"PROJECT_START_REQUESTED",
		)
	})
	d.SubscribeNamed(event.TypeProcurementSubmitted, "notify-admins", func(ctx context.Context, evt *event.Event) error {
		return e.notifications.NotifyAdmins(ctx,
			"Procurement request submitted",
			fmt.Sprintf("Request %q (total %s) is awaiting review", evt.PayloadString("title"), evt.PayloadString("cost")),
			"PROCUREMENT_SUBMITTED",
		)
	})
	d.SubscribeNamed(event.TypeProcurementApproved, "notify-requester", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("requested_by"),
			"Procurement request approved",
			fmt.Sprintf("Your request %q was approved", evt.PayloadString("title")),
			"PROCUREMENT_APPROVED",
		)
	})
	d.SubscribeNamed(event.TypeProcurementRejected, "notify-requester", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("requested_by"),
			"Procurement request rejected",
			fmt.Sprintf("Your request %q was rejected: %s", evt.PayloadString("title"), evt.PayloadString("reason")),
			"PROCUREMENT_REJECTED",
		)
	})
	d.SubscribeNamed(event.TypeInvoiceApproved, "notify-client", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("client_id"),
			"New invoice",
			fmt.Sprintf("Invoice %s is ready for payment", evt.PayloadString("invoice_number")),
			"INVOICE_APPROVED",
		)
	})
	d.SubscribeNamed(event.TypeInvoiceRejected, "notify-creator", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("created_by"),
			"Invoice rejected",
			fmt.Sprintf("Invoice %s was rejected: %s", evt.PayloadString("invoice_number"), evt.PayloadString("reason")),
			"INVOICE_REJECTED",
		)
	})
	d.SubscribeNamed(event.TypeInvoiceClientMarkedPaid, "notify-admins", func(ctx context.Context, evt *event.Event) error {
		return e.notifications.NotifyAdmins(ctx,
			"Payment reported",
			fmt.Sprintf("The client marked invoice %s as paid; confirmation needed", evt.PayloadString("invoice_number")),
			"INVOICE_CLIENT_MARKED_PAID",
		)
	})
	d.SubscribeNamed(event.TypeInvoicePaymentConfirmed, "notify-client", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("client_id"),
			"Payment confirmed",
			fmt.Sprintf("Payment for invoice %s has been confirmed; your receipt is available", evt.PayloadString("invoice_number")),
			"INVOICE_PAID",
		)
	})
	d.SubscribeNamed(event.TypeTimesheetApproved, "notify-staff", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("staff_id"),
			"Timesheet approved",
			"Your timesheet entry was approved",
			"TIMESHEET_APPROVED",
		)
	})
	d.SubscribeNamed(event.TypeTimesheetRejected, "notify-staff", func(ctx context.Context, evt *event.Event) error {
		return e.notifyOne(ctx, evt.PayloadString("staff_id"),
			"Timesheet rejected",
			fmt.Sprintf("Your timesheet entry was rejected: %s", evt.PayloadString("reason")),
			"TIMESHEET_REJECTED",
		)
	})
}

// onProjectCreated provisions the MAIN and STAFF_ONLY threads, adds the
// client to MAIN and, when a staff member created the project, adds them to
// both threads
func (e *Effects) onProjectCreated(ctx context.Context, evt *event.Event) error {
	if err := e.chat.EnsureProjectThreads(ctx, evt.ProjectID); err != nil {
		return err
	}
	if clientID := evt.PayloadString("client_id"); clientID != "" {
		if err := e.chat.AddClientToMainThread(ctx, evt.ProjectID, clientID); err != nil {
			return err
		}
	}
	if evt.PayloadString("creator_role") == string(entity.RoleStaff) {
		return e.chat.AddStaffToProjectThreads(ctx, evt.ProjectID, evt.ActorID)
	}
	return nil
}

func (e *Effects) onStaffAssigned(ctx context.Context, evt *event.Event) error {
	staffID := evt.PayloadString("staff_id")
	if err := e.chat.AddStaffToProjectThreads(ctx, evt.ProjectID, staffID); err != nil {
		return err
	}
	return e.notifyOne(ctx, staffID,
		"Assigned to project",
		fmt.Sprintf("You were assigned to project %q", evt.PayloadString("project_name")),
		"STAFF_ASSIGNED",
	)
}

func (e *Effects) onStaffRemoved(ctx context.Context, evt *event.Event) error {
	staffID := evt.PayloadString("staff_id")
	if err := e.chat.RemoveUserFromProjectChats(ctx, evt.ProjectID, staffID); err != nil {
		return err
	}
	return e.notifyOne(ctx, staffID,
		"Removed from project",
		fmt.Sprintf("You were removed from project %q", evt.PayloadString("project_name")),
		"STAFF_REMOVED",
	)
}

func (e *Effects) notifyOne(ctx context.Context, userID, title, message, notificationType string) error {
	if userID == "" {
		return nil
	}
	return e.notifications.NotifyUsers(ctx, []string{userID}, title, message, notificationType)
}

type auditEntry struct {
	action  entity.AuditAction
	entity  entity.AuditEntityType
	message func(evt *event.Event) string
}

func staticMessage(msg string) func(*event.Event) string {
	return func(*event.Event) string { return msg }
}

// auditTable maps every workflow event to its audit-log classification
var auditTable = map[event.Type]auditEntry{
	event.TypeProjectCreated: {entity.AuditCreate, entity.AuditEntityProject, func(evt *event.Event) string {
		return fmt.Sprintf("Created project %q", evt.PayloadString("project_name"))
	}},
	event.TypeProjectStartRequested: {entity.AuditRequest, entity.AuditEntityProject, staticMessage("Requested project start")},
	event.TypeProjectApproved:       {entity.AuditApprove, entity.AuditEntityProject, staticMessage("Approved project")},
	event.TypeProjectCompleted:      {entity.AuditUpdate, entity.AuditEntityProject, staticMessage("Completed project")},
	event.TypeStaffAssigned: {entity.AuditUpdate, entity.AuditEntityProject, func(evt *event.Event) string {
		return fmt.Sprintf("Assigned staff to project %q", evt.PayloadString("project_name"))
	}},
	event.TypeStaffRemoved: {entity.AuditUpdate, entity.AuditEntityProject, func(evt *event.Event) string {
		return fmt.Sprintf("Removed staff from project %q", evt.PayloadString("project_name"))
	}},

	event.TypeProcurementCreated: {entity.AuditCreate, entity.AuditEntityProcurement, func(evt *event.Event) string {
		return fmt.Sprintf("Created procurement request %q", evt.PayloadString("title"))
	}},
	event.TypeProcurementSubmitted: {entity.AuditSubmit, entity.AuditEntityProcurement, func(evt *event.Event) string {
		return fmt.Sprintf("Submitted procurement request %q (total %s)", evt.PayloadString("title"), evt.PayloadString("cost"))
	}},
	event.TypeProcurementApproved: {entity.AuditApprove, entity.AuditEntityProcurement, staticMessage("Approved procurement request")},
	event.TypeProcurementRejected: {entity.AuditReject, entity.AuditEntityProcurement, staticMessage("Rejected procurement request")},

	event.TypePurchaseOrderCreated: {entity.AuditCreate, entity.AuditEntityPurchaseOrder, func(evt *event.Event) string {
		return fmt.Sprintf("Generated purchase order %s", evt.PayloadString("order_number"))
	}},
	event.TypePurchaseOrderOrdered: {entity.AuditUpdate, entity.AuditEntityPurchaseOrder, func(evt *event.Event) string {
		return fmt.Sprintf("Marked purchase order %s as ordered", evt.PayloadString("order_number"))
	}},
	event.TypePurchaseOrderDelivered: {entity.AuditUpdate, entity.AuditEntityPurchaseOrder, func(evt *event.Event) string {
		return fmt.Sprintf("Marked purchase order %s as delivered", evt.PayloadString("order_number"))
	}},

	event.TypeInvoiceCreated: {entity.AuditCreate, entity.AuditEntityInvoice, func(evt *event.Event) string {
		return fmt.Sprintf("Created invoice %s", evt.PayloadString("invoice_number"))
	}},
	event.TypeInvoiceApproved: {entity.AuditApprove, entity.AuditEntityInvoice, func(evt *event.Event) string {
		return fmt.Sprintf("Approved invoice %s", evt.PayloadString("invoice_number"))
	}},
	event.TypeInvoiceRejected: {entity.AuditReject, entity.AuditEntityInvoice, func(evt *event.Event) string {
		return fmt.Sprintf("Rejected invoice %s", evt.PayloadString("invoice_number"))
	}},
	event.TypeInvoiceClientMarkedPaid: {entity.AuditUpdate, entity.AuditEntityInvoice, func(evt *event.Event) string {
		return fmt.Sprintf("Client marked invoice %s as paid", evt.PayloadString("invoice_number"))
	}},
	event.TypeInvoicePaymentConfirmed: {entity.AuditApprove, entity.AuditEntityReceipt, func(evt *event.Event) string {
		return fmt.Sprintf("Confirmed payment of invoice %s", evt.PayloadString("invoice_number"))
	}},

	event.TypeTimesheetCreated: {entity.AuditCreate, entity.AuditEntityTimesheet, func(evt *event.Event) string {
		return fmt.Sprintf("Logged %s hours", evt.PayloadString("hours"))
	}},
	event.TypeTimesheetApproved: {entity.AuditApprove, entity.AuditEntityTimesheet, staticMessage("Approved timesheet entry")},
	event.TypeTimesheetRejected: {entity.AuditReject, entity.AuditEntityTimesheet, staticMessage("Rejected timesheet entry")},
	event.TypeTimesheetDeleted:  {entity.AuditDelete, entity.AuditEntityTimesheet, staticMessage("Deleted timesheet entry")},

	event.TypeDocumentUploaded: {entity.AuditCreate, entity.AuditEntityDocument, func(evt *event.Event) string {
		return fmt.Sprintf("Uploaded document %q", evt.PayloadString("name"))
	}},
}
