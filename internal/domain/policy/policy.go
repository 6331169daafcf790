// Package policy holds every role and ownership rule in one table so the
// full authorization surface stays auditable in one place. Services call
// Check at the start of each operation, before any write.
package policy

import (
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

// Action names a guarded service operation
type Action string

const (
	ProjectCreate       Action = "project.create"
	ProjectRequestStart Action = "project.request_start"
	ProjectApprove      Action = "project.approve"
	ProjectComplete     Action = "project.complete"
	ProjectUpdateStatus Action = "project.update_status"
	ProjectAssignStaff  Action = "project.assign_staff"
	ProjectRemoveStaff  Action = "project.remove_staff"
	ProjectAddUpdate    Action = "project.add_update"

	ProcurementCreate     Action = "procurement.create"
	ProcurementUpdate     Action = "procurement.update"
	ProcurementSubmit     Action = "procurement.submit"
	ProcurementApprove    Action = "procurement.approve"
	ProcurementReject     Action = "procurement.reject"
	ProcurementItemMutate Action = "procurement.item_mutate"

	PurchaseOrderCreate  Action = "purchase_order.create"
	PurchaseOrderOrder   Action = "purchase_order.order"
	PurchaseOrderDeliver Action = "purchase_order.deliver"

	InvoiceCreate         Action = "invoice.create"
	InvoiceApprove        Action = "invoice.approve"
	InvoiceReject         Action = "invoice.reject"
	InvoiceMarkPaid       Action = "invoice.mark_paid"
	InvoiceConfirmPayment Action = "invoice.confirm_payment"

	TimesheetCreate Action = "timesheet.create"
	TimesheetReview Action = "timesheet.review"
	TimesheetDelete Action = "timesheet.delete"

	ChatAdminJoin  Action = "chat.admin_join"
	ChatAdminLeave Action = "chat.admin_leave"

	DocumentUpload Action = "document.upload"
)

// Resource carries the ownership facts a rule may need about the target.
// Status is the target's current lifecycle state; state-transition legality
// itself lives in the workflow machines, but a few rules (item mutation,
// timesheet deletion) are scoped to a source state and check it here.
type Resource struct {
	CreatedByID     string
	ProjectClientID string
	ActorAssigned   bool
	Status          string
}

type rule func(actor *entity.User, res Resource) error

var rules = map[Action]rule{
	ProjectCreate: func(actor *entity.User, _ Resource) error {
		if actor.Role == entity.RoleClient {
			return apperror.Forbidden("clients cannot create projects")
		}
		return nil
	},
	ProjectRequestStart: staffOnly("only staff can request a project start"),
	ProjectApprove:      adminOnly("only admins can approve projects"),
	ProjectComplete:     adminOnly("only admins can complete projects"),
	ProjectUpdateStatus: func(actor *entity.User, _ Resource) error {
		if actor.Role == entity.RoleClient {
			return apperror.Forbidden("clients cannot update project status")
		}
		return nil
	},
	ProjectAssignStaff: adminOnly("only admins can assign staff"),
	ProjectRemoveStaff: adminOnly("only admins can remove staff from a project"),
	ProjectAddUpdate: func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleStaff {
			return apperror.Forbidden("only staff can add project updates")
		}
		if !res.ActorAssigned {
			return apperror.Forbidden("you are not assigned to this project")
		}
		return nil
	},

	ProcurementCreate: func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleStaff {
			return apperror.Forbidden("only staff can create procurement requests")
		}
		if !res.ActorAssigned {
			return apperror.Forbidden("you are not assigned to this project")
		}
		return nil
	},
	ProcurementUpdate:  staffCreatorOnly("cannot edit this request"),
	ProcurementSubmit:  staffCreatorOnly("not your request"),
	ProcurementApprove: adminOnly("only admins can approve procurement requests"),
	ProcurementReject:  adminOnly("only admins can reject procurement requests"),
	ProcurementItemMutate: func(actor *entity.User, res Resource) error {
		if res.Status != string(entity.ProcurementDraft) {
			return apperror.Forbidden("cannot modify items after submission")
		}
		if actor.Role != entity.RoleStaff || res.CreatedByID != actor.ID {
			return apperror.Forbidden("not allowed")
		}
		return nil
	},

	PurchaseOrderCreate:  adminOnly("only admins can generate purchase orders"),
	PurchaseOrderOrder:   adminOnly("only admins can mark purchase orders ordered"),
	PurchaseOrderDeliver: adminOnly("only admins can mark purchase orders delivered"),

	InvoiceCreate: func(actor *entity.User, res Resource) error {
		switch actor.Role {
		case entity.RoleAdmin:
			return nil
		case entity.RoleStaff:
			if !res.ActorAssigned {
				return apperror.Forbidden("you are not assigned to this project")
			}
			return nil
		default:
			return apperror.Forbidden("clients cannot create invoices")
		}
	},
	InvoiceApprove: adminOnly("only admins can approve invoices"),
	InvoiceReject:  adminOnly("only admins can reject invoices"),
	InvoiceMarkPaid: func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleClient || res.ProjectClientID != actor.ID {
			return apperror.Forbidden("only the owning client can mark this invoice paid")
		}
		return nil
	},
	InvoiceConfirmPayment: adminOnly("only admins can confirm payment"),

	TimesheetCreate: func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleStaff {
			return apperror.Forbidden("only staff can log timesheets")
		}
		if !res.ActorAssigned {
			return apperror.Forbidden("you are not assigned to this project")
		}
		return nil
	},
	TimesheetReview: adminOnly("only admins can review timesheets"),
	TimesheetDelete: func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleStaff || res.CreatedByID != actor.ID {
			return apperror.Forbidden("not your timesheet entry")
		}
		if res.Status != string(entity.TimesheetPending) {
			return apperror.Forbidden("reviewed entries cannot be deleted")
		}
		return nil
	},

	ChatAdminJoin:  adminOnly("admins only"),
	ChatAdminLeave: adminOnly("admins only"),

	DocumentUpload: func(actor *entity.User, res Resource) error {
		switch actor.Role {
		case entity.RoleAdmin:
			return nil
		case entity.RoleStaff:
			if !res.ActorAssigned {
				return apperror.Forbidden("not assigned to project")
			}
			return nil
		default:
			return apperror.Forbidden("clients cannot upload documents")
		}
	},
}

// Check gates a service operation. A nil error means allow; policy failures
// never partially mutate state because no write happens before the check.
func Check(actor *entity.User, action Action, res Resource) error {
	r, ok := rules[action]
	if !ok {
		return apperror.Forbidden("no policy for action %s", action)
	}
	return r(actor, res)
}

func adminOnly(msg string) rule {
	return func(actor *entity.User, _ Resource) error {
		if actor.Role != entity.RoleAdmin {
			return apperror.Forbidden("%s", msg)
		}
		return nil
	}
}

func staffOnly(msg string) rule {
	return func(actor *entity.User, _ Resource) error {
		if actor.Role != entity.RoleStaff {
			return apperror.Forbidden("%s", msg)
		}
		return nil
	}
}

func staffCreatorOnly(msg string) rule {
	return func(actor *entity.User, res Resource) error {
		if actor.Role != entity.RoleStaff || res.CreatedByID != actor.ID {
			return apperror.Forbidden("%s", msg)
		}
		return nil
	}
}
