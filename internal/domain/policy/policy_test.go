package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

var (
	admin  = &entity.User{ID: "admin-1", Role: entity.RoleAdmin}
	staff  = &entity.User{ID: "staff-1", Role: entity.RoleStaff}
	client = &entity.User{ID: "client-1", Role: entity.RoleClient}
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		actor   *entity.User
		action  Action
		res     Resource
		allowed bool
	}{
		{
			name:    "admin creates project",
			actor:   admin,
			action:  ProjectCreate,
			allowed: true,
		},
		{
			name:    "staff creates project",
			actor:   staff,
			action:  ProjectCreate,
			allowed: true,
		},
		{
			name:    "client cannot create project",
			actor:   client,
			action:  ProjectCreate,
			allowed: false,
		},
		{
			name:    "only admins approve projects",
			actor:   staff,
			action:  ProjectApprove,
			allowed: false,
		},
		{
			name:    "assigned staff adds project update",
			actor:   staff,
			action:  ProjectAddUpdate,
			res:     Resource{ActorAssigned: true},
			allowed: true,
		},
		{
			name:    "unassigned staff cannot add project update",
			actor:   staff,
			action:  ProjectAddUpdate,
			res:     Resource{ActorAssigned: false},
			allowed: false,
		},
		{
			name:    "creator edits draft items",
			actor:   staff,
			action:  ProcurementItemMutate,
			res:     Resource{CreatedByID: staff.ID, Status: string(entity.ProcurementDraft)},
			allowed: true,
		},
		{
			name:    "items locked after submission",
			actor:   staff,
			action:  ProcurementItemMutate,
			res:     Resource{CreatedByID: staff.ID, Status: string(entity.ProcurementSubmitted)},
			allowed: false,
		},
		{
			name:    "another staff cannot touch the items",
			actor:   staff,
			action:  ProcurementItemMutate,
			res:     Resource{CreatedByID: "staff-2", Status: string(entity.ProcurementDraft)},
			allowed: false,
		},
		{
			name:    "owning client marks invoice paid",
			actor:   client,
			action:  InvoiceMarkPaid,
			res:     Resource{ProjectClientID: client.ID},
			allowed: true,
		},
		{
			name:    "other client cannot mark invoice paid",
			actor:   client,
			action:  InvoiceMarkPaid,
			res:     Resource{ProjectClientID: "client-2"},
			allowed: false,
		},
		{
			name:    "admin cannot mark invoice paid on behalf of the client",
			actor:   admin,
			action:  InvoiceMarkPaid,
			res:     Resource{ProjectClientID: "client-1"},
			allowed: false,
		},
		{
			name:    "only admin confirms payment",
			actor:   client,
			action:  InvoiceConfirmPayment,
			allowed: false,
		},
		{
			name:    "staff deletes own pending timesheet",
			actor:   staff,
			action:  TimesheetDelete,
			res:     Resource{CreatedByID: staff.ID, Status: string(entity.TimesheetPending)},
			allowed: true,
		},
		{
			name:    "reviewed timesheet cannot be deleted",
			actor:   staff,
			action:  TimesheetDelete,
			res:     Resource{CreatedByID: staff.ID, Status: string(entity.TimesheetApproved)},
			allowed: false,
		},
		{
			name:    "clients cannot upload documents",
			actor:   client,
			action:  DocumentUpload,
			allowed: false,
		},
		{
			name:    "unknown action fails closed",
			actor:   admin,
			action:  Action("nonsense"),
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actor, tt.action, tt.res)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.IsForbidden(err), "expected forbidden, got %v", err)
			}
		})
	}
}
