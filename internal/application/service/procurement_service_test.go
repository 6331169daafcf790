package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

type procurementEnv struct {
	svc           ProcurementService
	projects      *fakeProjectRepo
	requests      *fakeProcurementRepo
	orders        *fakePurchaseOrderRepo
	notifications *fakeNotificationRepo
	project       *entity.Project
}

func newProcurementEnv() *procurementEnv {
	users := newFakeUserRepo(testAdmin, testStaff, testStaff2, testClient)
	project := &entity.Project{
		ID:       "proj-1",
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Status:   entity.ProjectInProgress,
	}
	projects := newFakeProjectRepo(project)
	projects.staff[staffKey{project.ID, testStaff.ID}] = &entity.ProjectStaff{
		ProjectID: project.ID,
		StaffID:   testStaff.ID,
	}
	requests := newFakeProcurementRepo()
	orders := newFakePurchaseOrderRepo()
	notifications := &fakeNotificationRepo{}
	audits := &fakeAuditRepo{}

	d := dispatcher.NewDispatcher()
	effects := NewEffects(
		NewAuditService(audits, nopLogger{}),
		NewChatService(newFakeChatRepo(), projects, nopLogger{}),
		NewNotificationService(notifications, users, nopLogger{}),
		nopLogger{},
	)
	effects.Register(d)

	return &procurementEnv{
		svc:           NewProcurementService(requests, orders, projects, fakeTxManager{}, d, nopLogger{}),
		projects:      projects,
		requests:      requests,
		orders:        orders,
		notifications: notifications,
		project:       project,
	}
}

func (env *procurementEnv) draftWithItems(t *testing.T) *entity.ProcurementRequest {
	t.Helper()
	request, err := env.svc.Create(context.Background(), CreateProcurementInput{
		ProjectID: env.project.ID,
		Title:     "Steel beams",
		Items: []ProcurementItemInput{
			{Name: "I-beam 6m", Quantity: 2, Unit: "pcs", EstimatedCost: "1800.00"},
			{Name: "Crane rental", Quantity: 1, EstimatedCost: "1200.00", Type: entity.ItemService},
		},
	}, testStaff)
	require.NoError(t, err)
	return request
}

func (env *procurementEnv) approvedRequest(t *testing.T) *entity.ProcurementRequest {
	t.Helper()
	ctx := context.Background()
	request := env.draftWithItems(t)
	_, err := env.svc.Submit(ctx, request.ID, testStaff)
	require.NoError(t, err)
	approved, err := env.svc.Approve(ctx, request.ID, testAdmin)
	require.NoError(t, err)
	return approved
}

func TestProcurementCreateStartsAsDraft(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)

	assert.Equal(t, entity.ProcurementDraft, request.Status)
	assert.True(t, request.Cost.IsZero(), "cost is fixed at submission, not creation")

	items, err := env.svc.ListItems(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestProcurementCreateRequiresAssignment(t *testing.T) {
	env := newProcurementEnv()

	_, err := env.svc.Create(context.Background(), CreateProcurementInput{
		ProjectID: env.project.ID,
		Title:     "Unassigned",
		Items:     []ProcurementItemInput{{Name: "Thing", Quantity: 1}},
	}, testStaff2)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProcurementItemDefaultsToMaterial(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)

	item, err := env.svc.AddItem(context.Background(), request.ID, ProcurementItemInput{
		Name:     "Bolts",
		Quantity: 200,
	}, testStaff)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemMaterial, item.Type)
	assert.Nil(t, item.EstimatedCost)
}

func TestProcurementItemValidation(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, request.ID, ProcurementItemInput{Name: "None", Quantity: 0}, testStaff)
	assert.True(t, apperror.IsBadRequest(err))

	_, err = env.svc.AddItem(ctx, request.ID, ProcurementItemInput{Name: "Odd", Quantity: 1, Type: entity.ItemType("FURNITURE")}, testStaff)
	assert.True(t, apperror.IsBadRequest(err))

	_, err = env.svc.AddItem(ctx, request.ID, ProcurementItemInput{Name: "Neg", Quantity: 1, EstimatedCost: "-5"}, testStaff)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestProcurementSubmitFixesTotalCost(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)

	submitted, err := env.svc.Submit(context.Background(), request.ID, testStaff)
	require.NoError(t, err)

	assert.Equal(t, entity.ProcurementSubmitted, submitted.Status)
	assert.True(t, submitted.Cost.Equal(decimal.NewFromInt(4800)), "expected 4800, got %s", submitted.Cost)

	// admins are told about the pending review
	adminNotes := env.notifications.forUser(testAdmin.ID)
	require.Len(t, adminNotes, 1)
	assert.Equal(t, "Procurement request submitted", adminNotes[0].Title)
}

func TestProcurementSubmitWithoutItems(t *testing.T) {
	env := newProcurementEnv()
	request, err := env.svc.Create(context.Background(), CreateProcurementInput{
		ProjectID: env.project.ID,
		Title:     "Empty",
	}, testStaff)
	require.NoError(t, err)

	_, err = env.svc.Submit(context.Background(), request.ID, testStaff)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestProcurementSubmitOnlyByCreator(t *testing.T) {
	env := newProcurementEnv()
	env.projects.staff[staffKey{env.project.ID, testStaff2.ID}] = &entity.ProjectStaff{
		ProjectID: env.project.ID,
		StaffID:   testStaff2.ID,
	}
	request := env.draftWithItems(t)

	_, err := env.svc.Submit(context.Background(), request.ID, testStaff2)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProcurementItemsLockedAfterSubmission(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)
	ctx := context.Background()

	items, err := env.svc.ListItems(ctx, request.ID)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	_, err = env.svc.Submit(ctx, request.ID, testStaff)
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, request.ID, ProcurementItemInput{Name: "Late", Quantity: 1}, testStaff)
	assert.True(t, apperror.IsForbidden(err))

	_, err = env.svc.UpdateItem(ctx, items[0].ID, ProcurementItemInput{Name: "Changed", Quantity: 5}, testStaff)
	assert.True(t, apperror.IsForbidden(err))

	err = env.svc.DeleteItem(ctx, items[0].ID, testStaff)
	assert.True(t, apperror.IsForbidden(err))

	err = env.svc.UpdateDetails(ctx, request.ID, "New title", "", testStaff)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProcurementDecisionIsTerminal(t *testing.T) {
	env := newProcurementEnv()
	ctx := context.Background()
	request := env.draftWithItems(t)
	_, err := env.svc.Submit(ctx, request.ID, testStaff)
	require.NoError(t, err)

	rejected, err := env.svc.Reject(ctx, request.ID, "over budget", testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcurementRejected, rejected.Status)
	assert.Equal(t, "over budget", rejected.RejectionReason)

	// no resubmission and no late approval
	_, err = env.svc.Submit(ctx, request.ID, testStaff)
	assert.True(t, apperror.IsForbidden(err))
	_, err = env.svc.Approve(ctx, request.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))

	// the requester is told why
	notes := env.notifications.forUser(testStaff.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Procurement request rejected", notes[0].Title)
	assert.Contains(t, notes[0].Message, "over budget")
}

func TestProcurementApproveRequiresSubmission(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)

	_, err := env.svc.Approve(context.Background(), request.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err), "draft requests cannot be decided")
}

func TestProcurementVisibility(t *testing.T) {
	env := newProcurementEnv()
	request := env.draftWithItems(t)
	ctx := context.Background()

	_, err := env.svc.GetByID(ctx, request.ID, testClient)
	assert.True(t, apperror.IsForbidden(err), "clients never see procurement")

	_, err = env.svc.GetByID(ctx, request.ID, testStaff2)
	assert.True(t, apperror.IsForbidden(err), "unrelated staff cannot see the request")

	_, err = env.svc.GetByID(ctx, request.ID, testAdmin)
	assert.NoError(t, err)
}

func TestGeneratePurchaseOrderRequiresApproval(t *testing.T) {
	env := newProcurementEnv()
	ctx := context.Background()
	request := env.draftWithItems(t)
	_, err := env.svc.Submit(ctx, request.ID, testStaff)
	require.NoError(t, err)

	_, err = env.svc.GeneratePurchaseOrder(ctx, request.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestGeneratePurchaseOrderOncePerRequest(t *testing.T) {
	env := newProcurementEnv()
	ctx := context.Background()
	request := env.approvedRequest(t)

	po, err := env.svc.GeneratePurchaseOrder(ctx, request.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCreated, po.Status)
	assert.Contains(t, po.OrderNumber, "PO-")

	_, err = env.svc.GeneratePurchaseOrder(ctx, request.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	env := newProcurementEnv()
	ctx := context.Background()
	request := env.approvedRequest(t)

	po, err := env.svc.GeneratePurchaseOrder(ctx, request.ID, testAdmin)
	require.NoError(t, err)

	// delivery before ordering is rejected
	_, err = env.svc.MarkDelivered(ctx, po.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))

	ordered, err := env.svc.MarkOrdered(ctx, po.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderOrdered, ordered.Status)
	require.NotNil(t, ordered.OrderedAt)
	assert.WithinDuration(t, time.Now(), *ordered.OrderedAt, time.Minute)

	delivered, err := env.svc.MarkDelivered(ctx, po.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)

	// delivered is terminal
	_, err = env.svc.MarkOrdered(ctx, po.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestGetPurchaseOrderMissing(t *testing.T) {
	env := newProcurementEnv()
	request := env.approvedRequest(t)

	_, err := env.svc.GetPurchaseOrder(context.Background(), request.ID)
	assert.True(t, apperror.IsNotFound(err))
}
