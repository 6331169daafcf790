package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

type projectEnv struct {
	svc           ProjectService
	users         *fakeUserRepo
	projects      *fakeProjectRepo
	chat          *fakeChatRepo
	notifications *fakeNotificationRepo
	audits        *fakeAuditRepo
}

// newProjectEnv wires the project service to in-memory repos with the real
// side-effect handlers registered, so tests observe chat provisioning, the
// notification fan-out and the audit trail exactly as production does.
func newProjectEnv() *projectEnv {
	users := newFakeUserRepo(testAdmin, testStaff, testStaff2, testClient)
	projects := newFakeProjectRepo()
	chat := newFakeChatRepo()
	notifications := &fakeNotificationRepo{}
	audits := &fakeAuditRepo{}

	d := dispatcher.NewDispatcher()
	effects := NewEffects(
		NewAuditService(audits, nopLogger{}),
		NewChatService(chat, projects, nopLogger{}),
		NewNotificationService(notifications, users, nopLogger{}),
		nopLogger{},
	)
	effects.Register(d)

	return &projectEnv{
		svc:           NewProjectService(projects, users, fakeTxManager{}, d, nopLogger{}),
		users:         users,
		projects:      projects,
		chat:          chat,
		notifications: notifications,
		audits:        audits,
	}
}

func TestProjectCreateProvisionsSideEffects(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectPending, project.Status)

	// both threads exist and the client is active in MAIN
	main, err := env.chat.GetProjectThread(ctx, project.ID, entity.ThreadMain)
	require.NoError(t, err)
	require.NotNil(t, main)
	staffOnly, err := env.chat.GetProjectThread(ctx, project.ID, entity.ThreadStaffOnly)
	require.NoError(t, err)
	require.NotNil(t, staffOnly)

	participant, err := env.chat.GetParticipant(ctx, main.ID, testClient.ID)
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.True(t, participant.Active())

	// the initial CREATED entry is appended and the action audited
	created := env.projects.updatesOfType(project.ID, entity.EventCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "Project submitted for approval", created[0].Note)

	require.Len(t, env.audits.logs, 1)
	assert.Equal(t, entity.AuditCreate, env.audits.logs[0].Action)
}

func TestProjectCreateByStaffAutoAssignsAndJoinsThreads(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Warehouse extension",
		ClientID: testClient.ID,
		Budget:   "90000",
	}, testStaff)
	require.NoError(t, err)

	assigned, err := env.projects.IsStaffAssigned(ctx, project.ID, testStaff.ID)
	require.NoError(t, err)
	assert.True(t, assigned, "the staff creator is auto-assigned")

	staffOnly, err := env.chat.GetProjectThread(ctx, project.ID, entity.ThreadStaffOnly)
	require.NoError(t, err)
	participant, err := env.chat.GetParticipant(ctx, staffOnly.ID, testStaff.ID)
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.True(t, participant.Active())
}

func TestProjectCreateRejectsNonClientTarget(t *testing.T) {
	env := newProjectEnv()

	_, err := env.svc.Create(context.Background(), CreateProjectInput{
		Name:     "Bad",
		ClientID: testStaff.ID,
		Budget:   "100",
	}, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectRequestStartNotifiesAdmins(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testStaff)
	require.NoError(t, err)

	require.NoError(t, env.svc.RequestStart(ctx, project.ID, testStaff))

	// status unchanged, START_REQUESTED logged, admins notified
	assert.Equal(t, entity.ProjectPending, project.Status)
	assert.Len(t, env.projects.updatesOfType(project.ID, entity.EventStartRequested), 1)

	adminNotes := env.notifications.forUser(testAdmin.ID)
	require.Len(t, adminNotes, 1)
	assert.Equal(t, "Project approval requested", adminNotes[0].Title)
	assert.Equal(t, `Project "Atrium fit-out" is awaiting approval`, adminNotes[0].Message)
}

func TestProjectApproveAndComplete(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	approved, err := env.svc.Approve(ctx, project.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectInProgress, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, testAdmin.ID, *approved.ApprovedByID)

	updates := env.projects.updatesOfType(project.ID, entity.EventApproved)
	require.Len(t, updates, 1)
	assert.Equal(t, 10, updates[0].Progress)

	completed, err := env.svc.Complete(ctx, project.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectCompleted, completed.Status)

	final := env.projects.updatesOfType(project.ID, entity.EventCompleted)
	require.Len(t, final, 1)
	assert.Equal(t, 100, final[0].Progress)
}

func TestProjectApproveRequiresAdmin(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testStaff)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, project.ID, testStaff)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectApproveTwiceFails(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, project.ID, testAdmin)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, project.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectCompleteRequiresInProgress(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, project.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err), "pending projects cannot be completed")
}

func TestAssignAndRemoveStaffMaintainsChatMembership(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	require.NoError(t, env.svc.AssignStaff(ctx, project.ID, testStaff2.ID, testAdmin))

	main, err := env.chat.GetProjectThread(ctx, project.ID, entity.ThreadMain)
	require.NoError(t, err)
	participant, err := env.chat.GetParticipant(ctx, main.ID, testStaff2.ID)
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.True(t, participant.Active())

	staffNotes := env.notifications.forUser(testStaff2.ID)
	require.Len(t, staffNotes, 1)
	assert.Equal(t, "Assigned to project", staffNotes[0].Title)

	require.NoError(t, env.svc.RemoveStaff(ctx, project.ID, testStaff2.ID, testAdmin))

	assigned, err := env.projects.IsStaffAssigned(ctx, project.ID, testStaff2.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	// the participant row survives the removal as a soft leave
	participant, err = env.chat.GetParticipant(ctx, main.ID, testStaff2.ID)
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.False(t, participant.Active())
}

func TestRemoveStaffNotAssigned(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	err = env.svc.RemoveStaff(ctx, project.ID, testStaff2.ID, testAdmin)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAssignStaffRejectsNonStaffUser(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	err = env.svc.AssignStaff(ctx, project.ID, testClient.ID, testAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectAddUpdateValidatesProgressAndAssignment(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testStaff)
	require.NoError(t, err)

	update, err := env.svc.AddUpdate(ctx, project.ID, "Framing done", 40, testStaff)
	require.NoError(t, err)
	assert.Equal(t, entity.EventProgressUpdate, update.EventType)
	assert.Equal(t, 40, update.Progress)

	_, err = env.svc.AddUpdate(ctx, project.ID, "too much", 120, testStaff)
	assert.True(t, apperror.IsBadRequest(err))

	_, err = env.svc.AddUpdate(ctx, project.ID, "not mine", 10, testStaff2)
	assert.True(t, apperror.IsForbidden(err), "unassigned staff cannot post updates")
}

func TestProjectVisibilityByRole(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	_, err = env.svc.GetByID(ctx, project.ID, testClient)
	assert.NoError(t, err, "the owning client sees the project")

	otherClient := &entity.User{ID: "client-2", Role: entity.RoleClient, Status: entity.UserActive}
	_, err = env.svc.GetByID(ctx, project.ID, otherClient)
	assert.True(t, apperror.IsForbidden(err))

	_, err = env.svc.GetByID(ctx, project.ID, testStaff)
	assert.True(t, apperror.IsForbidden(err), "unassigned staff cannot see the project")

	require.NoError(t, env.svc.AssignStaff(ctx, project.ID, testStaff.ID, testAdmin))
	_, err = env.svc.GetByID(ctx, project.ID, testStaff)
	assert.NoError(t, err)
}

func TestProjectUpdateStatusDirectWrite(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	project, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Atrium fit-out",
		ClientID: testClient.ID,
		Budget:   "250000",
	}, testAdmin)
	require.NoError(t, err)

	updated, err := env.svc.UpdateStatus(ctx, project.ID, entity.ProjectInProgress, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectInProgress, updated.Status)

	_, err = env.svc.UpdateStatus(ctx, project.ID, entity.ProjectStatus("ARCHIVED"), testAdmin)
	assert.True(t, apperror.IsBadRequest(err))

	_, err = env.svc.UpdateStatus(ctx, project.ID, entity.ProjectCompleted, testClient)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectListForUserScopes(t *testing.T) {
	env := newProjectEnv()
	ctx := context.Background()

	mine, err := env.svc.Create(ctx, CreateProjectInput{
		Name:     "Mine",
		ClientID: testClient.ID,
		Budget:   "100",
	}, testStaff)
	require.NoError(t, err)

	otherClient := &entity.User{ID: "client-2", Name: "Other Co", Email: "other@projectdesk.test", Role: entity.RoleClient, Status: entity.UserActive}
	env.users.users[otherClient.ID] = otherClient
	_, err = env.svc.Create(ctx, CreateProjectInput{
		Name:     "Theirs",
		ClientID: otherClient.ID,
		Budget:   "100",
	}, testAdmin)
	require.NoError(t, err)

	all, err := env.svc.ListForUser(ctx, testAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	staffProjects, err := env.svc.ListForUser(ctx, testStaff)
	require.NoError(t, err)
	require.Len(t, staffProjects, 1)
	assert.Equal(t, mine.ID, staffProjects[0].ID)

	clientProjects, err := env.svc.ListForUser(ctx, testClient)
	require.NoError(t, err)
	require.Len(t, clientProjects, 1)
	assert.Equal(t, mine.ID, clientProjects[0].ID)
}

func TestProjectCreateRejectsBadBudget(t *testing.T) {
	env := newProjectEnv()

	_, err := env.svc.Create(context.Background(), CreateProjectInput{
		Name:     "Bad budget",
		ClientID: testClient.ID,
		Budget:   "lots",
	}, testAdmin)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestProjectCreateWithExpectedEnd(t *testing.T) {
	env := newProjectEnv()
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	project, err := env.svc.Create(context.Background(), CreateProjectInput{
		Name:        "Deadline job",
		ClientID:    testClient.ID,
		Budget:      "5000",
		ExpectedEnd: &end,
	}, testAdmin)
	require.NoError(t, err)
	require.NotNil(t, project.ExpectedEnd)
	assert.True(t, project.ExpectedEnd.Equal(end))
}
