package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

type chatEnv struct {
	svc      ChatService
	chat     *fakeChatRepo
	projects *fakeProjectRepo
	project  *entity.Project
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
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
	chat := newFakeChatRepo()
	svc := NewChatService(chat, projects, nopLogger{})
	require.NoError(t, svc.EnsureProjectThreads(context.Background(), project.ID))

	return &chatEnv{svc: svc, chat: chat, projects: projects, project: project}
}

func (env *chatEnv) thread(t *testing.T, threadType entity.ChatThreadType) *entity.ChatThread {
	t.Helper()
	thread, err := env.chat.GetProjectThread(context.Background(), env.project.ID, threadType)
	require.NoError(t, err)
	require.NotNil(t, thread)
	return thread
}

func TestEnsureProjectThreadsIsIdempotent(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.EnsureProjectThreads(ctx, env.project.ID))

	threads, err := env.chat.ListProjectThreads(ctx, env.project.ID)
	require.NoError(t, err)
	assert.Len(t, threads, 2, "repeated provisioning never duplicates threads")
}

func TestListThreadsHidesStaffOnlyFromClients(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	adminView, err := env.svc.ListThreads(ctx, env.project.ID, testAdmin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)

	clientView, err := env.svc.ListThreads(ctx, env.project.ID, testClient)
	require.NoError(t, err)
	require.Len(t, clientView, 1)
	assert.Equal(t, entity.ThreadMain, clientView[0].Type)

	staffView, err := env.svc.ListThreads(ctx, env.project.ID, testStaff)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)
}

func TestListThreadsScopedToProject(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	otherClient := &entity.User{ID: "client-2", Role: entity.RoleClient, Status: entity.UserActive}
	_, err := env.svc.ListThreads(ctx, env.project.ID, otherClient)
	assert.True(t, apperror.IsForbidden(err))

	_, err = env.svc.ListThreads(ctx, env.project.ID, testStaff2)
	assert.True(t, apperror.IsForbidden(err))

	_, err = env.svc.ListThreads(ctx, "missing", testAdmin)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdminJoinAndLeave(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()
	main := env.thread(t, entity.ThreadMain)

	participant, err := env.svc.AdminJoin(ctx, main.ID, testAdmin)
	require.NoError(t, err)
	assert.True(t, participant.Active())

	// joining twice keeps a single active row
	again, err := env.svc.AdminJoin(ctx, main.ID, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, participant.ID, again.ID)

	active, err := env.svc.ListActiveParticipants(ctx, main.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, env.svc.AdminLeave(ctx, main.ID, testAdmin))

	active, err = env.svc.ListActiveParticipants(ctx, main.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// the row survives as a soft leave and rejoining reactivates it
	row, err := env.chat.GetParticipant(ctx, main.ID, testAdmin.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, row.Active())

	rejoined, err := env.svc.AdminJoin(ctx, main.ID, testAdmin)
	require.NoError(t, err)
	assert.True(t, rejoined.Active())
}

func TestAdminJoinRequiresAdmin(t *testing.T) {
	env := newChatEnv(t)
	main := env.thread(t, entity.ThreadMain)

	_, err := env.svc.AdminJoin(context.Background(), main.ID, testStaff)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAdminJoinUnknownThread(t *testing.T) {
	env := newChatEnv(t)

	_, err := env.svc.AdminJoin(context.Background(), "missing", testAdmin)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEnsureUserInThread(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()
	main := env.thread(t, entity.ThreadMain)

	err := env.svc.EnsureUserInThread(ctx, main.ID, testStaff.ID)
	assert.True(t, apperror.IsForbidden(err), "non-members are rejected")

	require.NoError(t, env.svc.AddStaffToProjectThreads(ctx, env.project.ID, testStaff.ID))
	assert.NoError(t, env.svc.EnsureUserInThread(ctx, main.ID, testStaff.ID))

	require.NoError(t, env.svc.RemoveUserFromProjectChats(ctx, env.project.ID, testStaff.ID))
	err = env.svc.EnsureUserInThread(ctx, main.ID, testStaff.ID)
	assert.True(t, apperror.IsForbidden(err), "departed members are rejected")
}

func TestAddStaffJoinsBothThreads(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.AddStaffToProjectThreads(ctx, env.project.ID, testStaff.ID))

	for _, threadType := range []entity.ChatThreadType{entity.ThreadMain, entity.ThreadStaffOnly} {
		thread := env.thread(t, threadType)
		participant, err := env.chat.GetParticipant(ctx, thread.ID, testStaff.ID)
		require.NoError(t, err)
		require.NotNil(t, participant, "missing membership in %s", threadType)
		assert.True(t, participant.Active())
	}
}
