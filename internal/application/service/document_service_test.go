package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

type documentEnv struct {
	svc       DocumentService
	documents *fakeDocumentRepo
	storage   *fakeStorage
	project   *entity.Project
}

func newDocumentEnv() *documentEnv {
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
	documents := newFakeDocumentRepo()
	storage := newFakeStorage()

	return &documentEnv{
		svc:       NewDocumentService(documents, projects, fakeTxManager{}, storage, dispatcher.NewDispatcher(), nopLogger{}),
		documents: documents,
		storage:   storage,
		project:   project,
	}
}

func (env *documentEnv) upload(t *testing.T, name string, category entity.DocumentCategory, content string) *entity.Document {
	t.Helper()
	doc, err := env.svc.Upload(context.Background(), UploadDocumentInput{
		ProjectID: env.project.ID,
		Name:      name,
		Category:  category,
		FileName:  name + ".pdf",
		Content:   []byte(content),
	}, testStaff)
	require.NoError(t, err)
	return doc
}

func TestDocumentUploadVersionsWithinGroup(t *testing.T) {
	env := newDocumentEnv()
	ctx := context.Background()

	v1 := env.upload(t, "Weekly report", entity.DocumentReport, "first draft")
	assert.Equal(t, 1, v1.Version)
	assert.True(t, env.storage.Exists(ctx, v1.FileURL))

	v2 := env.upload(t, "Weekly report", entity.DocumentReport, "revised")
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, v1.GroupID, v2.GroupID, "same (project, name, category) key shares the group")
	assert.NotEqual(t, v1.FileURL, v2.FileURL, "each version keeps its own file")

	other := env.upload(t, "Floor plan", entity.DocumentDrawing, "dwg bytes")
	assert.Equal(t, 1, other.Version)
	assert.NotEqual(t, v1.GroupID, other.GroupID)

	groups, err := env.svc.ListGroups(ctx, env.project.ID, testAdmin)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	versions, err := env.svc.ListVersions(ctx, v1.GroupID, testAdmin)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	latest, err := env.svc.ListLatest(ctx, env.project.ID, testAdmin)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	for _, doc := range latest {
		if doc.GroupID == v1.GroupID {
			assert.Equal(t, 2, doc.Version)
		}
	}
}

func TestDocumentUploadValidation(t *testing.T) {
	env := newDocumentEnv()
	ctx := context.Background()

	_, err := env.svc.Upload(ctx, UploadDocumentInput{
		ProjectID: env.project.ID,
		Name:      "Empty",
		Category:  entity.DocumentReport,
		FileName:  "empty.pdf",
	}, testStaff)
	assert.True(t, apperror.IsBadRequest(err), "empty file")

	_, err = env.svc.Upload(ctx, UploadDocumentInput{
		ProjectID: env.project.ID,
		Name:      "Odd",
		Category:  entity.DocumentCategory("MEMO"),
		FileName:  "odd.pdf",
		Content:   []byte("x"),
	}, testStaff)
	assert.True(t, apperror.IsBadRequest(err), "unknown category")

	_, err = env.svc.Upload(ctx, UploadDocumentInput{
		ProjectID: env.project.ID,
		Name:      "Client upload",
		Category:  entity.DocumentReport,
		FileName:  "c.pdf",
		Content:   []byte("x"),
	}, testClient)
	assert.True(t, apperror.IsForbidden(err), "clients cannot upload")

	_, err = env.svc.Upload(ctx, UploadDocumentInput{
		ProjectID: env.project.ID,
		Name:      "Unassigned",
		Category:  entity.DocumentReport,
		FileName:  "u.pdf",
		Content:   []byte("x"),
	}, testStaff2)
	assert.True(t, apperror.IsForbidden(err), "unassigned staff cannot upload")
}

func TestDocumentClientSeesOnlyReports(t *testing.T) {
	env := newDocumentEnv()
	ctx := context.Background()

	report := env.upload(t, "Weekly report", entity.DocumentReport, "report bytes")
	contract := env.upload(t, "Main contract", entity.DocumentContract, "contract bytes")

	groups, err := env.svc.ListGroups(ctx, env.project.ID, testClient)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, entity.DocumentReport, groups[0].Category)

	latest, err := env.svc.ListLatest(ctx, env.project.ID, testClient)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, report.ID, latest[0].ID)

	content, name, err := env.svc.Download(ctx, report.ID, testClient)
	require.NoError(t, err)
	assert.Equal(t, []byte("report bytes"), content)
	assert.Equal(t, "Weekly report-v1.pdf", name)

	_, _, err = env.svc.Download(ctx, contract.ID, testClient)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDocumentAccessScopedToProject(t *testing.T) {
	env := newDocumentEnv()
	ctx := context.Background()
	report := env.upload(t, "Weekly report", entity.DocumentReport, "report bytes")

	otherClient := &entity.User{ID: "client-2", Role: entity.RoleClient, Status: entity.UserActive}
	_, _, err := env.svc.Download(ctx, report.ID, otherClient)
	assert.True(t, apperror.IsForbidden(err))

	_, err = env.svc.ListGroups(ctx, env.project.ID, testStaff2)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDocumentDownloadVersionedName(t *testing.T) {
	env := newDocumentEnv()
	ctx := context.Background()
	env.upload(t, "Weekly report", entity.DocumentReport, "first")
	v2 := env.upload(t, "Weekly report", entity.DocumentReport, "second")

	content, name, err := env.svc.Download(ctx, v2.ID, testStaff)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), content)
	assert.Equal(t, "Weekly report-v2.pdf", name)
}

func TestDocumentDownloadMissing(t *testing.T) {
	env := newDocumentEnv()
	_, _, err := env.svc.Download(context.Background(), "nope", testAdmin)
	assert.True(t, apperror.IsNotFound(err))
}
