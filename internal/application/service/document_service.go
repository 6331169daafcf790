package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/event"
	"projectdesk/internal/domain/policy"
)

// UploadDocumentInput carries one uploaded file and its grouping key
type UploadDocumentInput struct {
	ProjectID string
	Name      string
	Category  entity.DocumentCategory
	FileName  string
	Content   []byte
}

// DocumentService manages versioned project documents. Uploading under an
// existing (project, name, category) key appends the next version to the
// group; versions are immutable once written.
type DocumentService interface {
	Upload(ctx context.Context, input UploadDocumentInput, actor *entity.User) (*entity.Document, error)
	ListGroups(ctx context.Context, projectID string, actor *entity.User) ([]*entity.DocumentGroup, error)
	ListVersions(ctx context.Context, groupID string, actor *entity.User) ([]*entity.Document, error)
	ListLatest(ctx context.Context, projectID string, actor *entity.User) ([]*entity.Document, error)
	Download(ctx context.Context, documentID string, actor *entity.User) ([]byte, string, error)
}

type documentServiceImpl struct {
	documentRepo port.DocumentRepository
	projectRepo  port.ProjectRepository
	txManager    port.TransactionManager
	storage      port.FileStorage
	events       dispatcher.Dispatcher
	logger       Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo port.DocumentRepository,
	projectRepo port.ProjectRepository,
	txManager port.TransactionManager,
	storage port.FileStorage,
	events dispatcher.Dispatcher,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo: documentRepo,
		projectRepo:  projectRepo,
		txManager:    txManager,
		storage:      storage,
		events:       events,
		logger:       logger,
	}
}

// Upload stores the file and appends the next version to its group, creating
// the group on first upload
func (s *documentServiceImpl) Upload(ctx context.Context, input UploadDocumentInput, actor *entity.User) (*entity.Document, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	assigned := false
	if actor.Role == entity.RoleStaff {
		assigned, err = s.projectRepo.IsStaffAssigned(ctx, input.ProjectID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
	}
	if err := policy.Check(actor, policy.DocumentUpload, policy.Resource{ActorAssigned: assigned}); err != nil {
		return nil, err
	}

	if len(input.Content) == 0 {
		return nil, apperror.BadRequest("empty file")
	}
	switch input.Category {
	case entity.DocumentReport, entity.DocumentContract, entity.DocumentDrawing, entity.DocumentOther:
	default:
		return nil, apperror.BadRequest("invalid document category %q", input.Category)
	}

	docID := uuid.NewString()
	fileURL := fmt.Sprintf("documents/%s/%s%s", input.ProjectID, docID, filepath.Ext(input.FileName))
	if err := s.storage.Save(ctx, fileURL, input.Content); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	var doc *entity.Document
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		group, err := s.documentRepo.FindGroup(txCtx, input.ProjectID, input.Name, input.Category)
		if err != nil {
			return fmt.Errorf("find group: %w", err)
		}
		if group == nil {
			group = &entity.DocumentGroup{
				ID:        uuid.NewString(),
				Name:      input.Name,
				Category:  input.Category,
				ProjectID: input.ProjectID,
				CreatedAt: time.Now(),
			}
			if err := s.documentRepo.CreateGroup(txCtx, group); err != nil {
				return fmt.Errorf("create group: %w", err)
			}
		}

		latest, err := s.documentRepo.LatestVersion(txCtx, group.ID)
		if err != nil {
			return fmt.Errorf("latest version: %w", err)
		}

		doc = &entity.Document{
			ID:           docID,
			GroupID:      group.ID,
			Name:         input.Name,
			FileURL:      fileURL,
			Category:     input.Category,
			Version:      latest + 1,
			UploadedByID: actor.ID,
			CreatedAt:    time.Now(),
		}
		return s.documentRepo.CreateDocument(txCtx, doc)
	})
	if err != nil {
		// the orphaned file is harmless but worth cleaning up
		if delErr := s.storage.Delete(ctx, fileURL); delErr != nil {
			s.logger.Error("Failed to clean up stored file after failed upload", "error", delErr, "path", fileURL)
		}
		return nil, err
	}

	evt := event.New(event.TypeDocumentUploaded, doc.ID, input.ProjectID, actor.ID, map[string]interface{}{
		"name":     doc.Name,
		"category": string(doc.Category),
		"version":  doc.Version,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch document uploaded event", "error", err, "document_id", doc.ID)
	}

	return doc, nil
}

// ListGroups returns a project's document groups; clients only see groups
// they are allowed to download from
func (s *documentServiceImpl) ListGroups(ctx context.Context, projectID string, actor *entity.User) ([]*entity.DocumentGroup, error) {
	if err := s.checkProjectAccess(ctx, projectID, actor); err != nil {
		return nil, err
	}

	groups, err := s.documentRepo.ListGroups(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	if actor.Role == entity.RoleClient {
		visible := make([]*entity.DocumentGroup, 0, len(groups))
		for _, g := range groups {
			if g.Category == entity.DocumentReport {
				visible = append(visible, g)
			}
		}
		groups = visible
	}
	return groups, nil
}

// ListVersions returns every version in a group, newest first
func (s *documentServiceImpl) ListVersions(ctx context.Context, groupID string, actor *entity.User) ([]*entity.Document, error) {
	projectID, err := s.documentRepo.GroupProjectID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("resolve group project: %w", err)
	}
	if projectID == "" {
		return nil, apperror.NotFound("document group not found")
	}
	if err := s.checkProjectAccess(ctx, projectID, actor); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if actor.Role == entity.RoleClient {
		docs = clientVisible(docs)
	}
	return docs, nil
}

// ListLatest returns the newest version of each group in a project
func (s *documentServiceImpl) ListLatest(ctx context.Context, projectID string, actor *entity.User) ([]*entity.Document, error) {
	if err := s.checkProjectAccess(ctx, projectID, actor); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.LatestPerGroup(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list latest documents: %w", err)
	}
	if actor.Role == entity.RoleClient {
		docs = clientVisible(docs)
	}
	return docs, nil
}

// Download returns one version's bytes. Clients may only download REPORT
// documents of their own projects.
func (s *documentServiceImpl) Download(ctx context.Context, documentID string, actor *entity.User) ([]byte, string, error) {
	doc, err := s.documentRepo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return nil, "", apperror.NotFound("document not found")
	}

	projectID, err := s.documentRepo.GroupProjectID(ctx, doc.GroupID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve group project: %w", err)
	}
	if err := s.checkProjectAccess(ctx, projectID, actor); err != nil {
		return nil, "", err
	}
	if actor.Role == entity.RoleClient && doc.Category != entity.DocumentReport {
		return nil, "", apperror.Forbidden("clients can only download report documents")
	}

	content, err := s.storage.Read(ctx, doc.FileURL)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}

	name := fmt.Sprintf("%s-v%d%s", doc.Name, doc.Version, filepath.Ext(doc.FileURL))
	return content, name, nil
}

func (s *documentServiceImpl) checkProjectAccess(ctx context.Context, projectID string, actor *entity.User) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return apperror.NotFound("project not found")
	}

	switch actor.Role {
	case entity.RoleClient:
		if project.ClientID != actor.ID {
			return apperror.Forbidden("not your project")
		}
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, projectID, actor.ID)
		if err != nil {
			return fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return apperror.Forbidden("you are not assigned to this project")
		}
	}
	return nil
}

func clientVisible(docs []*entity.Document) []*entity.Document {
	visible := make([]*entity.Document, 0, len(docs))
	for _, d := range docs {
		if d.Category == entity.DocumentReport {
			visible = append(visible, d)
		}
	}
	return visible
}
