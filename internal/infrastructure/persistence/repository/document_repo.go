package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// FindGroup retrieves a group by its (project, name, category) key
func (r *DocumentRepository) FindGroup(ctx context.Context, projectID, name string, category entity.DocumentCategory) (*entity.DocumentGroup, error) {
	query := `SELECT id, name, category, project_id, created_at FROM document_groups WHERE project_id = ? AND name = ? AND category = ?`

	var group entity.DocumentGroup
	err := pick(ctx, r.db).QueryRowContext(ctx, query, projectID, name, category).Scan(
		&group.ID, &group.Name, &group.Category, &group.ProjectID, &group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document group: %w", err)
	}
	return &group, nil
}

// CreateGroup inserts a new document group
func (r *DocumentRepository) CreateGroup(ctx context.Context, group *entity.DocumentGroup) error {
	query := `INSERT INTO document_groups (id, name, category, project_id, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, group.ID, group.Name, group.Category, group.ProjectID, group.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create document group", zap.Error(err))
		return fmt.Errorf("failed to create document group: %w", err)
	}
	return nil
}

// ListGroups retrieves a project's groups
func (r *DocumentRepository) ListGroups(ctx context.Context, projectID string) ([]*entity.DocumentGroup, error) {
	query := `SELECT id, name, category, project_id, created_at FROM document_groups WHERE project_id = ? ORDER BY created_at DESC`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document groups: %w", err)
	}
	defer rows.Close()

	var groups []*entity.DocumentGroup
	for rows.Next() {
		var group entity.DocumentGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.Category, &group.ProjectID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document group: %w", err)
		}
		groups = append(groups, &group)
	}
	return groups, rows.Err()
}

// CreateDocument inserts a new document version
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, group_id, name, file_url, category, version, uploaded_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		doc.ID,
		doc.GroupID,
		doc.Name,
		doc.FileURL,
		doc.Category,
		doc.Version,
		doc.UploadedByID,
		doc.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocument retrieves one version by ID
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT id, group_id, name, file_url, category, version, uploaded_by_id, created_at FROM documents WHERE id = ?`

	var doc entity.Document
	err := pick(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.GroupID, &doc.Name, &doc.FileURL, &doc.Category, &doc.Version, &doc.UploadedByID, &doc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// LatestVersion returns the highest version number in a group, 0 when the
// group is empty
func (r *DocumentRepository) LatestVersion(ctx context.Context, groupID string) (int, error) {
	query := `SELECT COALESCE(MAX(version), 0) FROM documents WHERE group_id = ?`

	var version int
	if err := pick(ctx, r.db).QueryRowContext(ctx, query, groupID).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get latest version: %w", err)
	}
	return version, nil
}

// ListByGroup retrieves every version in a group, newest first
func (r *DocumentRepository) ListByGroup(ctx context.Context, groupID string) ([]*entity.Document, error) {
	query := `SELECT id, group_id, name, file_url, category, version, uploaded_by_id, created_at FROM documents WHERE group_id = ? ORDER BY version DESC`
	return r.list(ctx, query, groupID)
}

// LatestPerGroup retrieves the newest version of each group in a project
func (r *DocumentRepository) LatestPerGroup(ctx context.Context, projectID string) ([]*entity.Document, error) {
	query := `
		SELECT d.id, d.group_id, d.name, d.file_url, d.category, d.version, d.uploaded_by_id, d.created_at
		FROM documents d
		INNER JOIN document_groups g ON g.id = d.group_id
		WHERE g.project_id = ?
			AND d.version = (SELECT MAX(version) FROM documents WHERE group_id = d.group_id)
		ORDER BY g.created_at DESC
	`
	return r.list(ctx, query, projectID)
}

// GroupProjectID resolves the owning project of a group, "" when the group
// does not exist
func (r *DocumentRepository) GroupProjectID(ctx context.Context, groupID string) (string, error) {
	query := `SELECT project_id FROM document_groups WHERE id = ?`

	var projectID string
	err := pick(ctx, r.db).QueryRowContext(ctx, query, groupID).Scan(&projectID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve group project: %w", err)
	}
	return projectID, nil
}

func (r *DocumentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Document, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var doc entity.Document
		err := rows.Scan(&doc.ID, &doc.GroupID, &doc.Name, &doc.FileURL, &doc.Category, &doc.Version, &doc.UploadedByID, &doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
