package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// ProjectRepository implements port.ProjectRepository. Money columns are
// stored as TEXT and scanned through decimal's sql support.
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) port.ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `id, name, description, client_id, status, approved_by_id, expected_end, budget, category, created_at, updated_at`

// Create inserts a new project record
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (id, name, description, client_id, status, approved_by_id, expected_end, budget, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.ClientID,
		project.Status,
		project.ApprovedByID,
		project.ExpectedEnd,
		project.Budget.String(),
		project.Category,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(pick(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		r.logger.Error("Failed to get project", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

// ListAll retrieves every project, newest first
func (r *ProjectRepository) ListAll(ctx context.Context) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListByClient retrieves the projects owned by a client
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID string) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE client_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

// ListByStaff retrieves the projects a staff member is assigned to
func (r *ProjectRepository) ListByStaff(ctx context.Context, staffID string) ([]*entity.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.client_id, p.status, p.approved_by_id, p.expected_end, p.budget, p.category, p.created_at, p.updated_at
		FROM projects p
		INNER JOIN project_staff ps ON ps.project_id = p.id
		WHERE ps.staff_id = ?
		ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, staffID)
}

// UpdateStatus moves the project from fromStatus to toStatus in one guarded
// statement; false means the row was not in fromStatus
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.ProjectStatus, approvedByID *string) (bool, error) {
	query := `
		UPDATE projects
		SET status = ?, approved_by_id = COALESCE(?, approved_by_id), updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, toStatus, approvedByID, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to update project status", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update project status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetStatus writes the status unconditionally
func (r *ProjectRepository) SetStatus(ctx context.Context, id string, status entity.ProjectStatus) error {
	query := `UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to set project status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set project status: %w", err)
	}
	return nil
}

// AssignStaff inserts the assignment row; the (project, staff) unique index
// makes a repeat assignment a no-op
func (r *ProjectRepository) AssignStaff(ctx context.Context, assignment *entity.ProjectStaff) error {
	query := `
		INSERT INTO project_staff (project_id, staff_id, assigned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, staff_id) DO NOTHING
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, assignment.ProjectID, assignment.StaffID, assignment.AssignedAt)
	if err != nil {
		r.logger.Error("Failed to assign staff", zap.String("project_id", assignment.ProjectID), zap.Error(err))
		return fmt.Errorf("failed to assign staff: %w", err)
	}
	return nil
}

// RemoveStaff deletes the assignment row; false means it did not exist
func (r *ProjectRepository) RemoveStaff(ctx context.Context, projectID, staffID string) (bool, error) {
	query := `DELETE FROM project_staff WHERE project_id = ? AND staff_id = ?`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, projectID, staffID)
	if err != nil {
		r.logger.Error("Failed to remove staff", zap.String("project_id", projectID), zap.Error(err))
		return false, fmt.Errorf("failed to remove staff: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsStaffAssigned reports whether the staff member is assigned to the project
func (r *ProjectRepository) IsStaffAssigned(ctx context.Context, projectID, staffID string) (bool, error) {
	query := `SELECT COUNT(1) FROM project_staff WHERE project_id = ? AND staff_id = ?`

	var count int
	err := pick(ctx, r.db).QueryRowContext(ctx, query, projectID, staffID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// ListStaff retrieves a project's staff assignments
func (r *ProjectRepository) ListStaff(ctx context.Context, projectID string) ([]*entity.ProjectStaff, error) {
	query := `SELECT project_id, staff_id, assigned_at FROM project_staff WHERE project_id = ? ORDER BY assigned_at`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var assignments []*entity.ProjectStaff
	for rows.Next() {
		var a entity.ProjectStaff
		if err := rows.Scan(&a.ProjectID, &a.StaffID, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// AddUpdate appends an entry to the project update log
func (r *ProjectRepository) AddUpdate(ctx context.Context, update *entity.ProjectUpdate) error {
	query := `
		INSERT INTO project_updates (id, project_id, staff_id, event_type, progress, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		update.ID,
		update.ProjectID,
		update.StaffID,
		update.EventType,
		update.Progress,
		update.Note,
		update.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add project update", zap.String("project_id", update.ProjectID), zap.Error(err))
		return fmt.Errorf("failed to add project update: %w", err)
	}
	return nil
}

// ListUpdates retrieves a project's update log, newest first
func (r *ProjectRepository) ListUpdates(ctx context.Context, projectID string) ([]*entity.ProjectUpdate, error) {
	query := `
		SELECT id, project_id, staff_id, event_type, progress, note, created_at
		FROM project_updates
		WHERE project_id = ?
		ORDER BY created_at DESC
	`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project updates: %w", err)
	}
	defer rows.Close()

	var updates []*entity.ProjectUpdate
	for rows.Next() {
		var u entity.ProjectUpdate
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.StaffID, &u.EventType, &u.Progress, &u.Note, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project update: %w", err)
		}
		updates = append(updates, &u)
	}
	return updates, rows.Err()
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Project, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func scanProject(row *sql.Row) (*entity.Project, error) {
	var project entity.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.ClientID,
		&project.Status,
		&project.ApprovedByID,
		&project.ExpectedEnd,
		&project.Budget,
		&project.Category,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func scanProjectRow(rows *sql.Rows) (*entity.Project, error) {
	var project entity.Project
	err := rows.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.ClientID,
		&project.Status,
		&project.ApprovedByID,
		&project.ExpectedEnd,
		&project.Budget,
		&project.Category,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &project, nil
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
