package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/event"
	"projectdesk/internal/domain/policy"
	"projectdesk/internal/domain/workflow"
)

// CreateProjectInput carries the fields of a project creation request
type CreateProjectInput struct {
	Name        string
	Description string
	ClientID    string
	Category    string
	Budget      string
	ExpectedEnd *time.Time
}

// ProjectService drives the project lifecycle: creation, start requests,
// approval, completion and staff assignment
type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput, actor *entity.User) (*entity.Project, error)
	GetByID(ctx context.Context, id string, actor *entity.User) (*entity.Project, error)
	ListForUser(ctx context.Context, actor *entity.User) ([]*entity.Project, error)

	RequestStart(ctx context.Context, projectID string, actor *entity.User) error
	Approve(ctx context.Context, projectID string, actor *entity.User) (*entity.Project, error)
	Complete(ctx context.Context, projectID string, actor *entity.User) (*entity.Project, error)
	UpdateStatus(ctx context.Context, projectID string, status entity.ProjectStatus, actor *entity.User) (*entity.Project, error)

	AssignStaff(ctx context.Context, projectID, staffID string, actor *entity.User) error
	RemoveStaff(ctx context.Context, projectID, staffID string, actor *entity.User) error

	AddUpdate(ctx context.Context, projectID string, note string, progress int, actor *entity.User) (*entity.ProjectUpdate, error)
	ListUpdates(ctx context.Context, projectID string) ([]*entity.ProjectUpdate, error)
}

type projectServiceImpl struct {
	projectRepo port.ProjectRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	events      dispatcher.Dispatcher
	logger      Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo port.ProjectRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		events:      events,
		logger:      logger,
	}
}

// Create creates a PENDING project and provisions its side effects: chat
// threads, client membership, staff auto-assignment for a staff creator,
// the initial CREATED update and the audit entry.
func (s *projectServiceImpl) Create(ctx context.Context, input CreateProjectInput, actor *entity.User) (*entity.Project, error) {
	if err := policy.Check(actor, policy.ProjectCreate, policy.Resource{}); err != nil {
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil || client.Role != entity.RoleClient {
		return nil, apperror.Forbidden("invalid client selected")
	}

	budget, err := parseBudget(input.Budget)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	project := &entity.Project{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		ClientID:    input.ClientID,
		Status:      entity.ProjectPending,
		Budget:      budget,
		Category:    input.Category,
		ExpectedEnd: input.ExpectedEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		if actor.Role == entity.RoleStaff {
			assignment := &entity.ProjectStaff{
				ProjectID:  project.ID,
				StaffID:    actor.ID,
				AssignedAt: now,
			}
			if err := s.projectRepo.AssignStaff(txCtx, assignment); err != nil {
				return fmt.Errorf("auto-assign creator: %w", err)
			}
		}

		update := &entity.ProjectUpdate{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			StaffID:   actor.ID,
			EventType: entity.EventCreated,
			Progress:  0,
			Note:      "Project submitted for approval",
			CreatedAt: now,
		}
		return s.projectRepo.AddUpdate(txCtx, update)
	})
	if err != nil {
		s.logger.Error("Failed to create project", "error", err, "name", input.Name)
		return nil, err
	}

	evt := event.New(event.TypeProjectCreated, project.ID, project.ID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
		"client_id":    project.ClientID,
		"creator_role": string(actor.Role),
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch project created event", "error", err, "project_id", project.ID)
	}

	s.logger.Info("Project created", "project_id", project.ID, "name", project.Name)
	return project, nil
}

// GetByID returns a project visible to the actor
func (s *projectServiceImpl) GetByID(ctx context.Context, id string, actor *entity.User) (*entity.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	switch actor.Role {
	case entity.RoleClient:
		if project.ClientID != actor.ID {
			return nil, apperror.Forbidden("not your project")
		}
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, id, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return nil, apperror.Forbidden("you are not assigned to this project")
		}
	}

	return project, nil
}

// ListForUser returns the projects the actor may see, scoped by role
func (s *projectServiceImpl) ListForUser(ctx context.Context, actor *entity.User) ([]*entity.Project, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return s.projectRepo.ListAll(ctx)
	case entity.RoleStaff:
		return s.projectRepo.ListByStaff(ctx, actor.ID)
	case entity.RoleClient:
		return s.projectRepo.ListByClient(ctx, actor.ID)
	default:
		return nil, apperror.Forbidden("invalid role")
	}
}

// RequestStart asks admins to approve a pending project. The status does
// not change; the transition only fans out notifications and appends a
// START_REQUESTED update.
func (s *projectServiceImpl) RequestStart(ctx context.Context, projectID string, actor *entity.User) error {
	if err := policy.Check(actor, policy.ProjectRequestStart, policy.Resource{}); err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return apperror.NotFound("project not found")
	}

	machine, err := workflow.NewProjectMachine(project.Status)
	if err != nil {
		return fmt.Errorf("build project machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerRequestStart); err != nil {
		return apperror.Forbidden("only pending projects can be submitted for approval")
	}

	update := &entity.ProjectUpdate{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		StaffID:   actor.ID,
		EventType: entity.EventStartRequested,
		Progress:  0,
		Note:      "Project submitted for approval",
		CreatedAt: time.Now(),
	}
	if err := s.projectRepo.AddUpdate(ctx, update); err != nil {
		return fmt.Errorf("add start-requested update: %w", err)
	}

	evt := event.New(event.TypeProjectStartRequested, projectID, projectID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch start requested event", "error", err, "project_id", projectID)
	}

	return nil
}

// Approve moves a pending project to IN_PROGRESS
func (s *projectServiceImpl) Approve(ctx context.Context, projectID string, actor *entity.User) (*entity.Project, error) {
	if err := policy.Check(actor, policy.ProjectApprove, policy.Resource{}); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	machine, err := workflow.NewProjectMachine(project.Status)
	if err != nil {
		return nil, fmt.Errorf("build project machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
		return nil, apperror.Forbidden("only pending projects can be approved")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := s.projectRepo.UpdateStatus(txCtx, projectID, project.Status, entity.ProjectStatus(machine.State()), &actor.ID)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !moved {
			return apperror.Forbidden("only pending projects can be approved")
		}

		update := &entity.ProjectUpdate{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			StaffID:   actor.ID,
			EventType: entity.EventApproved,
			Progress:  10,
			Note:      "Project approved",
			CreatedAt: time.Now(),
		}
		return s.projectRepo.AddUpdate(txCtx, update)
	})
	if err != nil {
		return nil, err
	}

	project.Status = entity.ProjectStatus(machine.State())
	project.ApprovedByID = &actor.ID

	evt := event.New(event.TypeProjectApproved, projectID, projectID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch project approved event", "error", err, "project_id", projectID)
	}

	return project, nil
}

// Complete moves an in-progress project to COMPLETED, its terminal state
func (s *projectServiceImpl) Complete(ctx context.Context, projectID string, actor *entity.User) (*entity.Project, error) {
	if err := policy.Check(actor, policy.ProjectComplete, policy.Resource{}); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	machine, err := workflow.NewProjectMachine(project.Status)
	if err != nil {
		return nil, fmt.Errorf("build project machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerComplete); err != nil {
		return nil, apperror.Forbidden("only active projects can be completed")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := s.projectRepo.UpdateStatus(txCtx, projectID, project.Status, entity.ProjectStatus(machine.State()), nil)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !moved {
			return apperror.Forbidden("only active projects can be completed")
		}

		update := &entity.ProjectUpdate{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			StaffID:   actor.ID,
			EventType: entity.EventCompleted,
			Progress:  100,
			Note:      "Project completed",
			CreatedAt: time.Now(),
		}
		return s.projectRepo.AddUpdate(txCtx, update)
	})
	if err != nil {
		return nil, err
	}

	project.Status = entity.ProjectStatus(machine.State())

	evt := event.New(event.TypeProjectCompleted, projectID, projectID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch project completed event", "error", err, "project_id", projectID)
	}

	return project, nil
}

// UpdateStatus is the direct status write available to staff and admins;
// clients are denied
func (s *projectServiceImpl) UpdateStatus(ctx context.Context, projectID string, status entity.ProjectStatus, actor *entity.User) (*entity.Project, error) {
	if err := policy.Check(actor, policy.ProjectUpdateStatus, policy.Resource{}); err != nil {
		return nil, err
	}

	switch status {
	case entity.ProjectPending, entity.ProjectInProgress, entity.ProjectCompleted:
	default:
		return nil, apperror.BadRequest("invalid project status %q", status)
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	if err := s.projectRepo.SetStatus(ctx, projectID, status); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	project.Status = status
	return project, nil
}

// AssignStaff adds a staff member to the project and its chat threads
func (s *projectServiceImpl) AssignStaff(ctx context.Context, projectID, staffID string, actor *entity.User) error {
	if err := policy.Check(actor, policy.ProjectAssignStaff, policy.Resource{}); err != nil {
		return err
	}

	staff, err := s.userRepo.GetByID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("get staff: %w", err)
	}
	if staff == nil || staff.Role != entity.RoleStaff {
		return apperror.Forbidden("invalid staff user")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return apperror.NotFound("project not found")
	}

	assignment := &entity.ProjectStaff{
		ProjectID:  projectID,
		StaffID:    staffID,
		AssignedAt: time.Now(),
	}
	if err := s.projectRepo.AssignStaff(ctx, assignment); err != nil {
		return fmt.Errorf("assign staff: %w", err)
	}

	evt := event.New(event.TypeStaffAssigned, staffID, projectID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
		"staff_id":     staffID,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch staff assigned event", "error", err, "project_id", projectID)
	}

	return nil
}

// RemoveStaff hard-deletes the assignment and soft-removes the member from
// every project chat thread
func (s *projectServiceImpl) RemoveStaff(ctx context.Context, projectID, staffID string, actor *entity.User) error {
	if err := policy.Check(actor, policy.ProjectRemoveStaff, policy.Resource{}); err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return apperror.NotFound("project not found")
	}

	removed, err := s.projectRepo.RemoveStaff(ctx, projectID, staffID)
	if err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}
	if !removed {
		return apperror.NotFound("staff not assigned to this project")
	}

	evt := event.New(event.TypeStaffRemoved, staffID, projectID, actor.ID, map[string]interface{}{
		"project_name": project.Name,
		"staff_id":     staffID,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch staff removed event", "error", err, "project_id", projectID)
	}

	return nil
}

// AddUpdate appends a PROGRESS_UPDATE entry authored by assigned staff
func (s *projectServiceImpl) AddUpdate(ctx context.Context, projectID string, note string, progress int, actor *entity.User) (*entity.ProjectUpdate, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	assigned, err := s.projectRepo.IsStaffAssigned(ctx, projectID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if err := policy.Check(actor, policy.ProjectAddUpdate, policy.Resource{ActorAssigned: assigned}); err != nil {
		return nil, err
	}

	if progress < 0 || progress > 100 {
		return nil, apperror.BadRequest("progress must be between 0 and 100")
	}

	update := &entity.ProjectUpdate{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		StaffID:   actor.ID,
		EventType: entity.EventProgressUpdate,
		Progress:  progress,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.projectRepo.AddUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("add update: %w", err)
	}

	return update, nil
}

// ListUpdates returns the project's append-only event log, newest first
func (s *projectServiceImpl) ListUpdates(ctx context.Context, projectID string) ([]*entity.ProjectUpdate, error) {
	return s.projectRepo.ListUpdates(ctx, projectID)
}
