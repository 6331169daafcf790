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

// CreateTimesheetInput carries the fields of a timesheet entry
type CreateTimesheetInput struct {
	ProjectID string
	EntryDate time.Time
	Hours     string
	Notes     string
}

// TimesheetService drives timesheet logging, review and reporting
type TimesheetService interface {
	Create(ctx context.Context, input CreateTimesheetInput, actor *entity.User) (*entity.TimesheetEntry, error)
	List(ctx context.Context, filter port.TimesheetFilter, actor *entity.User) ([]*entity.TimesheetEntry, error)
	Approve(ctx context.Context, id string, actor *entity.User) (*entity.TimesheetEntry, error)
	Reject(ctx context.Context, id, reason string, actor *entity.User) (*entity.TimesheetEntry, error)
	Delete(ctx context.Context, id string, actor *entity.User) error

	// Export produces the admin report workbook over the filtered entries
	Export(ctx context.Context, filter port.TimesheetFilter, actor *entity.User) ([]byte, string, error)
}

type timesheetServiceImpl struct {
	timesheetRepo port.TimesheetRepository
	projectRepo   port.ProjectRepository
	userRepo      port.UserRepository
	exporter      port.TimesheetExporter
	events        dispatcher.Dispatcher
	logger        Logger
}

// NewTimesheetService creates a new TimesheetService
func NewTimesheetService(
	timesheetRepo port.TimesheetRepository,
	projectRepo port.ProjectRepository,
	userRepo port.UserRepository,
	exporter port.TimesheetExporter,
	events dispatcher.Dispatcher,
	logger Logger,
) TimesheetService {
	return &timesheetServiceImpl{
		timesheetRepo: timesheetRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		exporter:      exporter,
		events:        events,
		logger:        logger,
	}
}

// Create logs hours for an assigned staff member; the entry starts PENDING
func (s *timesheetServiceImpl) Create(ctx context.Context, input CreateTimesheetInput, actor *entity.User) (*entity.TimesheetEntry, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	assigned, err := s.projectRepo.IsStaffAssigned(ctx, input.ProjectID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if err := policy.Check(actor, policy.TimesheetCreate, policy.Resource{ActorAssigned: assigned}); err != nil {
		return nil, err
	}

	hours, err := parseAmount(input.Hours, "hours")
	if err != nil {
		return nil, err
	}
	if hours.IsZero() {
		return nil, apperror.BadRequest("hours must be positive")
	}
	if hours.GreaterThan(maxDailyHours) {
		return nil, apperror.BadRequest("hours cannot exceed 24 per entry")
	}

	entry := &entity.TimesheetEntry{
		ID:          uuid.NewString(),
		ProjectID:   input.ProjectID,
		StaffID:     actor.ID,
		EntryDate:   input.EntryDate,
		Hours:       hours,
		Notes:       input.Notes,
		Status:      entity.TimesheetPending,
		SubmittedAt: time.Now(),
	}
	if err := s.timesheetRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create timesheet entry: %w", err)
	}

	evt := event.New(event.TypeTimesheetCreated, entry.ID, entry.ProjectID, actor.ID, map[string]interface{}{
		"hours": hours.String(),
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch timesheet created event", "error", err, "entry_id", entry.ID)
	}

	return entry, nil
}

// List returns entries scoped by role: staff see only their own, clients
// none, admins whatever the filter selects
func (s *timesheetServiceImpl) List(ctx context.Context, filter port.TimesheetFilter, actor *entity.User) ([]*entity.TimesheetEntry, error) {
	switch actor.Role {
	case entity.RoleAdmin:
	case entity.RoleStaff:
		filter.StaffID = actor.ID
	default:
		return nil, apperror.Forbidden("clients cannot view timesheets")
	}
	return s.timesheetRepo.List(ctx, filter)
}

// Approve moves PENDING → APPROVED with the reviewer recorded
func (s *timesheetServiceImpl) Approve(ctx context.Context, id string, actor *entity.User) (*entity.TimesheetEntry, error) {
	return s.review(ctx, id, actor, workflow.TriggerApprove, entity.TimesheetApproved, "")
}

// Reject moves PENDING → REJECTED with a reason
func (s *timesheetServiceImpl) Reject(ctx context.Context, id, reason string, actor *entity.User) (*entity.TimesheetEntry, error) {
	return s.review(ctx, id, actor, workflow.TriggerReject, entity.TimesheetRejected, reason)
}

func (s *timesheetServiceImpl) review(
	ctx context.Context,
	id string,
	actor *entity.User,
	trigger workflow.Trigger,
	target entity.TimesheetStatus,
	reason string,
) (*entity.TimesheetEntry, error) {
	if err := policy.Check(actor, policy.TimesheetReview, policy.Resource{}); err != nil {
		return nil, err
	}

	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewTimesheetMachine(entry.Status)
	if err != nil {
		return nil, fmt.Errorf("build timesheet machine: %w", err)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, apperror.Forbidden("only pending entries can be reviewed")
	}

	now := time.Now()
	moved, err := s.timesheetRepo.Review(ctx, id, target, actor.ID, reason, now)
	if err != nil {
		return nil, fmt.Errorf("review entry: %w", err)
	}
	if !moved {
		return nil, apperror.Forbidden("only pending entries can be reviewed")
	}

	entry.Status = target
	entry.ReviewedByID = &actor.ID
	entry.ReviewedAt = &now
	entry.RejectionReason = reason

	eventType := event.TypeTimesheetApproved
	if target == entity.TimesheetRejected {
		eventType = event.TypeTimesheetRejected
	}
	evt := event.New(eventType, id, entry.ProjectID, actor.ID, map[string]interface{}{
		"staff_id": entry.StaffID,
		"reason":   reason,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch timesheet review event", "error", err, "entry_id", id)
	}

	return entry, nil
}

// Delete removes a pending entry owned by the actor. Reviewed entries are
// immutable.
func (s *timesheetServiceImpl) Delete(ctx context.Context, id string, actor *entity.User) error {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.TimesheetDelete, policy.Resource{
		CreatedByID: entry.StaffID,
		Status:      string(entry.Status),
	}); err != nil {
		return err
	}

	deleted, err := s.timesheetRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if !deleted {
		return apperror.Forbidden("reviewed entries cannot be deleted")
	}

	evt := event.New(event.TypeTimesheetDeleted, id, entry.ProjectID, actor.ID, nil)
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch timesheet deleted event", "error", err, "entry_id", id)
	}

	return nil
}

// Export renders the filtered entries to a workbook for admins
func (s *timesheetServiceImpl) Export(ctx context.Context, filter port.TimesheetFilter, actor *entity.User) ([]byte, string, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, "", apperror.Forbidden("only admins can export timesheets")
	}

	entries, err := s.timesheetRepo.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}

	users := make(map[string]*entity.User)
	projects := make(map[string]*entity.Project)
	for _, entry := range entries {
		if _, ok := users[entry.StaffID]; !ok {
			user, err := s.userRepo.GetByID(ctx, entry.StaffID)
			if err != nil {
				return nil, "", fmt.Errorf("get staff: %w", err)
			}
			users[entry.StaffID] = user
		}
		if _, ok := projects[entry.ProjectID]; !ok {
			project, err := s.projectRepo.GetByID(ctx, entry.ProjectID)
			if err != nil {
				return nil, "", fmt.Errorf("get project: %w", err)
			}
			projects[entry.ProjectID] = project
		}
	}

	content, err := s.exporter.Export(ctx, entries, users, projects)
	if err != nil {
		return nil, "", fmt.Errorf("export timesheets: %w", err)
	}

	name := fmt.Sprintf("timesheets-%s.xlsx", time.Now().Format("2006-01-02"))
	return content, name, nil
}

func (s *timesheetServiceImpl) getEntry(ctx context.Context, id string) (*entity.TimesheetEntry, error) {
	entry, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get timesheet entry: %w", err)
	}
	if entry == nil {
		return nil, apperror.NotFound("timesheet entry not found")
	}
	return entry, nil
}
