package service

import (
	"context"
	"fmt"
	"time"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/policy"
)

// ChatService manages per-project threads and their membership. Membership
// mutations are idempotent: joining upserts the participant row and clears
// leftAt, leaving stamps leftAt without deleting the row, so rejoining
// restores history and unread windows stay consistent.
type ChatService interface {
	EnsureProjectThreads(ctx context.Context, projectID string) error
	AddClientToMainThread(ctx context.Context, projectID, clientID string) error
	AddStaffToProjectThreads(ctx context.Context, projectID, staffID string) error
	RemoveUserFromProjectChats(ctx context.Context, projectID, userID string) error

	ListThreads(ctx context.Context, projectID string, user *entity.User) ([]*entity.ChatThread, error)
	ListActiveParticipants(ctx context.Context, threadID string) ([]*entity.ChatParticipant, error)

	AdminJoin(ctx context.Context, threadID string, admin *entity.User) (*entity.ChatParticipant, error)
	AdminLeave(ctx context.Context, threadID string, admin *entity.User) error
	EnsureUserInThread(ctx context.Context, threadID, userID string) error
}

type chatServiceImpl struct {
	chatRepo    port.ChatRepository
	projectRepo port.ProjectRepository
	logger      Logger
}

// NewChatService creates a new ChatService
func NewChatService(chatRepo port.ChatRepository, projectRepo port.ProjectRepository, logger Logger) ChatService {
	return &chatServiceImpl{
		chatRepo:    chatRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// EnsureProjectThreads creates the MAIN and STAFF_ONLY threads if absent
func (s *chatServiceImpl) EnsureProjectThreads(ctx context.Context, projectID string) error {
	for _, threadType := range []entity.ChatThreadType{entity.ThreadMain, entity.ThreadStaffOnly} {
		if _, err := s.chatRepo.UpsertThread(ctx, projectID, threadType); err != nil {
			return fmt.Errorf("ensure %s thread: %w", threadType, err)
		}
	}
	return nil
}

// AddClientToMainThread makes the client an active participant of MAIN
func (s *chatServiceImpl) AddClientToMainThread(ctx context.Context, projectID, clientID string) error {
	thread, err := s.chatRepo.GetProjectThread(ctx, projectID, entity.ThreadMain)
	if err != nil {
		return fmt.Errorf("get main thread: %w", err)
	}
	if thread == nil {
		return nil
	}

	if _, err := s.chatRepo.UpsertParticipant(ctx, thread.ID, clientID); err != nil {
		return fmt.Errorf("add client to main thread: %w", err)
	}
	return nil
}

// AddStaffToProjectThreads makes the staff member an active participant of
// both MAIN and STAFF_ONLY
func (s *chatServiceImpl) AddStaffToProjectThreads(ctx context.Context, projectID, staffID string) error {
	threads, err := s.chatRepo.ListProjectThreads(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list project threads: %w", err)
	}

	for _, thread := range threads {
		if thread.Type != entity.ThreadMain && thread.Type != entity.ThreadStaffOnly {
			continue
		}
		if _, err := s.chatRepo.UpsertParticipant(ctx, thread.ID, staffID); err != nil {
			return fmt.Errorf("add staff to %s thread: %w", thread.Type, err)
		}
	}
	return nil
}

// RemoveUserFromProjectChats soft-leaves the user from every thread of the
// project
func (s *chatServiceImpl) RemoveUserFromProjectChats(ctx context.Context, projectID, userID string) error {
	return s.chatRepo.LeaveAllProjectThreads(ctx, projectID, userID, time.Now())
}

// ListThreads returns the project's threads, scoped by role: the client
// must own the project, staff must be assigned, admins always see them.
func (s *chatServiceImpl) ListThreads(ctx context.Context, projectID string, user *entity.User) ([]*entity.ChatThread, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	switch user.Role {
	case entity.RoleClient:
		if project.ClientID != user.ID {
			return nil, apperror.Forbidden("not your project")
		}
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, projectID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return nil, apperror.Forbidden("you are not assigned to this project")
		}
	}

	threads, err := s.chatRepo.ListProjectThreads(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	// clients never see the staff-only thread
	if user.Role == entity.RoleClient {
		visible := make([]*entity.ChatThread, 0, len(threads))
		for _, thread := range threads {
			if thread.Type != entity.ThreadStaffOnly {
				visible = append(visible, thread)
			}
		}
		threads = visible
	}

	return threads, nil
}

// ListActiveParticipants returns participants that have not left
func (s *chatServiceImpl) ListActiveParticipants(ctx context.Context, threadID string) ([]*entity.ChatParticipant, error) {
	participants, err := s.chatRepo.ListParticipants(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	active := make([]*entity.ChatParticipant, 0, len(participants))
	for _, p := range participants {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

// AdminJoin upserts the admin as an active participant. Calling it twice
// leaves exactly one active row.
func (s *chatServiceImpl) AdminJoin(ctx context.Context, threadID string, admin *entity.User) (*entity.ChatParticipant, error) {
	if err := policy.Check(admin, policy.ChatAdminJoin, policy.Resource{}); err != nil {
		return nil, err
	}

	thread, err := s.chatRepo.GetThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	if thread == nil {
		return nil, apperror.NotFound("thread not found")
	}

	participant, err := s.chatRepo.UpsertParticipant(ctx, threadID, admin.ID)
	if err != nil {
		return nil, fmt.Errorf("join thread: %w", err)
	}
	return participant, nil
}

// AdminLeave stamps the admin's participant row as left
func (s *chatServiceImpl) AdminLeave(ctx context.Context, threadID string, admin *entity.User) error {
	if err := policy.Check(admin, policy.ChatAdminLeave, policy.Resource{}); err != nil {
		return err
	}
	return s.chatRepo.LeaveThread(ctx, threadID, admin.ID, time.Now())
}

// EnsureUserInThread fails unless the user is an active participant
func (s *chatServiceImpl) EnsureUserInThread(ctx context.Context, threadID, userID string) error {
	participant, err := s.chatRepo.GetParticipant(ctx, threadID, userID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if participant == nil || !participant.Active() {
		return apperror.Forbidden("not part of this chat")
	}
	return nil
}
