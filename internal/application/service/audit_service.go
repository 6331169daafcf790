package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// AuditService appends to and reads the activity log
type AuditService interface {
	// Log records an action. It is fire-and-forget: a failed insert is
	// logged but never propagated, so it cannot abort the transition that
	// produced it.
	Log(ctx context.Context, actorID string, action entity.AuditAction, target entity.AuditEntityType, entityID, message string)

	List(ctx context.Context, filter port.AuditFilter) (*ActivityPage, error)
}

// ActivityPage is one page of the activity log
type ActivityPage struct {
	Logs       []*entity.AuditLog `json:"logs"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type auditServiceImpl struct {
	auditRepo port.AuditRepository
	logger    Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo port.AuditRepository, logger Logger) AuditService {
	return &auditServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Log records an action in the audit log
func (s *auditServiceImpl) Log(ctx context.Context, actorID string, action entity.AuditAction, target entity.AuditEntityType, entityID, message string) {
	entry := &entity.AuditLog{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Entity:    target,
		EntityID:  entityID,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit log",
			"error", err,
			"actor_id", actorID,
			"action", action,
			"entity", target,
			"entity_id", entityID,
		)
	}
}

// List returns a filtered, paginated view of the activity log
func (s *auditServiceImpl) List(ctx context.Context, filter port.AuditFilter) (*ActivityPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	logs, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list activity logs", "error", err)
		return nil, fmt.Errorf("list activity logs: %w", err)
	}

	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}

	return &ActivityPage{
		Logs:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}
