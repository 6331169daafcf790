package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// NotificationService fans out and reads persisted notifications
type NotificationService interface {
	// NotifyAdmins inserts one notification per admin user in a single
	// batch
	NotifyAdmins(ctx context.Context, title, message, notificationType string) error

	// NotifyUsers inserts one notification per listed user in a single
	// batch
	NotifyUsers(ctx context.Context, userIDs []string, title, message, notificationType string) error

	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	userRepo port.UserRepository,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// NotifyAdmins sends a notification to every admin user
func (s *notificationServiceImpl) NotifyAdmins(ctx context.Context, title, message, notificationType string) error {
	admins, err := s.userRepo.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to list admins for notification", "error", err)
		return fmt.Errorf("list admins: %w", err)
	}

	ids := make([]string, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.ID)
	}

	return s.NotifyUsers(ctx, ids, title, message, notificationType)
}

// NotifyUsers sends a notification to each listed user as one bulk insert
func (s *notificationServiceImpl) NotifyUsers(ctx context.Context, userIDs []string, title, message, notificationType string) error {
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	notifications := make([]*entity.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, &entity.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      notificationType,
			CreatedAt: now,
		})
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("Failed to insert notifications",
			"error", err,
			"recipients", len(notifications),
			"type", notificationType,
		)
		return fmt.Errorf("insert notifications: %w", err)
	}

	return nil
}

// ListForUser returns a user's notifications, newest first
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one notification read for its owner
func (s *notificationServiceImpl) MarkRead(ctx context.Context, id, userID string) error {
	return s.notificationRepo.MarkRead(ctx, id, userID, time.Now())
}
