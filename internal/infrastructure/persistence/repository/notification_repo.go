package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// CreateBatch inserts the fan-out as one multi-row statement
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (id, user_id, title, message, type, read_at, created_at) VALUES `)

	args := make([]interface{}, 0, len(notifications)*7)
	for i, n := range notifications {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, n.ID, n.UserID, n.Title, n.Message, n.Type, n.ReadAt, n.CreatedAt)
	}

	_, err := pick(ctx, r.db).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to insert notifications", zap.Int("count", len(notifications)), zap.Error(err))
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT id, user_id, title, message, type, read_at, created_at FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead stamps a notification read for its owner
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	query := `UPDATE notifications SET read_at = ? WHERE id = ? AND user_id = ? AND read_at IS NULL`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, at, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
