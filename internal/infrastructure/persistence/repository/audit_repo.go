package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// AuditRepository implements port.AuditRepository
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Create appends one audit record
func (r *AuditRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity, entity_id, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.ActorID,
		log.Action,
		log.Entity,
		log.EntityID,
		log.Message,
		log.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit log", zap.Error(err))
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List retrieves a filtered page of the log (newest first) along with the
// total match count. Actor name and role are joined in for display.
func (r *AuditRepository) List(ctx context.Context, filter port.AuditFilter) ([]*entity.AuditLog, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if filter.Entity != "" {
		where += ` AND a.entity = ?`
		args = append(args, filter.Entity)
	}
	if filter.ActorID != "" {
		where += ` AND a.actor_id = ?`
		args = append(args, filter.ActorID)
	}
	if filter.From != nil {
		where += ` AND a.created_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where += ` AND a.created_at <= ?`
		args = append(args, *filter.To)
	}

	countQuery := `SELECT COUNT(1) FROM audit_logs a` + where
	var total int
	if err := pick(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count audit logs", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `
		SELECT a.id, a.actor_id, COALESCE(u.name, ''), COALESCE(u.role, ''), a.action, a.entity, a.entity_id, a.message, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id` + where + `
		ORDER BY a.created_at DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list audit logs", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.AuditLog
	for rows.Next() {
		var log entity.AuditLog
		err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.ActorName,
			&log.ActorRole,
			&log.Action,
			&log.Entity,
			&log.EntityID,
			&log.Message,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, &log)
	}
	return logs, total, rows.Err()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
