package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// TimesheetRepository implements port.TimesheetRepository
type TimesheetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTimesheetRepository creates a new timesheet repository
func NewTimesheetRepository(db *sql.DB, logger *zap.Logger) port.TimesheetRepository {
	return &TimesheetRepository{db: db, logger: logger}
}

const timesheetColumns = `id, project_id, staff_id, entry_date, hours, notes, status, reviewed_by_id, reviewed_at, rejection_reason, submitted_at`

// Create inserts a new timesheet entry
func (r *TimesheetRepository) Create(ctx context.Context, entry *entity.TimesheetEntry) error {
	query := `
		INSERT INTO timesheet_entries (id, project_id, staff_id, entry_date, hours, notes, status, reviewed_by_id, reviewed_at, rejection_reason, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.ProjectID,
		entry.StaffID,
		entry.EntryDate,
		entry.Hours.String(),
		entry.Notes,
		entry.Status,
		entry.ReviewedByID,
		entry.ReviewedAt,
		entry.RejectionReason,
		entry.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create timesheet entry", zap.Error(err))
		return fmt.Errorf("failed to create timesheet entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by ID
func (r *TimesheetRepository) GetByID(ctx context.Context, id string) (*entity.TimesheetEntry, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheet_entries WHERE id = ?`

	var entry entity.TimesheetEntry
	err := pick(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.ProjectID,
		&entry.StaffID,
		&entry.EntryDate,
		&entry.Hours,
		&entry.Notes,
		&entry.Status,
		&entry.ReviewedByID,
		&entry.ReviewedAt,
		&entry.RejectionReason,
		&entry.SubmittedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timesheet entry: %w", err)
	}
	return &entry, nil
}

// List retrieves entries matching the filter, newest first
func (r *TimesheetRepository) List(ctx context.Context, filter port.TimesheetFilter) ([]*entity.TimesheetEntry, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheet_entries WHERE 1=1`
	var args []interface{}

	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.StaffID != "" {
		query += ` AND staff_id = ?`
		args = append(args, filter.StaffID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		query += ` AND entry_date >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND entry_date <= ?`
		args = append(args, *filter.To)
	}
	query += ` ORDER BY entry_date DESC, submitted_at DESC`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list timesheet entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.TimesheetEntry
	for rows.Next() {
		var entry entity.TimesheetEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.StaffID,
			&entry.EntryDate,
			&entry.Hours,
			&entry.Notes,
			&entry.Status,
			&entry.ReviewedByID,
			&entry.ReviewedAt,
			&entry.RejectionReason,
			&entry.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Review moves PENDING → APPROVED/REJECTED with the reviewer recorded; false
// means the row was not PENDING
func (r *TimesheetRepository) Review(ctx context.Context, id string, status entity.TimesheetStatus, reviewerID, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE timesheet_entries
		SET status = ?, reviewed_by_id = ?, reviewed_at = ?, rejection_reason = ?
		WHERE id = ? AND status = ?
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, status, reviewerID, at, reason, id, entity.TimesheetPending)
	if err != nil {
		r.logger.Error("Failed to review timesheet entry", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to review timesheet entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes the entry only while it is still PENDING; false means it
// was already reviewed
func (r *TimesheetRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM timesheet_entries WHERE id = ? AND status = ?`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, id, entity.TimesheetPending)
	if err != nil {
		r.logger.Error("Failed to delete timesheet entry", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete timesheet entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Verify interface compliance
var _ port.TimesheetRepository = (*TimesheetRepository)(nil)
