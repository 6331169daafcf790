package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// ProcurementRepository implements port.ProcurementRepository
type ProcurementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProcurementRepository creates a new procurement repository
func NewProcurementRepository(db *sql.DB, logger *zap.Logger) port.ProcurementRepository {
	return &ProcurementRepository{db: db, logger: logger}
}

const requestColumns = `id, title, description, project_id, created_by_id, status, cost, approved_by_id, rejection_reason, created_at, updated_at`

// Create inserts a new procurement request
func (r *ProcurementRepository) Create(ctx context.Context, request *entity.ProcurementRequest) error {
	query := `
		INSERT INTO procurement_requests (id, title, description, project_id, created_by_id, status, cost, approved_by_id, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		request.ID,
		request.Title,
		request.Description,
		request.ProjectID,
		request.CreatedByID,
		request.Status,
		request.Cost.String(),
		request.ApprovedByID,
		request.RejectionReason,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create procurement request", zap.Error(err))
		return fmt.Errorf("failed to create procurement request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *ProcurementRepository) GetByID(ctx context.Context, id string) (*entity.ProcurementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM procurement_requests WHERE id = ?`

	var request entity.ProcurementRequest
	err := pick(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.Title,
		&request.Description,
		&request.ProjectID,
		&request.CreatedByID,
		&request.Status,
		&request.Cost,
		&request.ApprovedByID,
		&request.RejectionReason,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get procurement request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get procurement request: %w", err)
	}
	return &request, nil
}

// UpdateDetails rewrites the request title and description
func (r *ProcurementRepository) UpdateDetails(ctx context.Context, id, title, description string) error {
	query := `UPDATE procurement_requests SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, title, description, id)
	if err != nil {
		r.logger.Error("Failed to update procurement request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update procurement request: %w", err)
	}
	return nil
}

// ListAll retrieves every request, newest first
func (r *ProcurementRepository) ListAll(ctx context.Context) ([]*entity.ProcurementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM procurement_requests ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListByProject retrieves a project's requests
func (r *ProcurementRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.ProcurementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM procurement_requests WHERE project_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, projectID)
}

// ListByCreator retrieves the requests a staff member created
func (r *ProcurementRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.ProcurementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM procurement_requests WHERE created_by_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, creatorID)
}

// Submit moves DRAFT → SUBMITTED and stores the computed cost in one guarded
// statement; false means the row was not in DRAFT
func (r *ProcurementRepository) Submit(ctx context.Context, id string, cost decimal.Decimal) (bool, error) {
	query := `
		UPDATE procurement_requests
		SET status = ?, cost = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, entity.ProcurementSubmitted, cost.String(), id, entity.ProcurementDraft)
	if err != nil {
		r.logger.Error("Failed to submit procurement request", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to submit procurement request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Decide moves SUBMITTED → APPROVED/REJECTED; false means the row was not in
// SUBMITTED
func (r *ProcurementRepository) Decide(ctx context.Context, id string, status entity.ProcurementStatus, decidedByID, reason string) (bool, error) {
	query := `
		UPDATE procurement_requests
		SET status = ?, approved_by_id = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, status, decidedByID, reason, id, entity.ProcurementSubmitted)
	if err != nil {
		r.logger.Error("Failed to decide procurement request", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to decide procurement request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddItem inserts a new item
func (r *ProcurementRepository) AddItem(ctx context.Context, item *entity.ProcurementItem) error {
	query := `
		INSERT INTO procurement_items (id, request_id, name, quantity, unit, estimated_cost, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		item.ID,
		item.RequestID,
		item.Name,
		item.Quantity,
		item.Unit,
		costString(item.EstimatedCost),
		item.Type,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add procurement item", zap.String("request_id", item.RequestID), zap.Error(err))
		return fmt.Errorf("failed to add procurement item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID
func (r *ProcurementRepository) GetItem(ctx context.Context, itemID string) (*entity.ProcurementItem, error) {
	query := `SELECT id, request_id, name, quantity, unit, estimated_cost, type, created_at FROM procurement_items WHERE id = ?`

	var item entity.ProcurementItem
	var cost decimal.NullDecimal
	err := pick(ctx, r.db).QueryRowContext(ctx, query, itemID).Scan(
		&item.ID,
		&item.RequestID,
		&item.Name,
		&item.Quantity,
		&item.Unit,
		&cost,
		&item.Type,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get procurement item: %w", err)
	}
	if cost.Valid {
		item.EstimatedCost = &cost.Decimal
	}
	return &item, nil
}

// UpdateItem rewrites an item
func (r *ProcurementRepository) UpdateItem(ctx context.Context, item *entity.ProcurementItem) error {
	query := `
		UPDATE procurement_items
		SET name = ?, quantity = ?, unit = ?, estimated_cost = ?, type = ?
		WHERE id = ?
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		item.Name,
		item.Quantity,
		item.Unit,
		costString(item.EstimatedCost),
		item.Type,
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update procurement item", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update procurement item: %w", err)
	}
	return nil
}

// DeleteItem removes an item
func (r *ProcurementRepository) DeleteItem(ctx context.Context, itemID string) error {
	query := `DELETE FROM procurement_items WHERE id = ?`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, itemID)
	if err != nil {
		r.logger.Error("Failed to delete procurement item", zap.String("id", itemID), zap.Error(err))
		return fmt.Errorf("failed to delete procurement item: %w", err)
	}
	return nil
}

// ListItems retrieves a request's items in insertion order
func (r *ProcurementRepository) ListItems(ctx context.Context, requestID string) ([]*entity.ProcurementItem, error) {
	query := `SELECT id, request_id, name, quantity, unit, estimated_cost, type, created_at FROM procurement_items WHERE request_id = ? ORDER BY created_at`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list procurement items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ProcurementItem
	for rows.Next() {
		var item entity.ProcurementItem
		var cost decimal.NullDecimal
		err := rows.Scan(
			&item.ID,
			&item.RequestID,
			&item.Name,
			&item.Quantity,
			&item.Unit,
			&cost,
			&item.Type,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procurement item: %w", err)
		}
		if cost.Valid {
			item.EstimatedCost = &cost.Decimal
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *ProcurementRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.ProcurementRequest, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list procurement requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list procurement requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ProcurementRequest
	for rows.Next() {
		var request entity.ProcurementRequest
		err := rows.Scan(
			&request.ID,
			&request.Title,
			&request.Description,
			&request.ProjectID,
			&request.CreatedByID,
			&request.Status,
			&request.Cost,
			&request.ApprovedByID,
			&request.RejectionReason,
			&request.CreatedAt,
			&request.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procurement request: %w", err)
		}
		requests = append(requests, &request)
	}
	return requests, rows.Err()
}

func costString(cost *decimal.Decimal) interface{} {
	if cost == nil {
		return nil
	}
	return cost.String()
}

// Verify interface compliance
var _ port.ProcurementRepository = (*ProcurementRepository)(nil)
