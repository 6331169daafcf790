package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

// PurchaseOrderRepository implements port.PurchaseOrderRepository
type PurchaseOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *sql.DB, logger *zap.Logger) port.PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db, logger: logger}
}

const poColumns = `id, order_number, request_id, ordered_by_id, status, ordered_at, delivered_at, created_at`

// Create inserts the purchase order. The unique index on request_id turns a
// concurrent duplicate into the same forbidden error the service pre-check
// produces.
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, order_number, request_id, ordered_by_id, status, ordered_at, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		po.ID,
		po.OrderNumber,
		po.RequestID,
		po.OrderedByID,
		po.Status,
		po.OrderedAt,
		po.DeliveredAt,
		po.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Forbidden("a purchase order already exists for this request")
		}
		r.logger.Error("Failed to create purchase order", zap.Error(err))
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase order by ID
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE id = ?`
	return r.scanOne(pick(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByRequestID retrieves the order issued from a request
func (r *PurchaseOrderRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE request_id = ?`
	return r.scanOne(pick(ctx, r.db).QueryRowContext(ctx, query, requestID))
}

// UpdateStatus moves the order from fromStatus to toStatus, stamping the
// matching timestamp; false means the row was not in fromStatus
func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.PurchaseOrderStatus, at time.Time) (bool, error) {
	var query string
	switch toStatus {
	case entity.PurchaseOrderOrdered:
		query = `UPDATE purchase_orders SET status = ?, ordered_at = ? WHERE id = ? AND status = ?`
	case entity.PurchaseOrderDelivered:
		query = `UPDATE purchase_orders SET status = ?, delivered_at = ? WHERE id = ? AND status = ?`
	default:
		return false, fmt.Errorf("unsupported purchase order status %q", toStatus)
	}

	result, err := pick(ctx, r.db).ExecContext(ctx, query, toStatus, at, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to update purchase order status", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *PurchaseOrderRepository) scanOne(row *sql.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := row.Scan(
		&po.ID,
		&po.OrderNumber,
		&po.RequestID,
		&po.OrderedByID,
		&po.Status,
		&po.OrderedAt,
		&po.DeliveredAt,
		&po.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return &po, nil
}

// Verify interface compliance
var _ port.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)
