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

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, invoice_number, project_id, client_id, created_by_id, status, due_date,
	subtotal, tax, total, notes, rejection_reason, client_marked_paid, client_marked_paid_at,
	payment_confirmed_at, paid_at, file_url, receipt_url, created_at, updated_at`

// Create inserts the invoice and its lines in one transaction. The unique
// index on invoice_number surfaces a collision as
// port.ErrDuplicateInvoiceNumber so the caller can draw a fresh number.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLineItem) error {
	exec := pick(ctx, r.db)

	query := `
		INSERT INTO invoices (id, invoice_number, project_id, client_id, created_by_id, status, due_date,
			subtotal, tax, total, notes, rejection_reason, client_marked_paid, client_marked_paid_at,
			payment_confirmed_at, paid_at, file_url, receipt_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := exec.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.ProjectID,
		invoice.ClientID,
		invoice.CreatedByID,
		invoice.Status,
		invoice.DueDate,
		invoice.Subtotal.String(),
		invoice.Tax.String(),
		invoice.Total.String(),
		invoice.Notes,
		invoice.RejectionReason,
		invoice.ClientMarkedPaid,
		invoice.ClientMarkedPaidAt,
		invoice.PaymentConfirmedAt,
		invoice.PaidAt,
		invoice.FileURL,
		invoice.ReceiptURL,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "invoices.invoice_number") {
			return port.ErrDuplicateInvoiceNumber
		}
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	lineQuery := `
		INSERT INTO invoice_line_items (id, invoice_id, description, quantity, rate, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, line := range lines {
		_, err := exec.ExecContext(ctx, lineQuery,
			line.ID,
			line.InvoiceID,
			line.Description,
			line.Quantity,
			line.Rate.String(),
			line.Amount.String(),
		)
		if err != nil {
			r.logger.Error("Failed to create invoice line", zap.String("invoice_id", invoice.ID), zap.Error(err))
			return fmt.Errorf("failed to create invoice line: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	var invoice entity.Invoice
	err := pick(ctx, r.db).QueryRowContext(ctx, query, id).Scan(invoiceFields(&invoice)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

// ListAll retrieves every invoice, newest first
func (r *InvoiceRepository) ListAll(ctx context.Context) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListByClient retrieves a client's invoices
func (r *InvoiceRepository) ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE client_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

// ListByStaff retrieves invoices on the projects a staff member is assigned
// to, plus the ones they created
func (r *InvoiceRepository) ListByStaff(ctx context.Context, staffID string) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE created_by_id = ?
			OR project_id IN (SELECT project_id FROM project_staff WHERE staff_id = ?)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, staffID, staffID)
}

// ListLineItems retrieves an invoice's lines in insertion order
func (r *InvoiceRepository) ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	query := `SELECT id, invoice_id, description, quantity, rate, amount FROM invoice_line_items WHERE invoice_id = ? ORDER BY rowid`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InvoiceLineItem
	for rows.Next() {
		var line entity.InvoiceLineItem
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Description, &line.Quantity, &line.Rate, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

// Approve moves PENDING → APPROVED and stores the generated file URL; false
// means the row was not PENDING
func (r *InvoiceRepository) Approve(ctx context.Context, id, fileURL string) (bool, error) {
	query := `
		UPDATE invoices
		SET status = ?, file_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	return r.guarded(ctx, query, entity.InvoiceApproved, fileURL, id, entity.InvoicePending)
}

// Reject moves PENDING → REJECTED with a reason
func (r *InvoiceRepository) Reject(ctx context.Context, id, reason string) (bool, error) {
	query := `
		UPDATE invoices
		SET status = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	return r.guarded(ctx, query, entity.InvoiceRejected, reason, id, entity.InvoicePending)
}

// MarkClientPaid sets the advisory client-paid flag without touching status
func (r *InvoiceRepository) MarkClientPaid(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE invoices
		SET client_marked_paid = 1, client_marked_paid_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to mark invoice client-paid", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark invoice client-paid: %w", err)
	}
	return nil
}

// ConfirmPayment moves APPROVED → PAID with the receipt URL and payment
// timestamps; false means the row was not APPROVED
func (r *InvoiceRepository) ConfirmPayment(ctx context.Context, id, receiptURL string, at time.Time) (bool, error) {
	query := `
		UPDATE invoices
		SET status = ?, receipt_url = ?, payment_confirmed_at = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	return r.guarded(ctx, query, entity.InvoicePaid, receiptURL, at, at, id, entity.InvoiceApproved)
}

// SetFileURL stores a generated invoice PDF path
func (r *InvoiceRepository) SetFileURL(ctx context.Context, id, fileURL string) error {
	return r.setURL(ctx, id, "file_url", fileURL)
}

// SetReceiptURL stores a generated receipt PDF path
func (r *InvoiceRepository) SetReceiptURL(ctx context.Context, id, receiptURL string) error {
	return r.setURL(ctx, id, "receipt_url", receiptURL)
}

func (r *InvoiceRepository) setURL(ctx context.Context, id, column, url string) error {
	query := fmt.Sprintf(`UPDATE invoices SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, column)

	_, err := pick(ctx, r.db).ExecContext(ctx, query, url, id)
	if err != nil {
		r.logger.Error("Failed to set invoice URL", zap.String("id", id), zap.String("column", column), zap.Error(err))
		return fmt.Errorf("failed to set invoice %s: %w", column, err)
	}
	return nil
}

func (r *InvoiceRepository) guarded(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := pick(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update invoice", zap.Error(err))
		return false, fmt.Errorf("failed to update invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *InvoiceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		var invoice entity.Invoice
		if err := rows.Scan(invoiceFields(&invoice)...); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, &invoice)
	}
	return invoices, rows.Err()
}

// invoiceFields returns scan destinations in invoiceColumns order
func invoiceFields(invoice *entity.Invoice) []interface{} {
	return []interface{}{
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.ProjectID,
		&invoice.ClientID,
		&invoice.CreatedByID,
		&invoice.Status,
		&invoice.DueDate,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Total,
		&invoice.Notes,
		&invoice.RejectionReason,
		&invoice.ClientMarkedPaid,
		&invoice.ClientMarkedPaidAt,
		&invoice.PaymentConfirmedAt,
		&invoice.PaidAt,
		&invoice.FileURL,
		&invoice.ReceiptURL,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	}
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
