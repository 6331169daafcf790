package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the persisted invoice lifecycle state. "Overdue" is never
// persisted; it is a display projection, see DisplayStatus.
type InvoiceStatus string

const (
	InvoiceDraft    InvoiceStatus = "DRAFT"
	InvoicePending  InvoiceStatus = "PENDING"
	InvoiceApproved InvoiceStatus = "APPROVED"
	InvoiceRejected InvoiceStatus = "REJECTED"
	InvoicePaid     InvoiceStatus = "PAID"
)

// Invoice totals are computed from line items at creation time and never
// silently recomputed. ClientMarkedPaid is advisory; only admin payment
// confirmation moves the status to PAID.
type Invoice struct {
	ID                 string          `json:"id"`
	InvoiceNumber      string          `json:"invoice_number"`
	ProjectID          string          `json:"project_id"`
	ClientID           string          `json:"client_id"`
	CreatedByID        string          `json:"created_by_id"`
	Status             InvoiceStatus   `json:"status"`
	DueDate            time.Time       `json:"due_date"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
	Notes              string          `json:"notes,omitempty"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	ClientMarkedPaid   bool            `json:"client_marked_paid"`
	ClientMarkedPaidAt *time.Time      `json:"client_marked_paid_at,omitempty"`
	PaymentConfirmedAt *time.Time      `json:"payment_confirmed_at,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	FileURL            string          `json:"file_url,omitempty"`
	ReceiptURL         string          `json:"receipt_url,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// InvoiceLineItem is one billed line; Amount = Quantity × Rate
type InvoiceLineItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Client-facing display values derived from stored fields
const (
	DisplayPaid    = "Paid"
	DisplayOverdue = "Overdue"
	DisplayPending = "Pending"
)

// DisplayStatus is the single projection used everywhere a client-facing
// invoice status is rendered. It is computed at read time from the stored
// status and due date and never persisted.
func DisplayStatus(inv *Invoice, now time.Time) string {
	if inv.Status == InvoicePaid {
		return DisplayPaid
	}
	if (inv.Status == InvoicePending || inv.Status == InvoiceApproved) && now.After(inv.DueDate) {
		return DisplayOverdue
	}
	return DisplayPending
}
