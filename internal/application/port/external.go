package port

import (
	"context"

	"projectdesk/internal/domain/entity"
)

// InvoiceDocument bundles everything a renderer needs; renderers are pure
// functions of this data.
type InvoiceDocument struct {
	Invoice *entity.Invoice
	Lines   []*entity.InvoiceLineItem
	Project *entity.Project
	Client  *entity.User
}

// PDFRenderer renders invoice and receipt artifacts. The workflow calls
// these only on first approval / first payment confirmation and persists the
// resulting URL, never regenerating once set.
type PDFRenderer interface {
	RenderInvoice(doc InvoiceDocument) ([]byte, error)
	RenderReceipt(doc InvoiceDocument) ([]byte, error)
}

// TimesheetExporter produces the admin timesheet report workbook
type TimesheetExporter interface {
	Export(ctx context.Context, entries []*entity.TimesheetEntry, users map[string]*entity.User, projects map[string]*entity.Project) ([]byte, error)
}
