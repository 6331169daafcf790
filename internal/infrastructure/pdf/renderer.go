// Package pdf renders invoice and receipt documents. Rendering is pure: the
// bytes are a function of the InvoiceDocument only, so regenerating from the
// same data yields an equivalent file.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"projectdesk/internal/application/port"
)

// Renderer implements port.PDFRenderer with gofpdf
type Renderer struct {
	companyName string
	logger      *zap.Logger
}

// NewRenderer creates a new PDF renderer
func NewRenderer(companyName string, logger *zap.Logger) port.PDFRenderer {
	return &Renderer{
		companyName: companyName,
		logger:      logger,
	}
}

// RenderInvoice produces the invoice PDF
func (r *Renderer) RenderInvoice(doc port.InvoiceDocument) ([]byte, error) {
	pdf := r.newPage("INVOICE")

	r.header(pdf, doc)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(90, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, line.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, line.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	r.totalRow(pdf, "Subtotal", doc.Invoice.Subtotal.StringFixed(2), false)
	r.totalRow(pdf, "Tax", doc.Invoice.Tax.StringFixed(2), false)
	r.totalRow(pdf, "Total", doc.Invoice.Total.StringFixed(2), true)

	if doc.Invoice.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(185, 5, "Notes: "+doc.Invoice.Notes, "", "L", false)
	}

	return r.output(pdf)
}

// RenderReceipt produces the payment receipt PDF
func (r *Renderer) RenderReceipt(doc port.InvoiceDocument) ([]byte, error) {
	pdf := r.newPage("PAYMENT RECEIPT")

	r.header(pdf, doc)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	paidAt := time.Now()
	if doc.Invoice.PaidAt != nil {
		paidAt = *doc.Invoice.PaidAt
	}
	pdf.MultiCell(185, 7, fmt.Sprintf(
		"Payment of %s for invoice %s was received and confirmed on %s.",
		doc.Invoice.Total.StringFixed(2),
		doc.Invoice.InvoiceNumber,
		paidAt.Format("2 January 2006"),
	), "", "L", false)

	pdf.Ln(6)
	r.totalRow(pdf, "Amount paid", doc.Invoice.Total.StringFixed(2), true)

	return r.output(pdf)
}

func (r *Renderer) newPage(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(185, 12, title, "", 1, "L", false, 0, "")
	return pdf
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, doc port.InvoiceDocument) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(185, 5, r.companyName, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, "Invoice number:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(145, 6, doc.Invoice.InvoiceNumber, "", 1, "L", false, 0, "")

	if doc.Project != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, "Project:", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(145, 6, doc.Project.Name, "", 1, "L", false, 0, "")
	}
	if doc.Client != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, "Billed to:", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		name := doc.Client.Name
		if doc.Client.CompanyName != "" {
			name = fmt.Sprintf("%s (%s)", name, doc.Client.CompanyName)
		}
		pdf.CellFormat(145, 6, name, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, "Due date:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(145, 6, doc.Invoice.DueDate.Format("2 January 2006"), "", 1, "L", false, 0, "")
}

func (r *Renderer) totalRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(150, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, value, "T", 1, "R", false, 0, "")
}

func (r *Renderer) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("Failed to render PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify interface compliance
var _ port.PDFRenderer = (*Renderer)(nil)
