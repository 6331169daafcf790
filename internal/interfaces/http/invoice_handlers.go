package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/service"
)

// InvoiceLineRequest is one billed line in an invoice payload
type InvoiceLineRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Rate        string `json:"rate" binding:"required"`
}

// CreateInvoiceRequest is the payload for POST /api/invoices
type CreateInvoiceRequest struct {
	ProjectID string               `json:"project_id" binding:"required"`
	DueDate   time.Time            `json:"due_date" binding:"required"`
	Tax       string               `json:"tax"`
	Notes     string               `json:"notes"`
	Lines     []InvoiceLineRequest `json:"lines" binding:"required"`
}

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	lines := make([]service.InvoiceLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.InvoiceLineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			Rate:        line.Rate,
		})
	}

	invoice, err := h.services.Invoices.Create(c.Request.Context(), service.CreateInvoiceInput{
		ProjectID: req.ProjectID,
		DueDate:   req.DueDate,
		Tax:       req.Tax,
		Notes:     req.Notes,
		Lines:     lines,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, invoice)
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	invoices, err := h.services.Invoices.ListForUser(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoices)
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	invoice, err := h.services.Invoices.GetByID(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// ListInvoiceLines handles GET /api/invoices/:id/lines
func (h *Handlers) ListInvoiceLines(c *gin.Context) {
	lines, err := h.services.Invoices.ListLineItems(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, lines)
}

// ApproveInvoice handles POST /api/invoices/:id/approve
func (h *Handlers) ApproveInvoice(c *gin.Context) {
	invoice, err := h.services.Invoices.Approve(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// RejectInvoice handles POST /api/invoices/:id/reject
func (h *Handlers) RejectInvoice(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	invoice, err := h.services.Invoices.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// MarkInvoicePaid handles POST /api/invoices/:id/mark-paid
func (h *Handlers) MarkInvoicePaid(c *gin.Context) {
	invoice, err := h.services.Invoices.ClientMarkPaid(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// ConfirmInvoicePayment handles POST /api/invoices/:id/confirm-payment
func (h *Handlers) ConfirmInvoicePayment(c *gin.Context) {
	invoice, err := h.services.Invoices.ConfirmPayment(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// DownloadInvoiceFile handles GET /api/invoices/:id/file
func (h *Handlers) DownloadInvoiceFile(c *gin.Context) {
	content, name, err := h.services.Invoices.GetInvoiceFile(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, name, content)
}

// DownloadReceiptFile handles GET /api/invoices/:id/receipt
func (h *Handlers) DownloadReceiptFile(c *gin.Context) {
	content, name, err := h.services.Invoices.GetReceiptFile(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, name, content)
}

func servePDF(c *gin.Context, name string, content []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
