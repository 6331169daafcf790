package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/event"
	"projectdesk/internal/domain/policy"
	"projectdesk/internal/domain/workflow"
)

// CreateInvoiceInput carries the fields of an invoice creation request
type CreateInvoiceInput struct {
	ProjectID string
	DueDate   time.Time
	Tax       string
	Notes     string
	Lines     []InvoiceLineInput
}

// InvoiceLineInput carries one billed line
type InvoiceLineInput struct {
	Description string
	Quantity    int
	Rate        string
}

// InvoiceView pairs an invoice with its client-facing display status,
// computed at read time
type InvoiceView struct {
	*entity.Invoice
	DisplayStatus string `json:"display_status"`
}

// InvoiceService drives the invoice lifecycle. Invoice and receipt PDFs are
// generated lazily at the transition that first needs them and the resulting
// URL is persisted, never regenerated.
type InvoiceService interface {
	Create(ctx context.Context, input CreateInvoiceInput, actor *entity.User) (*entity.Invoice, error)
	GetByID(ctx context.Context, id string, actor *entity.User) (*InvoiceView, error)
	ListForUser(ctx context.Context, actor *entity.User) ([]*InvoiceView, error)
	ListLineItems(ctx context.Context, invoiceID string, actor *entity.User) ([]*entity.InvoiceLineItem, error)

	Approve(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error)
	Reject(ctx context.Context, id, reason string, actor *entity.User) (*entity.Invoice, error)
	ClientMarkPaid(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error)
	ConfirmPayment(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error)

	GetInvoiceFile(ctx context.Context, id string, actor *entity.User) ([]byte, string, error)
	GetReceiptFile(ctx context.Context, id string, actor *entity.User) ([]byte, string, error)
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	projectRepo port.ProjectRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	renderer    port.PDFRenderer
	storage     port.FileStorage
	events      dispatcher.Dispatcher
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	projectRepo port.ProjectRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	renderer port.PDFRenderer,
	storage port.FileStorage,
	events dispatcher.Dispatcher,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		renderer:    renderer,
		storage:     storage,
		events:      events,
		logger:      logger,
	}
}

// Create writes the invoice and its lines together. Totals are computed here
// once and stored; no later operation recomputes them.
func (s *invoiceServiceImpl) Create(ctx context.Context, input CreateInvoiceInput, actor *entity.User) (*entity.Invoice, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	assigned := false
	if actor.Role == entity.RoleStaff {
		assigned, err = s.projectRepo.IsStaffAssigned(ctx, input.ProjectID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
	}
	if err := policy.Check(actor, policy.InvoiceCreate, policy.Resource{ActorAssigned: assigned}); err != nil {
		return nil, err
	}

	if len(input.Lines) == 0 {
		return nil, apperror.BadRequest("an invoice needs at least one line item")
	}

	invoiceID := uuid.NewString()
	lines := make([]*entity.InvoiceLineItem, 0, len(input.Lines))
	for _, in := range input.Lines {
		if in.Quantity <= 0 {
			return nil, apperror.BadRequest("line quantity must be positive")
		}
		rate, err := parseAmount(in.Rate, "rate")
		if err != nil {
			return nil, err
		}
		lines = append(lines, &entity.InvoiceLineItem{
			ID:          uuid.NewString(),
			InvoiceID:   invoiceID,
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        rate,
			Amount:      entity.LineAmount(in.Quantity, rate),
		})
	}

	tax, err := parseAmount(defaultAmount(input.Tax), "tax")
	if err != nil {
		return nil, err
	}
	subtotal := entity.InvoiceSubtotal(lines)

	now := time.Now()
	invoice := &entity.Invoice{
		ID:            invoiceID,
		InvoiceNumber: newInvoiceNumber(now),
		ProjectID:     input.ProjectID,
		ClientID:      project.ClientID,
		CreatedByID:   actor.ID,
		Status:        entity.InvoicePending,
		DueDate:       input.DueDate,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         entity.InvoiceTotal(subtotal, tax),
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.invoiceRepo.Create(ctx, invoice, lines)
	// the random suffix can collide within a year; draw a fresh number and
	// retry before giving up
	for attempts := 0; errors.Is(err, port.ErrDuplicateInvoiceNumber) && attempts < 3; attempts++ {
		invoice.InvoiceNumber = newInvoiceNumber(now)
		err = s.invoiceRepo.Create(ctx, invoice, lines)
	}
	if err != nil {
		s.logger.Error("Failed to create invoice", "error", err, "project_id", input.ProjectID)
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	evt := event.New(event.TypeInvoiceCreated, invoice.ID, invoice.ProjectID, actor.ID, map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
		"client_id":      invoice.ClientID,
		"total":          invoice.Total.String(),
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch invoice created event", "error", err, "invoice_id", invoice.ID)
	}

	return invoice, nil
}

// GetByID returns an invoice visible to the actor with its display status
func (s *invoiceServiceImpl) GetByID(ctx context.Context, id string, actor *entity.User) (*InvoiceView, error) {
	invoice, err := s.getVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: invoice, DisplayStatus: entity.DisplayStatus(invoice, time.Now())}, nil
}

// ListForUser returns the invoices the actor may see, each with its display
// status
func (s *invoiceServiceImpl) ListForUser(ctx context.Context, actor *entity.User) ([]*InvoiceView, error) {
	var (
		invoices []*entity.Invoice
		err      error
	)
	switch actor.Role {
	case entity.RoleAdmin:
		invoices, err = s.invoiceRepo.ListAll(ctx)
	case entity.RoleStaff:
		invoices, err = s.invoiceRepo.ListByStaff(ctx, actor.ID)
	case entity.RoleClient:
		invoices, err = s.invoiceRepo.ListByClient(ctx, actor.ID)
	default:
		return nil, apperror.Forbidden("invalid role")
	}
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	now := time.Now()
	views := make([]*InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, &InvoiceView{Invoice: inv, DisplayStatus: entity.DisplayStatus(inv, now)})
	}
	return views, nil
}

// ListLineItems returns an invoice's lines, scoped like the invoice itself
func (s *invoiceServiceImpl) ListLineItems(ctx context.Context, invoiceID string, actor *entity.User) ([]*entity.InvoiceLineItem, error) {
	if _, err := s.getVisible(ctx, invoiceID, actor); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListLineItems(ctx, invoiceID)
}

// Approve moves PENDING → APPROVED. The invoice PDF is rendered on the first
// approval and its URL stored; the guarded update keeps a concurrent second
// approval from overwriting it.
func (s *invoiceServiceImpl) Approve(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error) {
	if err := policy.Check(actor, policy.InvoiceApprove, policy.Resource{}); err != nil {
		return nil, err
	}

	invoice, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewInvoiceMachine(invoice.Status)
	if err != nil {
		return nil, fmt.Errorf("build invoice machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
		return nil, apperror.Forbidden("only pending invoices can be approved")
	}

	fileURL := invoice.FileURL
	rendered := false
	if fileURL == "" {
		fileURL, err = s.renderAndStore(ctx, invoice, false)
		if err != nil {
			return nil, err
		}
		rendered = true
	}

	moved, err := s.invoiceRepo.Approve(ctx, id, fileURL)
	if err != nil {
		return nil, fmt.Errorf("approve invoice: %w", err)
	}
	if !moved {
		// a concurrent approval won; discard the PDF we just stored so its
		// file URL is the only one left behind
		if rendered {
			if delErr := s.storage.Delete(ctx, fileURL); delErr != nil {
				s.logger.Error("Failed to remove unused invoice file", "error", delErr, "path", fileURL)
			}
		}
		return nil, apperror.Forbidden("only pending invoices can be approved")
	}

	invoice.Status = entity.InvoiceApproved
	invoice.FileURL = fileURL

	evt := event.New(event.TypeInvoiceApproved, id, invoice.ProjectID, actor.ID, map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
		"client_id":      invoice.ClientID,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch invoice approved event", "error", err, "invoice_id", id)
	}

	return invoice, nil
}

// Reject moves PENDING → REJECTED with a reason
func (s *invoiceServiceImpl) Reject(ctx context.Context, id, reason string, actor *entity.User) (*entity.Invoice, error) {
	if err := policy.Check(actor, policy.InvoiceReject, policy.Resource{}); err != nil {
		return nil, err
	}

	invoice, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewInvoiceMachine(invoice.Status)
	if err != nil {
		return nil, fmt.Errorf("build invoice machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerReject); err != nil {
		return nil, apperror.Forbidden("only pending invoices can be rejected")
	}

	moved, err := s.invoiceRepo.Reject(ctx, id, reason)
	if err != nil {
		return nil, fmt.Errorf("reject invoice: %w", err)
	}
	if !moved {
		return nil, apperror.Forbidden("only pending invoices can be rejected")
	}

	invoice.Status = entity.InvoiceRejected
	invoice.RejectionReason = reason

	evt := event.New(event.TypeInvoiceRejected, id, invoice.ProjectID, actor.ID, map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
		"created_by":     invoice.CreatedByID,
		"reason":         reason,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch invoice rejected event", "error", err, "invoice_id", id)
	}

	return invoice, nil
}

// ClientMarkPaid records the owning client's payment claim. It is advisory:
// the claim is accepted in any status, only the flag and timestamp change,
// and the status stays where it is until an admin confirms the payment.
func (s *invoiceServiceImpl) ClientMarkPaid(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error) {
	invoice, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Check(actor, policy.InvoiceMarkPaid, policy.Resource{ProjectClientID: invoice.ClientID}); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.invoiceRepo.MarkClientPaid(ctx, id, now); err != nil {
		return nil, fmt.Errorf("mark client paid: %w", err)
	}

	invoice.ClientMarkedPaid = true
	invoice.ClientMarkedPaidAt = &now

	evt := event.New(event.TypeInvoiceClientMarkedPaid, id, invoice.ProjectID, actor.ID, map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch client marked paid event", "error", err, "invoice_id", id)
	}

	return invoice, nil
}

// ConfirmPayment is the only path to PAID. The receipt PDF is rendered on the
// first confirmation and its URL stored alongside the transition.
func (s *invoiceServiceImpl) ConfirmPayment(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error) {
	if err := policy.Check(actor, policy.InvoiceConfirmPayment, policy.Resource{}); err != nil {
		return nil, err
	}

	invoice, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewInvoiceMachine(invoice.Status)
	if err != nil {
		return nil, fmt.Errorf("build invoice machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerConfirmPayment); err != nil {
		return nil, apperror.Forbidden("only approved invoices can be confirmed paid")
	}

	receiptURL := invoice.ReceiptURL
	rendered := false
	if receiptURL == "" {
		receiptURL, err = s.renderAndStore(ctx, invoice, true)
		if err != nil {
			return nil, err
		}
		rendered = true
	}

	now := time.Now()
	moved, err := s.invoiceRepo.ConfirmPayment(ctx, id, receiptURL, now)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	if !moved {
		if rendered {
			if delErr := s.storage.Delete(ctx, receiptURL); delErr != nil {
				s.logger.Error("Failed to remove unused receipt file", "error", delErr, "path", receiptURL)
			}
		}
		return nil, apperror.Forbidden("only approved invoices can be confirmed paid")
	}

	invoice.Status = entity.InvoicePaid
	invoice.ReceiptURL = receiptURL
	invoice.PaymentConfirmedAt = &now
	invoice.PaidAt = &now

	evt := event.New(event.TypeInvoicePaymentConfirmed, id, invoice.ProjectID, actor.ID, map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
		"client_id":      invoice.ClientID,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch payment confirmed event", "error", err, "invoice_id", id)
	}

	return invoice, nil
}

// GetInvoiceFile returns the stored invoice PDF bytes and a download name
func (s *invoiceServiceImpl) GetInvoiceFile(ctx context.Context, id string, actor *entity.User) ([]byte, string, error) {
	invoice, err := s.getVisible(ctx, id, actor)
	if err != nil {
		return nil, "", err
	}
	if invoice.FileURL == "" {
		return nil, "", apperror.NotFound("invoice file not generated yet")
	}

	content, err := s.storage.Read(ctx, invoice.FileURL)
	if err != nil {
		return nil, "", fmt.Errorf("read invoice file: %w", err)
	}
	return content, fmt.Sprintf("%s.pdf", invoice.InvoiceNumber), nil
}

// GetReceiptFile returns the stored receipt PDF bytes and a download name
func (s *invoiceServiceImpl) GetReceiptFile(ctx context.Context, id string, actor *entity.User) ([]byte, string, error) {
	invoice, err := s.getVisible(ctx, id, actor)
	if err != nil {
		return nil, "", err
	}
	if invoice.ReceiptURL == "" {
		return nil, "", apperror.NotFound("receipt not generated yet")
	}

	content, err := s.storage.Read(ctx, invoice.ReceiptURL)
	if err != nil {
		return nil, "", fmt.Errorf("read receipt file: %w", err)
	}
	return content, fmt.Sprintf("%s-receipt.pdf", invoice.InvoiceNumber), nil
}

func (s *invoiceServiceImpl) renderAndStore(ctx context.Context, invoice *entity.Invoice, receipt bool) (string, error) {
	lines, err := s.invoiceRepo.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return "", fmt.Errorf("list line items: %w", err)
	}
	project, err := s.projectRepo.GetByID(ctx, invoice.ProjectID)
	if err != nil {
		return "", fmt.Errorf("get project: %w", err)
	}
	client, err := s.userRepo.GetByID(ctx, invoice.ClientID)
	if err != nil {
		return "", fmt.Errorf("get client: %w", err)
	}

	doc := port.InvoiceDocument{Invoice: invoice, Lines: lines, Project: project, Client: client}

	var (
		content []byte
		path    string
	)
	if receipt {
		content, err = s.renderer.RenderReceipt(doc)
		path = fmt.Sprintf("receipts/%s.pdf", invoice.ID)
	} else {
		content, err = s.renderer.RenderInvoice(doc)
		path = fmt.Sprintf("invoices/%s.pdf", invoice.ID)
	}
	if err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}

	if err := s.storage.Save(ctx, path, content); err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}
	return path, nil
}

func (s *invoiceServiceImpl) getInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, apperror.NotFound("invoice not found")
	}
	return invoice, nil
}

func (s *invoiceServiceImpl) getVisible(ctx context.Context, id string, actor *entity.User) (*entity.Invoice, error) {
	invoice, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case entity.RoleClient:
		if invoice.ClientID != actor.ID {
			return nil, apperror.Forbidden("not your invoice")
		}
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, invoice.ProjectID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned && invoice.CreatedByID != actor.ID {
			return nil, apperror.Forbidden("you are not assigned to this project")
		}
	}

	return invoice, nil
}

func defaultAmount(raw string) string {
	if raw == "" {
		return "0"
	}
	return raw
}

// newInvoiceNumber builds INV-{year}-{six random digits}
func newInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%d", now.Year(), 100000+rand.Intn(900000))
}
