package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/internal/domain/event"
	"projectdesk/internal/domain/policy"
	"projectdesk/internal/domain/workflow"
)

// CreateProcurementInput carries the fields of a procurement creation request
type CreateProcurementInput struct {
	ProjectID   string
	Title       string
	Description string
	Items       []ProcurementItemInput
}

// ProcurementItemInput carries one item of a procurement request
type ProcurementItemInput struct {
	Name          string
	Quantity      int
	Unit          string
	EstimatedCost string
	Type          entity.ItemType
}

// ProcurementService drives the procurement request lifecycle and the
// purchase orders issued from approved requests
type ProcurementService interface {
	Create(ctx context.Context, input CreateProcurementInput, actor *entity.User) (*entity.ProcurementRequest, error)
	UpdateDetails(ctx context.Context, requestID, title, description string, actor *entity.User) error
	GetByID(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error)
	ListForUser(ctx context.Context, actor *entity.User) ([]*entity.ProcurementRequest, error)
	ListByProject(ctx context.Context, projectID string, actor *entity.User) ([]*entity.ProcurementRequest, error)

	AddItem(ctx context.Context, requestID string, input ProcurementItemInput, actor *entity.User) (*entity.ProcurementItem, error)
	UpdateItem(ctx context.Context, itemID string, input ProcurementItemInput, actor *entity.User) (*entity.ProcurementItem, error)
	DeleteItem(ctx context.Context, itemID string, actor *entity.User) error
	ListItems(ctx context.Context, requestID string) ([]*entity.ProcurementItem, error)

	Submit(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error)
	Approve(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error)
	Reject(ctx context.Context, requestID, reason string, actor *entity.User) (*entity.ProcurementRequest, error)

	GeneratePurchaseOrder(ctx context.Context, requestID string, actor *entity.User) (*entity.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, requestID string) (*entity.PurchaseOrder, error)
	MarkOrdered(ctx context.Context, purchaseOrderID string, actor *entity.User) (*entity.PurchaseOrder, error)
	MarkDelivered(ctx context.Context, purchaseOrderID string, actor *entity.User) (*entity.PurchaseOrder, error)
}

type procurementServiceImpl struct {
	procurementRepo port.ProcurementRepository
	poRepo          port.PurchaseOrderRepository
	projectRepo     port.ProjectRepository
	txManager       port.TransactionManager
	events          dispatcher.Dispatcher
	logger          Logger
}

// NewProcurementService creates a new ProcurementService
func NewProcurementService(
	procurementRepo port.ProcurementRepository,
	poRepo port.PurchaseOrderRepository,
	projectRepo port.ProjectRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) ProcurementService {
	return &procurementServiceImpl{
		procurementRepo: procurementRepo,
		poRepo:          poRepo,
		projectRepo:     projectRepo,
		txManager:       txManager,
		events:          events,
		logger:          logger,
	}
}

// Create opens a DRAFT request for an assigned staff member, optionally with
// its first items
func (s *procurementServiceImpl) Create(ctx context.Context, input CreateProcurementInput, actor *entity.User) (*entity.ProcurementRequest, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	assigned, err := s.projectRepo.IsStaffAssigned(ctx, input.ProjectID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if err := policy.Check(actor, policy.ProcurementCreate, policy.Resource{ActorAssigned: assigned}); err != nil {
		return nil, err
	}

	items := make([]*entity.ProcurementItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := buildItem("", in)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := time.Now()
	request := &entity.ProcurementRequest{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		CreatedByID: actor.ID,
		Status:      entity.ProcurementDraft,
		Cost:        decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.procurementRepo.Create(txCtx, request); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for _, item := range items {
			item.RequestID = request.ID
			if err := s.procurementRepo.AddItem(txCtx, item); err != nil {
				return fmt.Errorf("add item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create procurement request", "error", err, "project_id", input.ProjectID)
		return nil, err
	}

	evt := event.New(event.TypeProcurementCreated, request.ID, request.ProjectID, actor.ID, map[string]interface{}{
		"title": request.Title,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch procurement created event", "error", err, "request_id", request.ID)
	}

	return request, nil
}

// UpdateDetails edits title and description while the request is a draft
func (s *procurementServiceImpl) UpdateDetails(ctx context.Context, requestID, title, description string, actor *entity.User) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.ProcurementUpdate, policy.Resource{CreatedByID: request.CreatedByID}); err != nil {
		return err
	}
	if request.Status != entity.ProcurementDraft {
		return apperror.Forbidden("cannot edit a request after submission")
	}

	return s.procurementRepo.UpdateDetails(ctx, requestID, title, description)
}

// GetByID returns a request visible to the actor
func (s *procurementServiceImpl) GetByID(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case entity.RoleClient:
		return nil, apperror.Forbidden("clients cannot view procurement requests")
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, request.ProjectID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned && request.CreatedByID != actor.ID {
			return nil, apperror.Forbidden("not your request")
		}
	}

	return request, nil
}

// ListForUser returns the requests the actor may see: admins see all, staff
// see their own
func (s *procurementServiceImpl) ListForUser(ctx context.Context, actor *entity.User) ([]*entity.ProcurementRequest, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return s.procurementRepo.ListAll(ctx)
	case entity.RoleStaff:
		return s.procurementRepo.ListByCreator(ctx, actor.ID)
	default:
		return nil, apperror.Forbidden("clients cannot view procurement requests")
	}
}

// ListByProject returns a project's requests for admins and assigned staff
func (s *procurementServiceImpl) ListByProject(ctx context.Context, projectID string, actor *entity.User) ([]*entity.ProcurementRequest, error) {
	switch actor.Role {
	case entity.RoleClient:
		return nil, apperror.Forbidden("clients cannot view procurement requests")
	case entity.RoleStaff:
		assigned, err := s.projectRepo.IsStaffAssigned(ctx, projectID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return nil, apperror.Forbidden("you are not assigned to this project")
		}
	}
	return s.procurementRepo.ListByProject(ctx, projectID)
}

// AddItem appends an item to a draft request owned by the actor
func (s *procurementServiceImpl) AddItem(ctx context.Context, requestID string, input ProcurementItemInput, actor *entity.User) (*entity.ProcurementItem, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.checkItemMutation(actor, request); err != nil {
		return nil, err
	}

	item, err := buildItem(requestID, input)
	if err != nil {
		return nil, err
	}
	if err := s.procurementRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

// UpdateItem rewrites an item of a draft request owned by the actor
func (s *procurementServiceImpl) UpdateItem(ctx context.Context, itemID string, input ProcurementItemInput, actor *entity.User) (*entity.ProcurementItem, error) {
	existing, err := s.procurementRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if existing == nil {
		return nil, apperror.NotFound("item not found")
	}

	request, err := s.getRequest(ctx, existing.RequestID)
	if err != nil {
		return nil, err
	}
	if err := s.checkItemMutation(actor, request); err != nil {
		return nil, err
	}

	item, err := buildItem(existing.RequestID, input)
	if err != nil {
		return nil, err
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt

	if err := s.procurementRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item from a draft request owned by the actor
func (s *procurementServiceImpl) DeleteItem(ctx context.Context, itemID string, actor *entity.User) error {
	existing, err := s.procurementRepo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if existing == nil {
		return apperror.NotFound("item not found")
	}

	request, err := s.getRequest(ctx, existing.RequestID)
	if err != nil {
		return err
	}
	if err := s.checkItemMutation(actor, request); err != nil {
		return err
	}

	return s.procurementRepo.DeleteItem(ctx, itemID)
}

// ListItems returns the items of a request
func (s *procurementServiceImpl) ListItems(ctx context.Context, requestID string) ([]*entity.ProcurementItem, error) {
	return s.procurementRepo.ListItems(ctx, requestID)
}

// Submit freezes the draft: the total cost is computed from the items and
// persisted with the DRAFT → SUBMITTED move in one guarded statement.
func (s *procurementServiceImpl) Submit(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := policy.Check(actor, policy.ProcurementSubmit, policy.Resource{CreatedByID: request.CreatedByID}); err != nil {
		return nil, err
	}

	machine, err := workflow.NewProcurementMachine(request.Status)
	if err != nil {
		return nil, fmt.Errorf("build procurement machine: %w", err)
	}
	if err := machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, apperror.Forbidden("only draft requests can be submitted")
	}

	items, err := s.procurementRepo.ListItems(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(items) == 0 {
		return nil, apperror.BadRequest("cannot submit a request without items")
	}
	cost := entity.ProcurementTotal(items)

	moved, err := s.procurementRepo.Submit(ctx, requestID, cost)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	if !moved {
		return nil, apperror.Forbidden("only draft requests can be submitted")
	}

	request.Status = entity.ProcurementSubmitted
	request.Cost = cost

	evt := event.New(event.TypeProcurementSubmitted, requestID, request.ProjectID, actor.ID, map[string]interface{}{
		"title": request.Title,
		"cost":  cost.String(),
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch procurement submitted event", "error", err, "request_id", requestID)
	}

	return request, nil
}

// Approve moves a submitted request to its terminal APPROVED state
func (s *procurementServiceImpl) Approve(ctx context.Context, requestID string, actor *entity.User) (*entity.ProcurementRequest, error) {
	return s.decide(ctx, requestID, actor, policy.ProcurementApprove, workflow.TriggerApprove, entity.ProcurementApproved, "")
}

// Reject moves a submitted request to its terminal REJECTED state. There is
// no resubmission; the staff member starts a new request instead.
func (s *procurementServiceImpl) Reject(ctx context.Context, requestID, reason string, actor *entity.User) (*entity.ProcurementRequest, error) {
	return s.decide(ctx, requestID, actor, policy.ProcurementReject, workflow.TriggerReject, entity.ProcurementRejected, reason)
}

func (s *procurementServiceImpl) decide(
	ctx context.Context,
	requestID string,
	actor *entity.User,
	action policy.Action,
	trigger workflow.Trigger,
	target entity.ProcurementStatus,
	reason string,
) (*entity.ProcurementRequest, error) {
	if err := policy.Check(actor, action, policy.Resource{}); err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewProcurementMachine(request.Status)
	if err != nil {
		return nil, fmt.Errorf("build procurement machine: %w", err)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, apperror.Forbidden("only submitted requests can be decided")
	}

	moved, err := s.procurementRepo.Decide(ctx, requestID, target, actor.ID, reason)
	if err != nil {
		return nil, fmt.Errorf("decide request: %w", err)
	}
	if !moved {
		return nil, apperror.Forbidden("only submitted requests can be decided")
	}

	request.Status = target
	request.ApprovedByID = &actor.ID
	request.RejectionReason = reason

	eventType := event.TypeProcurementApproved
	if target == entity.ProcurementRejected {
		eventType = event.TypeProcurementRejected
	}
	evt := event.New(eventType, requestID, request.ProjectID, actor.ID, map[string]interface{}{
		"title":        request.Title,
		"requested_by": request.CreatedByID,
		"reason":       reason,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch procurement decision event", "error", err, "request_id", requestID)
	}

	return request, nil
}

// GeneratePurchaseOrder issues the one purchase order an approved request may
// carry. The request_id unique index backs the at-most-one rule; a concurrent
// duplicate surfaces as the same Forbidden error the pre-check produces.
func (s *procurementServiceImpl) GeneratePurchaseOrder(ctx context.Context, requestID string, actor *entity.User) (*entity.PurchaseOrder, error) {
	if err := policy.Check(actor, policy.PurchaseOrderCreate, policy.Resource{}); err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != entity.ProcurementApproved {
		return nil, apperror.Forbidden("purchase orders require an approved request")
	}

	existing, err := s.poRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("check existing order: %w", err)
	}
	if existing != nil {
		return nil, apperror.Forbidden("a purchase order already exists for this request")
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:          uuid.NewString(),
		OrderNumber: fmt.Sprintf("PO-%d", now.UnixMilli()),
		RequestID:   requestID,
		OrderedByID: actor.ID,
		Status:      entity.PurchaseOrderCreated,
		CreatedAt:   now,
	}
	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}

	evt := event.New(event.TypePurchaseOrderCreated, po.ID, request.ProjectID, actor.ID, map[string]interface{}{
		"order_number": po.OrderNumber,
		"request_id":   requestID,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch purchase order created event", "error", err, "po_id", po.ID)
	}

	return po, nil
}

// GetPurchaseOrder returns the order issued from a request, or a not-found
// error
func (s *procurementServiceImpl) GetPurchaseOrder(ctx context.Context, requestID string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if po == nil {
		return nil, apperror.NotFound("no purchase order for this request")
	}
	return po, nil
}

// MarkOrdered moves CREATED → ORDERED and stamps orderedAt
func (s *procurementServiceImpl) MarkOrdered(ctx context.Context, purchaseOrderID string, actor *entity.User) (*entity.PurchaseOrder, error) {
	return s.movePurchaseOrder(ctx, purchaseOrderID, actor, policy.PurchaseOrderOrder, workflow.TriggerOrder, event.TypePurchaseOrderOrdered)
}

// MarkDelivered moves ORDERED → DELIVERED and stamps deliveredAt
func (s *procurementServiceImpl) MarkDelivered(ctx context.Context, purchaseOrderID string, actor *entity.User) (*entity.PurchaseOrder, error) {
	return s.movePurchaseOrder(ctx, purchaseOrderID, actor, policy.PurchaseOrderDeliver, workflow.TriggerDeliver, event.TypePurchaseOrderDelivered)
}

func (s *procurementServiceImpl) movePurchaseOrder(
	ctx context.Context,
	purchaseOrderID string,
	actor *entity.User,
	action policy.Action,
	trigger workflow.Trigger,
	eventType event.Type,
) (*entity.PurchaseOrder, error) {
	if err := policy.Check(actor, action, policy.Resource{}); err != nil {
		return nil, err
	}

	po, err := s.poRepo.GetByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if po == nil {
		return nil, apperror.NotFound("purchase order not found")
	}

	machine, err := workflow.NewPurchaseOrderMachine(po.Status)
	if err != nil {
		return nil, fmt.Errorf("build purchase order machine: %w", err)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, apperror.Forbidden("invalid purchase order transition from %s", po.Status)
	}

	now := time.Now()
	target := entity.PurchaseOrderStatus(machine.State())
	moved, err := s.poRepo.UpdateStatus(ctx, purchaseOrderID, po.Status, target, now)
	if err != nil {
		return nil, fmt.Errorf("update purchase order: %w", err)
	}
	if !moved {
		return nil, apperror.Forbidden("invalid purchase order transition from %s", po.Status)
	}

	po.Status = target
	switch target {
	case entity.PurchaseOrderOrdered:
		po.OrderedAt = &now
	case entity.PurchaseOrderDelivered:
		po.DeliveredAt = &now
	}

	request, err := s.procurementRepo.GetByID(ctx, po.RequestID)
	if err != nil {
		s.logger.Error("Failed to load request for purchase order event", "error", err, "po_id", po.ID)
	}
	projectID := ""
	if request != nil {
		projectID = request.ProjectID
	}

	evt := event.New(eventType, po.ID, projectID, actor.ID, map[string]interface{}{
		"order_number": po.OrderNumber,
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch purchase order event", "error", err, "po_id", po.ID)
	}

	return po, nil
}

func (s *procurementServiceImpl) getRequest(ctx context.Context, requestID string) (*entity.ProcurementRequest, error) {
	request, err := s.procurementRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request == nil {
		return nil, apperror.NotFound("procurement request not found")
	}
	return request, nil
}

func (s *procurementServiceImpl) checkItemMutation(actor *entity.User, request *entity.ProcurementRequest) error {
	return policy.Check(actor, policy.ProcurementItemMutate, policy.Resource{
		CreatedByID: request.CreatedByID,
		Status:      string(request.Status),
	})
}

func buildItem(requestID string, input ProcurementItemInput) (*entity.ProcurementItem, error) {
	if input.Quantity <= 0 {
		return nil, apperror.BadRequest("item quantity must be positive")
	}

	itemType := input.Type
	if itemType == "" {
		itemType = entity.ItemMaterial
	}
	switch itemType {
	case entity.ItemMaterial, entity.ItemService:
	default:
		return nil, apperror.BadRequest("invalid item type %q", itemType)
	}

	var estimated *decimal.Decimal
	if input.EstimatedCost != "" {
		amount, err := parseAmount(input.EstimatedCost, "estimated cost")
		if err != nil {
			return nil, err
		}
		estimated = &amount
	}

	return &entity.ProcurementItem{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		Name:          input.Name,
		Quantity:      input.Quantity,
		Unit:          input.Unit,
		EstimatedCost: estimated,
		Type:          itemType,
		CreatedAt:     time.Now(),
	}, nil
}
