package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/service"
	"projectdesk/internal/domain/entity"
)

// ProcurementItemRequest is one item in a procurement payload
type ProcurementItemRequest struct {
	Name          string `json:"name" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Unit          string `json:"unit"`
	EstimatedCost string `json:"estimated_cost"`
	Type          string `json:"type"`
}

func (r ProcurementItemRequest) toInput() service.ProcurementItemInput {
	return service.ProcurementItemInput{
		Name:          r.Name,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		EstimatedCost: r.EstimatedCost,
		Type:          entity.ItemType(r.Type),
	}
}

// CreateProcurementRequest is the payload for POST /api/procurement
type CreateProcurementRequest struct {
	ProjectID   string                   `json:"project_id" binding:"required"`
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Items       []ProcurementItemRequest `json:"items"`
}

// CreateProcurement handles POST /api/procurement
func (h *Handlers) CreateProcurement(c *gin.Context) {
	var req CreateProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	items := make([]service.ProcurementItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.toInput())
	}

	request, err := h.services.Procurement.Create(c.Request.Context(), service.CreateProcurementInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Items:       items,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, request)
}

// ListProcurement handles GET /api/procurement
func (h *Handlers) ListProcurement(c *gin.Context) {
	requests, err := h.services.Procurement.ListForUser(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, requests)
}

// ListProjectProcurement handles GET /api/projects/:id/procurement
func (h *Handlers) ListProjectProcurement(c *gin.Context) {
	requests, err := h.services.Procurement.ListByProject(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, requests)
}

// GetProcurement handles GET /api/procurement/:id
func (h *Handlers) GetProcurement(c *gin.Context) {
	request, err := h.services.Procurement.GetByID(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, request)
}

// UpdateProcurementRequest is the payload for PATCH /api/procurement/:id
type UpdateProcurementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UpdateProcurement handles PATCH /api/procurement/:id
func (h *Handlers) UpdateProcurement(c *gin.Context) {
	var req UpdateProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.services.Procurement.UpdateDetails(c.Request.Context(), c.Param("id"), req.Title, req.Description, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": true})
}

// SubmitProcurement handles POST /api/procurement/:id/submit
func (h *Handlers) SubmitProcurement(c *gin.Context) {
	request, err := h.services.Procurement.Submit(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, request)
}

// ApproveProcurement handles POST /api/procurement/:id/approve
func (h *Handlers) ApproveProcurement(c *gin.Context) {
	request, err := h.services.Procurement.Approve(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, request)
}

// RejectRequest carries a rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectProcurement handles POST /api/procurement/:id/reject
func (h *Handlers) RejectProcurement(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	request, err := h.services.Procurement.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, request)
}

// ListProcurementItems handles GET /api/procurement/:id/items
func (h *Handlers) ListProcurementItems(c *gin.Context) {
	// visibility piggybacks on request access
	if _, err := h.services.Procurement.GetByID(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.services.Procurement.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

// AddProcurementItem handles POST /api/procurement/:id/items
func (h *Handlers) AddProcurementItem(c *gin.Context) {
	var req ProcurementItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	item, err := h.services.Procurement.AddItem(c.Request.Context(), c.Param("id"), req.toInput(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

// UpdateProcurementItem handles PATCH /api/procurement/:id/items/:itemId
func (h *Handlers) UpdateProcurementItem(c *gin.Context) {
	var req ProcurementItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	item, err := h.services.Procurement.UpdateItem(c.Request.Context(), c.Param("itemId"), req.toInput(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

// DeleteProcurementItem handles DELETE /api/procurement/:id/items/:itemId
func (h *Handlers) DeleteProcurementItem(c *gin.Context) {
	if err := h.services.Procurement.DeleteItem(c.Request.Context(), c.Param("itemId"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

// GeneratePurchaseOrder handles POST /api/procurement/:id/purchase-order
func (h *Handlers) GeneratePurchaseOrder(c *gin.Context) {
	po, err := h.services.Procurement.GeneratePurchaseOrder(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, po)
}

// GetPurchaseOrder handles GET /api/procurement/:id/purchase-order
func (h *Handlers) GetPurchaseOrder(c *gin.Context) {
	// scoped like the owning request
	if _, err := h.services.Procurement.GetByID(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}

	po, err := h.services.Procurement.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, po)
}

// MarkPurchaseOrderOrdered handles POST /api/purchase-orders/:id/order
func (h *Handlers) MarkPurchaseOrderOrdered(c *gin.Context) {
	po, err := h.services.Procurement.MarkOrdered(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, po)
}

// MarkPurchaseOrderDelivered handles POST /api/purchase-orders/:id/deliver
func (h *Handlers) MarkPurchaseOrderDelivered(c *gin.Context) {
	po, err := h.services.Procurement.MarkDelivered(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, po)
}
