package entity

import "time"

// PurchaseOrderStatus is the persisted purchase order lifecycle state.
// PARTIALLY_DELIVERED is declared but no operation currently sets it;
// it is reserved for partial-shipment tracking.
type PurchaseOrderStatus string

const (
	PurchaseOrderCreated            PurchaseOrderStatus = "CREATED"
	PurchaseOrderOrdered            PurchaseOrderStatus = "ORDERED"
	PurchaseOrderPartiallyDelivered PurchaseOrderStatus = "PARTIALLY_DELIVERED"
	PurchaseOrderDelivered          PurchaseOrderStatus = "DELIVERED"
	PurchaseOrderCancelled          PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder is issued from an approved procurement request, at most one
// per request (enforced by a unique index on RequestID).
type PurchaseOrder struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"order_number"`
	RequestID   string              `json:"request_id"`
	OrderedByID string              `json:"ordered_by_id"`
	Status      PurchaseOrderStatus `json:"status"`
	OrderedAt   *time.Time          `json:"ordered_at,omitempty"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
