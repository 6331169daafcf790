package entity

import "time"

// AuditAction classifies what the actor did
type AuditAction string

const (
	AuditCreate   AuditAction = "CREATE"
	AuditUpdate   AuditAction = "UPDATE"
	AuditSubmit   AuditAction = "SUBMIT"
	AuditApprove  AuditAction = "APPROVE"
	AuditReject   AuditAction = "REJECT"
	AuditRequest  AuditAction = "REQUEST"
	AuditDownload AuditAction = "DOWNLOAD"
	AuditDelete   AuditAction = "DELETE"
)

// AuditEntityType names the kind of entity an audit entry refers to
type AuditEntityType string

const (
	AuditEntityProject       AuditEntityType = "PROJECT"
	AuditEntityProcurement   AuditEntityType = "PROCUREMENT"
	AuditEntityPurchaseOrder AuditEntityType = "PURCHASE_ORDER"
	AuditEntityInvoice       AuditEntityType = "INVOICE"
	AuditEntityReceipt       AuditEntityType = "RECEIPT"
	AuditEntityTimesheet     AuditEntityType = "TIMESHEET"
	AuditEntityDocument      AuditEntityType = "DOCUMENT"
	AuditEntityChat          AuditEntityType = "CHAT"
)

// AuditLog is one append-only record of actor + action + entity + message
type AuditLog struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id"`
	ActorName string          `json:"actor_name,omitempty"`
	ActorRole Role            `json:"actor_role,omitempty"`
	Action    AuditAction     `json:"action"`
	Entity    AuditEntityType `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
