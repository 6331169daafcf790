package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"projectdesk/internal/domain/entity"
)

// ErrDuplicateInvoiceNumber reports that an insert collided with an existing
// invoice number. Callers may draw a fresh number and retry.
var ErrDuplicateInvoiceNumber = errors.New("invoice number already in use")

// TransactionManager runs a function within a database transaction. The
// transaction is carried in the context; nested calls reuse it.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// ProjectRepository defines persistence operations for Project and its
// staff assignments and update log
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	ListAll(ctx context.Context) ([]*entity.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]*entity.Project, error)
	ListByStaff(ctx context.Context, staffID string) ([]*entity.Project, error)

	// UpdateStatus is a guarded conditional update: the row moves from
	// fromStatus to toStatus in one statement. It returns false when the row
	// was not in fromStatus, which closes the concurrent-transition window.
	UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.ProjectStatus, approvedByID *string) (bool, error)
	SetStatus(ctx context.Context, id string, status entity.ProjectStatus) error

	AssignStaff(ctx context.Context, assignment *entity.ProjectStaff) error
	RemoveStaff(ctx context.Context, projectID, staffID string) (bool, error)
	IsStaffAssigned(ctx context.Context, projectID, staffID string) (bool, error)
	ListStaff(ctx context.Context, projectID string) ([]*entity.ProjectStaff, error)

	AddUpdate(ctx context.Context, update *entity.ProjectUpdate) error
	ListUpdates(ctx context.Context, projectID string) ([]*entity.ProjectUpdate, error)
}

// ProcurementRepository defines persistence operations for
// ProcurementRequest and its items
type ProcurementRepository interface {
	Create(ctx context.Context, request *entity.ProcurementRequest) error
	GetByID(ctx context.Context, id string) (*entity.ProcurementRequest, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	ListAll(ctx context.Context) ([]*entity.ProcurementRequest, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.ProcurementRequest, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*entity.ProcurementRequest, error)

	// Submit moves DRAFT → SUBMITTED and persists the recomputed cost in the
	// same guarded statement
	Submit(ctx context.Context, id string, cost decimal.Decimal) (bool, error)
	// Decide moves SUBMITTED → APPROVED or REJECTED
	Decide(ctx context.Context, id string, status entity.ProcurementStatus, decidedByID, reason string) (bool, error)

	AddItem(ctx context.Context, item *entity.ProcurementItem) error
	GetItem(ctx context.Context, itemID string) (*entity.ProcurementItem, error)
	UpdateItem(ctx context.Context, item *entity.ProcurementItem) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItems(ctx context.Context, requestID string) ([]*entity.ProcurementItem, error)
}

// PurchaseOrderRepository defines persistence operations for PurchaseOrder.
// request_id carries a unique index, so Create fails on a second order for
// the same request regardless of application-level pre-checks.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetByRequestID(ctx context.Context, requestID string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.PurchaseOrderStatus, at time.Time) (bool, error)
}

// InvoiceRepository defines persistence operations for Invoice and its line
// items. Lines are written once at creation; totals are never recomputed by
// the store.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLineItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListAll(ctx context.Context) ([]*entity.Invoice, error)
	ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error)
	ListByStaff(ctx context.Context, staffID string) ([]*entity.Invoice, error)
	ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error)

	Approve(ctx context.Context, id, fileURL string) (bool, error)
	Reject(ctx context.Context, id, reason string) (bool, error)
	MarkClientPaid(ctx context.Context, id string, at time.Time) error
	ConfirmPayment(ctx context.Context, id, receiptURL string, at time.Time) (bool, error)
	SetFileURL(ctx context.Context, id, fileURL string) error
	SetReceiptURL(ctx context.Context, id, receiptURL string) error
}

// TimesheetFilter narrows timesheet listings
type TimesheetFilter struct {
	ProjectID string
	StaffID   string
	Status    entity.TimesheetStatus
	From      *time.Time
	To        *time.Time
}

// TimesheetRepository defines persistence operations for TimesheetEntry
type TimesheetRepository interface {
	Create(ctx context.Context, entry *entity.TimesheetEntry) error
	GetByID(ctx context.Context, id string) (*entity.TimesheetEntry, error)
	List(ctx context.Context, filter TimesheetFilter) ([]*entity.TimesheetEntry, error)

	// Review moves PENDING → APPROVED/REJECTED with the reviewer recorded
	Review(ctx context.Context, id string, status entity.TimesheetStatus, reviewerID, reason string, at time.Time) (bool, error)
	// Delete removes the entry only while it is still PENDING
	Delete(ctx context.Context, id string) (bool, error)
}

// ChatRepository defines persistence operations for threads and
// participants. Participant upserts clear leftAt so rejoining restores the
// original membership row.
type ChatRepository interface {
	UpsertThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error)
	GetThread(ctx context.Context, threadID string) (*entity.ChatThread, error)
	GetProjectThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error)
	ListProjectThreads(ctx context.Context, projectID string) ([]*entity.ChatThread, error)

	UpsertParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error)
	GetParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error)
	ListParticipants(ctx context.Context, threadID string) ([]*entity.ChatParticipant, error)
	LeaveThread(ctx context.Context, threadID, userID string, at time.Time) error
	LeaveAllProjectThreads(ctx context.Context, projectID, userID string, at time.Time) error
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	// CreateBatch inserts the fan-out in one multi-row statement
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

// AuditFilter narrows activity-log listings
type AuditFilter struct {
	Entity  entity.AuditEntityType
	ActorID string
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}

// AuditRepository defines persistence operations for the append-only audit
// log
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, int, error)
}

// DocumentRepository defines persistence operations for document groups and
// their versions
type DocumentRepository interface {
	FindGroup(ctx context.Context, projectID, name string, category entity.DocumentCategory) (*entity.DocumentGroup, error)
	CreateGroup(ctx context.Context, group *entity.DocumentGroup) error
	ListGroups(ctx context.Context, projectID string) ([]*entity.DocumentGroup, error)

	CreateDocument(ctx context.Context, doc *entity.Document) error
	GetDocument(ctx context.Context, id string) (*entity.Document, error)
	LatestVersion(ctx context.Context, groupID string) (int, error)
	ListByGroup(ctx context.Context, groupID string) ([]*entity.Document, error)
	LatestPerGroup(ctx context.Context, projectID string) ([]*entity.Document, error)

	// GroupProjectID resolves the owning project by walking group →
	// project, used for authorization scoping
	GroupProjectID(ctx context.Context, groupID string) (string, error)
}
