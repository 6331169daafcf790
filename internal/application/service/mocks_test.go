package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

// In-memory fakes for the port interfaces. They implement the same guarded
// semantics as the SQL repositories (conditional status moves, unique purchase
// order per request, soft chat leaves) so service tests exercise the real
// concurrency contracts.

var (
	testAdmin  = &entity.User{ID: "admin-1", Name: "Dana Cho", Email: "dana@projectdesk.test", Role: entity.RoleAdmin, Status: entity.UserActive}
	testStaff  = &entity.User{ID: "staff-1", Name: "Sam Reyes", Email: "sam@projectdesk.test", Role: entity.RoleStaff, Status: entity.UserActive}
	testStaff2 = &entity.User{ID: "staff-2", Name: "Noor Patel", Email: "noor@projectdesk.test", Role: entity.RoleStaff, Status: entity.UserActive}
	testClient = &entity.User{ID: "client-1", Name: "Atrium Holdings", Email: "billing@atrium.test", Role: entity.RoleClient, Status: entity.UserActive}
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type staffKey struct{ projectID, staffID string }

type fakeProjectRepo struct {
	projects map[string]*entity.Project
	staff    map[staffKey]*entity.ProjectStaff
	updates  []*entity.ProjectUpdate
}

func newFakeProjectRepo(projects ...*entity.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{
		projects: make(map[string]*entity.Project),
		staff:    make(map[staffKey]*entity.ProjectStaff),
	}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.projects[id], nil
}

func (r *fakeProjectRepo) ListAll(ctx context.Context) ([]*entity.Project, error) {
	var out []*entity.Project
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProjectRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Project, error) {
	var out []*entity.Project
	for _, p := range r.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) ListByStaff(ctx context.Context, staffID string) ([]*entity.Project, error) {
	var out []*entity.Project
	for key, a := range r.staff {
		if a.StaffID == staffID {
			if p, ok := r.projects[key.projectID]; ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.ProjectStatus, approvedByID *string) (bool, error) {
	p, ok := r.projects[id]
	if !ok || p.Status != fromStatus {
		return false, nil
	}
	p.Status = toStatus
	if approvedByID != nil {
		p.ApprovedByID = approvedByID
	}
	return true, nil
}

func (r *fakeProjectRepo) SetStatus(ctx context.Context, id string, status entity.ProjectStatus) error {
	if p, ok := r.projects[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakeProjectRepo) AssignStaff(ctx context.Context, assignment *entity.ProjectStaff) error {
	key := staffKey{assignment.ProjectID, assignment.StaffID}
	if _, exists := r.staff[key]; !exists {
		r.staff[key] = assignment
	}
	return nil
}

func (r *fakeProjectRepo) RemoveStaff(ctx context.Context, projectID, staffID string) (bool, error) {
	key := staffKey{projectID, staffID}
	if _, exists := r.staff[key]; !exists {
		return false, nil
	}
	delete(r.staff, key)
	return true, nil
}

func (r *fakeProjectRepo) IsStaffAssigned(ctx context.Context, projectID, staffID string) (bool, error) {
	_, ok := r.staff[staffKey{projectID, staffID}]
	return ok, nil
}

func (r *fakeProjectRepo) ListStaff(ctx context.Context, projectID string) ([]*entity.ProjectStaff, error) {
	var out []*entity.ProjectStaff
	for key, a := range r.staff {
		if key.projectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) AddUpdate(ctx context.Context, update *entity.ProjectUpdate) error {
	r.updates = append(r.updates, update)
	return nil
}

func (r *fakeProjectRepo) ListUpdates(ctx context.Context, projectID string) ([]*entity.ProjectUpdate, error) {
	var out []*entity.ProjectUpdate
	for _, u := range r.updates {
		if u.ProjectID == projectID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) updatesOfType(projectID string, eventType entity.ProjectEventType) []*entity.ProjectUpdate {
	var out []*entity.ProjectUpdate
	for _, u := range r.updates {
		if u.ProjectID == projectID && u.EventType == eventType {
			out = append(out, u)
		}
	}
	return out
}

type fakeProcurementRepo struct {
	requests map[string]*entity.ProcurementRequest
	items    map[string]*entity.ProcurementItem
}

func newFakeProcurementRepo() *fakeProcurementRepo {
	return &fakeProcurementRepo{
		requests: make(map[string]*entity.ProcurementRequest),
		items:    make(map[string]*entity.ProcurementItem),
	}
}

func (r *fakeProcurementRepo) Create(ctx context.Context, request *entity.ProcurementRequest) error {
	r.requests[request.ID] = request
	return nil
}

func (r *fakeProcurementRepo) GetByID(ctx context.Context, id string) (*entity.ProcurementRequest, error) {
	return r.requests[id], nil
}

func (r *fakeProcurementRepo) UpdateDetails(ctx context.Context, id, title, description string) error {
	if req, ok := r.requests[id]; ok {
		req.Title = title
		req.Description = description
	}
	return nil
}

func (r *fakeProcurementRepo) ListAll(ctx context.Context) ([]*entity.ProcurementRequest, error) {
	var out []*entity.ProcurementRequest
	for _, req := range r.requests {
		out = append(out, req)
	}
	return out, nil
}

func (r *fakeProcurementRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.ProcurementRequest, error) {
	var out []*entity.ProcurementRequest
	for _, req := range r.requests {
		if req.ProjectID == projectID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeProcurementRepo) ListByCreator(ctx context.Context, creatorID string) ([]*entity.ProcurementRequest, error) {
	var out []*entity.ProcurementRequest
	for _, req := range r.requests {
		if req.CreatedByID == creatorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeProcurementRepo) Submit(ctx context.Context, id string, cost decimal.Decimal) (bool, error) {
	req, ok := r.requests[id]
	if !ok || req.Status != entity.ProcurementDraft {
		return false, nil
	}
	req.Status = entity.ProcurementSubmitted
	req.Cost = cost
	return true, nil
}

func (r *fakeProcurementRepo) Decide(ctx context.Context, id string, status entity.ProcurementStatus, decidedByID, reason string) (bool, error) {
	req, ok := r.requests[id]
	if !ok || req.Status != entity.ProcurementSubmitted {
		return false, nil
	}
	req.Status = status
	req.ApprovedByID = &decidedByID
	req.RejectionReason = reason
	return true, nil
}

func (r *fakeProcurementRepo) AddItem(ctx context.Context, item *entity.ProcurementItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeProcurementRepo) GetItem(ctx context.Context, itemID string) (*entity.ProcurementItem, error) {
	return r.items[itemID], nil
}

func (r *fakeProcurementRepo) UpdateItem(ctx context.Context, item *entity.ProcurementItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeProcurementRepo) DeleteItem(ctx context.Context, itemID string) error {
	delete(r.items, itemID)
	return nil
}

func (r *fakeProcurementRepo) ListItems(ctx context.Context, requestID string) ([]*entity.ProcurementItem, error) {
	var out []*entity.ProcurementItem
	for _, item := range r.items {
		if item.RequestID == requestID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakePurchaseOrderRepo struct {
	orders map[string]*entity.PurchaseOrder
}

func newFakePurchaseOrderRepo() *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{orders: make(map[string]*entity.PurchaseOrder)}
}

func (r *fakePurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	for _, existing := range r.orders {
		if existing.RequestID == po.RequestID {
			return apperror.Forbidden("a purchase order already exists for this request")
		}
	}
	r.orders[po.ID] = po
	return nil
}

func (r *fakePurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.orders[id], nil
}

func (r *fakePurchaseOrderRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.PurchaseOrder, error) {
	for _, po := range r.orders {
		if po.RequestID == requestID {
			return po, nil
		}
	}
	return nil, nil
}

func (r *fakePurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus entity.PurchaseOrderStatus, at time.Time) (bool, error) {
	po, ok := r.orders[id]
	if !ok || po.Status != fromStatus {
		return false, nil
	}
	po.Status = toStatus
	switch toStatus {
	case entity.PurchaseOrderOrdered:
		po.OrderedAt = &at
	case entity.PurchaseOrderDelivered:
		po.DeliveredAt = &at
	}
	return true, nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	lines    map[string][]*entity.InvoiceLineItem
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[string]*entity.Invoice),
		lines:    make(map[string][]*entity.InvoiceLineItem),
	}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLineItem) error {
	for _, existing := range r.invoices {
		if existing.InvoiceNumber == invoice.InvoiceNumber {
			return port.ErrDuplicateInvoiceNumber
		}
	}
	r.invoices[invoice.ID] = invoice
	r.lines[invoice.ID] = lines
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) ListAll(ctx context.Context) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByStaff(ctx context.Context, staffID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CreatedByID == staffID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	return r.lines[invoiceID], nil
}

func (r *fakeInvoiceRepo) Approve(ctx context.Context, id, fileURL string) (bool, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoicePending {
		return false, nil
	}
	inv.Status = entity.InvoiceApproved
	if fileURL != "" {
		inv.FileURL = fileURL
	}
	return true, nil
}

func (r *fakeInvoiceRepo) Reject(ctx context.Context, id, reason string) (bool, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoicePending {
		return false, nil
	}
	inv.Status = entity.InvoiceRejected
	inv.RejectionReason = reason
	return true, nil
}

func (r *fakeInvoiceRepo) MarkClientPaid(ctx context.Context, id string, at time.Time) error {
	if inv, ok := r.invoices[id]; ok {
		inv.ClientMarkedPaid = true
		inv.ClientMarkedPaidAt = &at
	}
	return nil
}

func (r *fakeInvoiceRepo) ConfirmPayment(ctx context.Context, id, receiptURL string, at time.Time) (bool, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoiceApproved {
		return false, nil
	}
	inv.Status = entity.InvoicePaid
	if receiptURL != "" {
		inv.ReceiptURL = receiptURL
	}
	inv.PaymentConfirmedAt = &at
	inv.PaidAt = &at
	return true, nil
}

func (r *fakeInvoiceRepo) SetFileURL(ctx context.Context, id, fileURL string) error {
	if inv, ok := r.invoices[id]; ok {
		inv.FileURL = fileURL
	}
	return nil
}

func (r *fakeInvoiceRepo) SetReceiptURL(ctx context.Context, id, receiptURL string) error {
	if inv, ok := r.invoices[id]; ok {
		inv.ReceiptURL = receiptURL
	}
	return nil
}

type fakeTimesheetRepo struct {
	entries map[string]*entity.TimesheetEntry
}

func newFakeTimesheetRepo() *fakeTimesheetRepo {
	return &fakeTimesheetRepo{entries: make(map[string]*entity.TimesheetEntry)}
}

func (r *fakeTimesheetRepo) Create(ctx context.Context, entry *entity.TimesheetEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeTimesheetRepo) GetByID(ctx context.Context, id string) (*entity.TimesheetEntry, error) {
	return r.entries[id], nil
}

func (r *fakeTimesheetRepo) List(ctx context.Context, filter port.TimesheetFilter) ([]*entity.TimesheetEntry, error) {
	var out []*entity.TimesheetEntry
	for _, e := range r.entries {
		if filter.ProjectID != "" && e.ProjectID != filter.ProjectID {
			continue
		}
		if filter.StaffID != "" && e.StaffID != filter.StaffID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeTimesheetRepo) Review(ctx context.Context, id string, status entity.TimesheetStatus, reviewerID, reason string, at time.Time) (bool, error) {
	e, ok := r.entries[id]
	if !ok || e.Status != entity.TimesheetPending {
		return false, nil
	}
	e.Status = status
	e.ReviewedByID = &reviewerID
	e.ReviewedAt = &at
	e.RejectionReason = reason
	return true, nil
}

func (r *fakeTimesheetRepo) Delete(ctx context.Context, id string) (bool, error) {
	e, ok := r.entries[id]
	if !ok || e.Status != entity.TimesheetPending {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

type threadKey struct {
	projectID  string
	threadType entity.ChatThreadType
}

type participantKey struct{ threadID, userID string }

type fakeChatRepo struct {
	threads      map[string]*entity.ChatThread
	byProject    map[threadKey]string
	participants map[participantKey]*entity.ChatParticipant
	nextID       int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		threads:      make(map[string]*entity.ChatThread),
		byProject:    make(map[threadKey]string),
		participants: make(map[participantKey]*entity.ChatParticipant),
	}
}

func (r *fakeChatRepo) UpsertThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error) {
	key := threadKey{projectID, threadType}
	if id, ok := r.byProject[key]; ok {
		return r.threads[id], nil
	}
	r.nextID++
	thread := &entity.ChatThread{
		ID:        fmt.Sprintf("thread-%d", r.nextID),
		ProjectID: projectID,
		Type:      threadType,
		CreatedAt: time.Now(),
	}
	r.threads[thread.ID] = thread
	r.byProject[key] = thread.ID
	return thread, nil
}

func (r *fakeChatRepo) GetThread(ctx context.Context, threadID string) (*entity.ChatThread, error) {
	return r.threads[threadID], nil
}

func (r *fakeChatRepo) GetProjectThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error) {
	if id, ok := r.byProject[threadKey{projectID, threadType}]; ok {
		return r.threads[id], nil
	}
	return nil, nil
}

func (r *fakeChatRepo) ListProjectThreads(ctx context.Context, projectID string) ([]*entity.ChatThread, error) {
	var out []*entity.ChatThread
	for _, t := range r.threads {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) UpsertParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error) {
	key := participantKey{threadID, userID}
	if p, ok := r.participants[key]; ok {
		p.LeftAt = nil
		return p, nil
	}
	p := &entity.ChatParticipant{
		ID:       threadID + ":" + userID,
		ThreadID: threadID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	r.participants[key] = p
	return p, nil
}

func (r *fakeChatRepo) GetParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error) {
	return r.participants[participantKey{threadID, userID}], nil
}

func (r *fakeChatRepo) ListParticipants(ctx context.Context, threadID string) ([]*entity.ChatParticipant, error) {
	var out []*entity.ChatParticipant
	for key, p := range r.participants {
		if key.threadID == threadID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) LeaveThread(ctx context.Context, threadID, userID string, at time.Time) error {
	if p, ok := r.participants[participantKey{threadID, userID}]; ok && p.LeftAt == nil {
		p.LeftAt = &at
	}
	return nil
}

func (r *fakeChatRepo) LeaveAllProjectThreads(ctx context.Context, projectID, userID string, at time.Time) error {
	for key, p := range r.participants {
		if key.userID != userID || p.LeftAt != nil {
			continue
		}
		if t, ok := r.threads[key.threadID]; ok && t.ProjectID == projectID {
			p.LeftAt = &at
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	notifications []*entity.Notification
}

func (r *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	r.notifications = append(r.notifications, notifications...)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.ReadAt = &at
		}
	}
	return nil
}

func (r *fakeNotificationRepo) forUser(userID string) []*entity.Notification {
	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeAuditRepo struct {
	logs []*entity.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter port.AuditFilter) ([]*entity.AuditLog, int, error) {
	var out []*entity.AuditLog
	for _, l := range r.logs {
		if filter.Entity != "" && l.Entity != filter.Entity {
			continue
		}
		if filter.ActorID != "" && l.ActorID != filter.ActorID {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

type fakeDocumentRepo struct {
	groups    map[string]*entity.DocumentGroup
	documents map[string]*entity.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		groups:    make(map[string]*entity.DocumentGroup),
		documents: make(map[string]*entity.Document),
	}
}

func (r *fakeDocumentRepo) FindGroup(ctx context.Context, projectID, name string, category entity.DocumentCategory) (*entity.DocumentGroup, error) {
	for _, g := range r.groups {
		if g.ProjectID == projectID && g.Name == name && g.Category == category {
			return g, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) CreateGroup(ctx context.Context, group *entity.DocumentGroup) error {
	r.groups[group.ID] = group
	return nil
}

func (r *fakeDocumentRepo) ListGroups(ctx context.Context, projectID string) ([]*entity.DocumentGroup, error) {
	var out []*entity.DocumentGroup
	for _, g := range r.groups {
		if g.ProjectID == projectID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) CreateDocument(ctx context.Context, doc *entity.Document) error {
	r.documents[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	return r.documents[id], nil
}

func (r *fakeDocumentRepo) LatestVersion(ctx context.Context, groupID string) (int, error) {
	latest := 0
	for _, d := range r.documents {
		if d.GroupID == groupID && d.Version > latest {
			latest = d.Version
		}
	}
	return latest, nil
}

func (r *fakeDocumentRepo) ListByGroup(ctx context.Context, groupID string) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.documents {
		if d.GroupID == groupID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) LatestPerGroup(ctx context.Context, projectID string) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, g := range r.groups {
		if g.ProjectID != projectID {
			continue
		}
		var latest *entity.Document
		for _, d := range r.documents {
			if d.GroupID == g.ID && (latest == nil || d.Version > latest.Version) {
				latest = d
			}
		}
		if latest != nil {
			out = append(out, latest)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) GroupProjectID(ctx context.Context, groupID string) (string, error) {
	if g, ok := r.groups[groupID]; ok {
		return g.ProjectID, nil
	}
	return "", nil
}

type fakeStorage struct {
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, path string, content []byte) error {
	s.files[path] = content
	return nil
}

func (s *fakeStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if content, ok := s.files[path]; ok {
		return content, nil
	}
	return nil, apperror.NotFound("file not found")
}

func (s *fakeStorage) Exists(ctx context.Context, path string) bool {
	_, ok := s.files[path]
	return ok
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error {
	delete(s.files, path)
	return nil
}

func (s *fakeStorage) GetFullPath(relativePath string) string {
	return "/tmp/" + relativePath
}

type fakeRenderer struct{}

func (fakeRenderer) RenderInvoice(doc port.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF invoice " + doc.Invoice.InvoiceNumber), nil
}

func (fakeRenderer) RenderReceipt(doc port.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF receipt " + doc.Invoice.InvoiceNumber), nil
}

type fakeExporter struct{}

func (fakeExporter) Export(ctx context.Context, entries []*entity.TimesheetEntry, users map[string]*entity.User, projects map[string]*entity.Project) ([]byte, error) {
	return []byte("XLSX"), nil
}
