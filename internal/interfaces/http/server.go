// Package http is the thin adapter between the REST surface and the
// application services. Authorization decisions live in the policy table and
// the services; handlers only bind requests and map errors.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/port"
	"projectdesk/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the server exposes
type Services struct {
	Users        service.UserService
	Projects     service.ProjectService
	Procurement  service.ProcurementService
	Invoices     service.InvoiceService
	Timesheets   service.TimesheetService
	Documents    service.DocumentService
	Chat         service.ChatService
	Notification service.NotificationService
	Audit        service.AuditService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	userRepo   port.UserRepository
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, userRepo port.UserRepository, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		userRepo: userRepo,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	api.Use(authMiddleware(s.userRepo))
	{
		projects := api.Group("/projects")
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.POST("/:id/request-start", handlers.RequestProjectStart)
			projects.POST("/:id/approve", handlers.ApproveProject)
			projects.POST("/:id/complete", handlers.CompleteProject)
			projects.PATCH("/:id/status", handlers.UpdateProjectStatus)
			projects.POST("/:id/staff", handlers.AssignStaff)
			projects.DELETE("/:id/staff/:staffId", handlers.RemoveStaff)
			projects.POST("/:id/updates", handlers.AddProjectUpdate)
			projects.GET("/:id/updates", handlers.ListProjectUpdates)
			projects.GET("/:id/procurement", handlers.ListProjectProcurement)
			projects.GET("/:id/documents", handlers.ListLatestDocuments)
			projects.GET("/:id/document-groups", handlers.ListDocumentGroups)
			projects.GET("/:id/chat/threads", handlers.ListChatThreads)
		}

		procurement := api.Group("/procurement")
		{
			procurement.POST("", handlers.CreateProcurement)
			procurement.GET("", handlers.ListProcurement)
			procurement.GET("/:id", handlers.GetProcurement)
			procurement.PATCH("/:id", handlers.UpdateProcurement)
			procurement.POST("/:id/submit", handlers.SubmitProcurement)
			procurement.POST("/:id/approve", handlers.ApproveProcurement)
			procurement.POST("/:id/reject", handlers.RejectProcurement)
			procurement.GET("/:id/items", handlers.ListProcurementItems)
			procurement.POST("/:id/items", handlers.AddProcurementItem)
			procurement.PATCH("/:id/items/:itemId", handlers.UpdateProcurementItem)
			procurement.DELETE("/:id/items/:itemId", handlers.DeleteProcurementItem)
			procurement.POST("/:id/purchase-order", handlers.GeneratePurchaseOrder)
			procurement.GET("/:id/purchase-order", handlers.GetPurchaseOrder)
		}

		purchaseOrders := api.Group("/purchase-orders")
		{
			purchaseOrders.POST("/:id/order", handlers.MarkPurchaseOrderOrdered)
			purchaseOrders.POST("/:id/deliver", handlers.MarkPurchaseOrderDelivered)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", handlers.CreateInvoice)
			invoices.GET("", handlers.ListInvoices)
			invoices.GET("/:id", handlers.GetInvoice)
			invoices.GET("/:id/lines", handlers.ListInvoiceLines)
			invoices.POST("/:id/approve", handlers.ApproveInvoice)
			invoices.POST("/:id/reject", handlers.RejectInvoice)
			invoices.POST("/:id/mark-paid", handlers.MarkInvoicePaid)
			invoices.POST("/:id/confirm-payment", handlers.ConfirmInvoicePayment)
			invoices.GET("/:id/file", handlers.DownloadInvoiceFile)
			invoices.GET("/:id/receipt", handlers.DownloadReceiptFile)
		}

		timesheets := api.Group("/timesheets")
		{
			timesheets.POST("", handlers.CreateTimesheet)
			timesheets.GET("", handlers.ListTimesheets)
			timesheets.GET("/export", handlers.ExportTimesheets)
			timesheets.POST("/:id/approve", handlers.ApproveTimesheet)
			timesheets.POST("/:id/reject", handlers.RejectTimesheet)
			timesheets.DELETE("/:id", handlers.DeleteTimesheet)
		}

		documents := api.Group("/documents")
		{
			documents.POST("", handlers.UploadDocument)
			documents.GET("/:id/download", handlers.DownloadDocument)
		}
		api.GET("/document-groups/:groupId/versions", handlers.ListDocumentVersions)

		chat := api.Group("/chat/threads")
		{
			chat.POST("/:id/join", handlers.JoinChatThread)
			chat.POST("/:id/leave", handlers.LeaveChatThread)
			chat.GET("/:id/participants", handlers.ListChatParticipants)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("/:id/read", handlers.MarkNotificationRead)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/activity", handlers.ListActivity)
			admin.POST("/users", handlers.CreateUser)
			admin.GET("/users", handlers.ListUsers)
		}
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
