package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"projectdesk/internal/application/dispatcher"
	"projectdesk/internal/application/service"
	"projectdesk/internal/config"
	"projectdesk/internal/infrastructure/pdf"
	"projectdesk/internal/infrastructure/persistence/repository"
	"projectdesk/internal/infrastructure/persistence/sqlite"
	"projectdesk/internal/infrastructure/report"
	"projectdesk/internal/infrastructure/storage"
	httpserver "projectdesk/internal/interfaces/http"
	"projectdesk/pkg/database"
	"projectdesk/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting project management server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.BasePath, 0755); err != nil {
		logger.Fatal("Failed to create storage directory", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	userRepo := repository.NewUserRepository(db.DB, logger)
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	procurementRepo := repository.NewProcurementRepository(db.DB, logger)
	poRepo := repository.NewPurchaseOrderRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	timesheetRepo := repository.NewTimesheetRepository(db.DB, logger)
	chatRepo := repository.NewChatRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)

	fileStorage := storage.NewLocalFileStorage(cfg.Storage.BasePath, logger)
	renderer := pdf.NewRenderer(cfg.Company.Name, logger)
	exporter := report.NewTimesheetExporter(logger)

	kv := utils.NewKVLogger(logger)
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))

	auditService := service.NewAuditService(auditRepo, kv)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, kv)
	chatService := service.NewChatService(chatRepo, projectRepo, kv)

	effects := service.NewEffects(auditService, chatService, notificationService, kv)
	effects.Register(events)

	services := httpserver.Services{
		Users:        service.NewUserService(userRepo, kv),
		Projects:     service.NewProjectService(projectRepo, userRepo, txManager, events, kv),
		Procurement:  service.NewProcurementService(procurementRepo, poRepo, projectRepo, txManager, events, kv),
		Invoices:     service.NewInvoiceService(invoiceRepo, projectRepo, userRepo, txManager, renderer, fileStorage, events, kv),
		Timesheets:   service.NewTimesheetService(timesheetRepo, projectRepo, userRepo, exporter, events, kv),
		Documents:    service.NewDocumentService(documentRepo, projectRepo, txManager, fileStorage, events, kv),
		Chat:         chatService,
		Notification: notificationService,
		Audit:        auditService,
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, userRepo, services, kv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}

	if err := events.Close(); err != nil {
		logger.Error("Dispatcher close error", zap.Error(err))
	}

	logger.Info("Server exited")
}
