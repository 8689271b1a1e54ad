package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/nasrosoft/invoice-generator-saas/internal/application/identity"
	invoicingapp "github.com/nasrosoft/invoice-generator-saas/internal/application/invoicing"
	partnerapp "github.com/nasrosoft/invoice-generator-saas/internal/application/partner"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/auth"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/config"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/logger"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/persistence"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/printing"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/storage"
	"github.com/nasrosoft/invoice-generator-saas/internal/interfaces/http/handler"
	"github.com/nasrosoft/invoice-generator-saas/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewFromConfig(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoice generator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Token issuing and revocation
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := newTokenBlacklist(cfg, log)

	// PDF rendering, with optional S3 archival
	renderer, err := printing.NewChromedpRenderer(cfg.PDF, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer renderer.Close()

	var archive invoicingapp.PDFArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF archive", zap.Error(err))
		}
		archive = s3Archive
		log.Info("PDF archival enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, userRepo, log)
	pdfService := invoicingapp.NewPDFService(invoiceRepo, customerRepo, userRepo, renderer, archive, log)

	// HTTP layer
	engine := router.New(router.Dependencies{
		Config:          cfg,
		Logger:          log,
		JWTService:      jwtService,
		TokenBlacklist:  blacklist,
		AuthHandler:     handler.NewAuthHandler(authService, cfg.Cookie),
		CustomerHandler: handler.NewCustomerHandler(customerService),
		InvoiceHandler:  handler.NewInvoiceHandler(invoiceService, pdfService),
		SystemHandler:   handler.NewSystemHandler(db, version),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

// newTokenBlacklist connects to Redis when configured and falls back to
// the in-process store otherwise, so single-node deployments work
// without Redis.
func newTokenBlacklist(cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	if cfg.Redis.Host == "" {
		log.Info("Redis not configured, using in-memory token blacklist")
		return auth.NewInMemoryTokenBlacklist()
	}

	blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist()
	}

	log.Info("Token blacklist backed by Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)
	return blacklist
}
