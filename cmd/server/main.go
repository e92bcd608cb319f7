package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/recordvault/backend/internal/application/billing"
	forecastapp "github.com/recordvault/backend/internal/application/forecast"
	invoicingapp "github.com/recordvault/backend/internal/application/invoicing"
	ratesapp "github.com/recordvault/backend/internal/application/rates"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/infrastructure/audit"
	"github.com/recordvault/backend/internal/infrastructure/config"
	"github.com/recordvault/backend/internal/infrastructure/logger"
	"github.com/recordvault/backend/internal/infrastructure/persistence"
	"github.com/recordvault/backend/internal/interfaces/http/handler"
	"github.com/recordvault/backend/internal/interfaces/http/middleware"
	"github.com/recordvault/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting RecordVault Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Run schema migrations
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	catalogRepo := persistence.NewGormRateCatalogRepository(db.DB)
	overrideRepo := persistence.NewGormRateOverrideRepository(db.DB)
	periodRepo := persistence.NewGormBillingPeriodRepository(db.DB)
	billingConfigRepo := persistence.NewGormBillingConfigRepository(db.DB)
	scenarioRepo := persistence.NewGormScenarioRepository(db.DB)
	containerInventory := persistence.NewGormContainerInventory(db.DB)
	ticketSource := persistence.NewGormServiceTicketSource(db.DB)
	profileSource := persistence.NewGormBillingProfileSource(db.DB)
	invoiceLedger := persistence.NewGormInvoiceLedger(db.DB)

	// Seed the billing configuration on first start
	seedFee, err := decimal.NewFromString(cfg.Billing.DefaultMinimumFee)
	if err != nil {
		log.Fatal("Invalid billing.default_minimum_fee", zap.Error(err))
	}
	if err := billingConfigRepo.SeedIfEmpty(context.Background(), cfg.Billing.DayOfMonth, seedFee); err != nil {
		log.Fatal("Failed to seed billing configuration", zap.Error(err))
	}

	// Initialize application services
	auditLog := audit.NewZapAuditLog(log)
	rateService := ratesapp.NewRateService(catalogRepo, overrideRepo, auditLog, log)
	resolver := rateService.Resolver()
	engine := billing.NewEngine(resolver, containerInventory, ticketSource, profileSource)
	billingService := billingapp.NewBillingService(periodRepo, engine, billingConfigRepo, auditLog, log)
	invoiceService := invoicingapp.NewInvoiceService(periodRepo, profileSource, invoiceLedger, auditLog, log)
	forecaster := forecast.NewForecaster(resolver, containerInventory, profileSource)
	forecastService := forecastapp.NewForecastService(scenarioRepo, forecaster, auditLog, log)

	// Initialize handlers
	rateHandler := handler.NewRateHandler(rateService)
	billingHandler := handler.NewBillingHandler(billingService, invoiceService)
	forecastHandler := handler.NewForecastHandler(forecastService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	ginEngine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))

	// Health check endpoint (outside API versioning)
	ginEngine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(ginEngine, "v1")

	rateRoutes := router.NewDomainGroup("rates", "/rates")
	rateRoutes.POST("", rateHandler.CreateCatalogEntry)
	rateRoutes.GET("/active", rateHandler.GetActiveRate)
	rateRoutes.POST("/:id/activate", rateHandler.ActivateCatalogEntry)
	rateRoutes.POST("/:id/expire", rateHandler.ExpireCatalogEntry)
	r.Register(rateRoutes)

	overrideRoutes := router.NewDomainGroup("rate-overrides", "/rate-overrides")
	overrideRoutes.POST("", rateHandler.CreateOverride)
	overrideRoutes.POST("/:id/approve", rateHandler.ApproveOverride)
	overrideRoutes.POST("/:id/activate", rateHandler.ActivateOverride)
	r.Register(overrideRoutes)

	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.GET("/:id/rate", rateHandler.GetCustomerRate)
	r.Register(customerRoutes)

	periodRoutes := router.NewDomainGroup("billing-periods", "/billing-periods")
	periodRoutes.POST("", billingHandler.CreatePeriod)
	periodRoutes.GET("", billingHandler.ListPeriods)
	periodRoutes.GET("/:id", billingHandler.GetPeriod)
	periodRoutes.POST("/:id/calculate", billingHandler.CalculateBilling)
	periodRoutes.POST("/:id/approve", billingHandler.ApprovePeriod)
	periodRoutes.POST("/:id/close", billingHandler.ClosePeriod)
	periodRoutes.POST("/:id/reset", billingHandler.ResetPeriod)
	periodRoutes.GET("/:id/invoices/preview", billingHandler.PreviewInvoices)
	periodRoutes.POST("/:id/invoices", billingHandler.GenerateInvoices)
	r.Register(periodRoutes)

	forecastRoutes := router.NewDomainGroup("forecasts", "/forecasts")
	forecastRoutes.POST("", forecastHandler.RunScenario)
	forecastRoutes.GET("", forecastHandler.ListScenarios)
	forecastRoutes.GET("/:id", forecastHandler.GetScenario)
	forecastRoutes.DELETE("/:id", forecastHandler.DeleteScenario)
	r.Register(forecastRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
