package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	returnsapp "github.com/posadmin/backend/internal/application/returns"
	transferapp "github.com/posadmin/backend/internal/application/transfer"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/infrastructure/auth"
	"github.com/posadmin/backend/internal/infrastructure/cache"
	"github.com/posadmin/backend/internal/infrastructure/config"
	"github.com/posadmin/backend/internal/infrastructure/event"
	"github.com/posadmin/backend/internal/infrastructure/logger"
	"github.com/posadmin/backend/internal/infrastructure/persistence"
	"github.com/posadmin/backend/internal/interfaces/http/handler"
	"github.com/posadmin/backend/internal/interfaces/http/middleware"
	"github.com/posadmin/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			POS Admin API
//	@version		1.0
//	@description	Retail POS admin backend for sale returns, refunds and store-to-store stock transfers

//	@contact.name	API Support
//	@contact.url	https://github.com/posadmin/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS Admin Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	saleReturnRepo := persistence.NewGormSaleReturnRepository(db.DB)
	stockTransferRepo := persistence.NewGormStockTransferRepository(db.DB)

	// Initialize application services
	returnService := returnsapp.NewReturnService(saleReturnRepo, saleRepo)
	transferService := transferapp.NewTransferService(stockTransferRepo)

	// JWT service for API authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus with the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	returnService.SetEventPublisher(eventBus)
	transferService.SetEventPublisher(eventBus)

	// Idempotency store for finalize/receive retries
	if cfg.Idempotency.Enabled {
		storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
		idempotencyStore, err := storeFactory.CreateStore(cfg.Idempotency.Backend)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		idempotencyCfg := shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
		}
		returnService.SetIdempotencyStore(idempotencyStore, idempotencyCfg)
		transferService.SetIdempotencyStore(idempotencyStore, idempotencyCfg)
		log.Info("Idempotency store initialized",
			zap.String("backend", cfg.Idempotency.Backend),
			zap.Duration("ttl", cfg.Idempotency.TTL),
		)
	}

	// Initialize HTTP handlers
	saleHandler := handler.NewSaleHandler(returnService)
	saleReturnHandler := handler.NewSaleReturnHandler(returnService)
	stockTransferHandler := handler.NewStockTransferHandler(transferService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for API routes, with public system endpoints skipped
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths,
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Sales domain: completed sales and the returns raised against them
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.GET("/:id", saleHandler.GetByID)

	salesRoutes.POST("/returns", saleReturnHandler.StartDraft)
	salesRoutes.GET("/returns", saleReturnHandler.List)
	salesRoutes.GET("/returns/stats/summary", saleReturnHandler.GetStatusSummary)
	salesRoutes.GET("/returns/number/:return_number", saleReturnHandler.GetByReturnNumber)
	salesRoutes.GET("/returns/sale/:sale_id", saleReturnHandler.ListBySale)
	salesRoutes.GET("/returns/:id", saleReturnHandler.GetByID)
	salesRoutes.PUT("/returns/:id", saleReturnHandler.UpdateDraft)
	salesRoutes.DELETE("/returns/:id", saleReturnHandler.Delete)
	salesRoutes.PUT("/returns/:id/lines", saleReturnHandler.UpdateLines)
	salesRoutes.POST("/returns/:id/lines/all", saleReturnHandler.RequestAllRemaining)
	salesRoutes.POST("/returns/:id/lines/clear", saleReturnHandler.ClearRequested)
	salesRoutes.PUT("/returns/:id/lines/:sale_item_id", saleReturnHandler.SetLineQuantity)
	salesRoutes.DELETE("/returns/:id/lines/:sale_item_id", saleReturnHandler.RemoveLine)
	salesRoutes.POST("/returns/:id/allocation/split", saleReturnHandler.SuggestSplit)
	salesRoutes.POST("/returns/:id/finalize", saleReturnHandler.Finalize)
	salesRoutes.POST("/returns/:id/void", saleReturnHandler.Void)
	r.Register(salesRoutes)

	// Stock transfer routes
	transferRoutes := router.NewDomainGroup("transfers", "/transfers")
	transferRoutes.POST("", stockTransferHandler.Create)
	transferRoutes.GET("", stockTransferHandler.List)
	transferRoutes.GET("/number/:transfer_number", stockTransferHandler.GetByTransferNumber)
	transferRoutes.GET("/inbound/:store_id", stockTransferHandler.ListInbound)
	transferRoutes.GET("/:id", stockTransferHandler.GetByID)
	transferRoutes.PUT("/:id", stockTransferHandler.Update)
	transferRoutes.DELETE("/:id", stockTransferHandler.Delete)
	transferRoutes.PUT("/:id/items", stockTransferHandler.UpdateItems)
	transferRoutes.DELETE("/:id/items/:item_id", stockTransferHandler.RemoveItem)
	transferRoutes.POST("/:id/send", stockTransferHandler.Send)
	transferRoutes.POST("/:id/receive", stockTransferHandler.Receive)
	transferRoutes.POST("/:id/cancel", stockTransferHandler.Cancel)
	r.Register(transferRoutes)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
