package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/isell/backend/internal/application/catalog"
	orderapp "github.com/isell/backend/internal/application/order"
	"github.com/isell/backend/internal/domain/risk"
	"github.com/isell/backend/internal/infrastructure/auth"
	"github.com/isell/backend/internal/infrastructure/config"
	"github.com/isell/backend/internal/infrastructure/grist"
	"github.com/isell/backend/internal/infrastructure/logger"
	"github.com/isell/backend/internal/infrastructure/persistence"
	"github.com/isell/backend/internal/interfaces/http/handler"
	"github.com/isell/backend/internal/interfaces/http/middleware"
	"github.com/isell/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting iSell Backend",
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

	// Redis backs the Grist snapshot cache and health reporting. A down
	// redis is tolerated: the snapshot cache falls through to the live
	// source and the health endpoint reports the component state.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	{
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable at startup", zap.Error(err))
		}
		cancel()
	}

	// Grist client for the external catalog document
	gristClient, err := grist.NewClient(cfg.Grist, log)
	if err != nil {
		log.Fatal("Failed to create grist client", zap.Error(err))
	}
	var catalogSource risk.CatalogSource = gristClient
	if cfg.Grist.CacheEnabled {
		catalogSource = grist.NewSnapshotCache(gristClient, redisClient, cfg.Grist.SnapshotTTL, log)
		log.Info("Grist snapshot cache enabled", zap.Duration("ttl", cfg.Grist.SnapshotTTL))
	}
	gristFeed := grist.NewFeed(gristClient)

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	addressRepo := persistence.NewGormCompanyAddressRepository(db.DB)
	matrixRepo := persistence.NewGormProductCategoryRiskRepository(db.DB)

	// Initialize domain and application services
	riskEvaluator := risk.NewEvaluator(catalogSource, matrixRepo, log)
	orderService := orderapp.NewService(orderRepo, productRepo, tariffRepo, addressRepo, riskEvaluator, log)
	productService := catalogapp.NewProductService(productRepo, tariffRepo)
	tariffService := catalogapp.NewTariffService(tariffRepo, gristFeed, log)
	riskSyncService := catalogapp.NewRiskSyncService(matrixRepo, gristFeed, log)

	// JWT validation (tokens are issued by the identity service)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	productHandler := handler.NewProductHandler(productService)
	tariffHandler := handler.NewTariffHandler(tariffService, riskSyncService)
	healthHandler := handler.NewHealthHandler(db.DB, redisClient)

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
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. JWT - Authenticate API requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// JWT authentication for API routes; health stays public
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
		},
		Logger: log,
	}))

	// Liveness probes outside API versioning
	liveness := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	engine.GET("/health", liveness)
	engine.GET("/healthz", liveness)

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(healthHandler).
		Register(orderHandler).
		Register(productHandler).
		Register(tariffHandler).
		Setup()

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
