package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/lib/pq" // PostgreSQL driver

	"shopsync/internal/config"
	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/logger"
	"shopsync/internal/mapper"
	"shopsync/internal/schema"
	syncsvc "shopsync/internal/sync"
	"shopsync/internal/tenant"
	"shopsync/pkg/bootstrap"
	"shopsync/pkg/health"
	"shopsync/pkg/metrics"
	"shopsync/pkg/middleware"
	"shopsync/pkg/migrations"
	"shopsync/pkg/ratelimit"
	"shopsync/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitPublisher(); err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, "sync-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.db != nil && a.Config.Database.RunMigrations {
		if err := migrations.RunPostgres(a.db, a.Config.Database.MigrationsDir); err != nil {
			return err
		}
		a.Logger.InfowCtx(ctx, "Database migrations applied", "dir", a.Config.Database.MigrationsDir)
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient = mongoClient

	if a.Config.Database.Redis.Host != "" {
		redisClient, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			a.Logger.WarnwCtx(ctx, "Redis connection failed, schema cache will use local tier only", "error", err)
		} else {
			a.redisClient = redisClient
		}
	}

	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	if a.mongoClient == nil {
		return nil
	}
	dbName := a.Config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(dbName)
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("sync-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.Management.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.Management.RateLimit.RPS,
			Burst:           a.Config.Management.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.Management.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.Management.RateLimit.MaxAge) * time.Second,
			ExemptPrefixes:  []string{"/webhooks", "/health", "/metrics"},
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	repo, err := tenant.NewRepository(a.Config.Database, a.db, a.mongoDatabase())
	if err != nil {
		return err
	}
	if mongoRepo, ok := repo.(*tenant.MongoRepository); ok {
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure mongodb indexes: %w", err)
		}
	}

	resolver := tenant.NewResolver(repo, a.Config.Storefront.PlatformSuffix, a.Logger)
	client := destination.NewHTTPClient(a.Config.Destination, &a.Config.CircuitBreaker, a.Logger)
	introspector := schema.NewIntrospector(client, a.redisClient, a.Config.Database.Redis.TTLSeconds, a.Logger)
	orderMapper := mapper.New(mapper.Config{HighValueThreshold: a.Config.Mapping.HighValueThreshold})

	service := syncsvc.NewService(
		resolver,
		introspector,
		client,
		orderMapper,
		a.Config.Storefront.WebhookSecret,
		a.Config.Destination.Fallback,
		a.Publisher,
		a.Logger,
	)

	syncHandler := syncsvc.NewHandler(service, introspector, a.Config.Storefront.ClientSecret, a.Logger)
	tenantHandler := tenant.NewHandler(repo, resolver, a.Logger)

	syncHandler.RegisterRoutes(router)
	tenantHandler.RegisterRoutes(router)

	metrics.RegisterSyncMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	if a.Config.Management.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}
	if a.Publisher != nil {
		metrics.RegisterBrokerMetrics()
	}

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.Config.Destination.BaseURL != "" {
		healthRegistry.Register(health.NewDestinationChecker(a.Config.Destination.BaseURL))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	return a.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)

		return errs
	})
}
