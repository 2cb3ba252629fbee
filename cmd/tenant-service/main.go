package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/tenant-service/internal/di"
	"github.com/prohmpiriya/tenant-service/internal/event"
	"github.com/prohmpiriya/tenant-service/internal/handler"
	"github.com/prohmpiriya/tenant-service/pkg/cache"
	"github.com/prohmpiriya/tenant-service/pkg/config"
	"github.com/prohmpiriya/tenant-service/pkg/database"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/middleware"
	"github.com/prohmpiriya/tenant-service/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: !cfg.IsProduction(),
		OutputPath:  "stdout",
	}); err != nil {
		logger.Fatal("failed to init logger", zap.Error(err))
	}
	log := logger.Get()
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, telemetry.FromConfig(&cfg.App, &cfg.OTel)); err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if dir := cfg.Database.MigrationsDir; dir != "" {
		applied, err := db.Migrate(ctx, dir)
		if err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("database migrations applied", zap.Int64s("versions", applied))
	}

	var redisCache *cache.Redis
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
	}

	var publisher event.Publisher = event.NewNopPublisher()
	if cfg.Kafka.Enabled {
		publisher, err = event.NewKafkaPublisher(&cfg.Kafka)
		if err != nil {
			log.Fatal("failed to create kafka publisher", zap.Error(err))
		}
	}

	container, err := di.NewContainer(&di.ContainerConfig{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Redis:     redisCache,
		Publisher: publisher,
	})
	if err != nil {
		log.Fatal("failed to build container", zap.Error(err))
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)),
		telemetry.GinMiddleware(container.Metrics),
	)
	handler.RegisterRoutes(router, container.TenantHandler, container.HealthHandler, handler.Middlewares{
		Auth:         middleware.JWTMiddleware(&middleware.JWTConfig{Secret: cfg.JWT.Secret}),
		OptionalAuth: middleware.JWTMiddleware(&middleware.JWTConfig{Secret: cfg.JWT.Secret, Optional: true}),
		Policy:       container.RoutePolicy.Middleware(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("tenant service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down tenant service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	publisher.Close()
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}
	db.Close()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to shutdown telemetry", zap.Error(err))
	}

	log.Info("tenant service exited")
}
