package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/config"
	"github.com/questionportal/faq-service/internal/events"
	"github.com/questionportal/faq-service/internal/handlers"
	"github.com/questionportal/faq-service/internal/repositories"
	"github.com/questionportal/faq-service/internal/repositories/mongodb"
	"github.com/questionportal/faq-service/internal/repositories/postgres"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
	"github.com/questionportal/faq-service/internal/validator"
	"github.com/questionportal/faq-service/pkg"
	"github.com/questionportal/faq-service/pkg/auth"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repoManager, err := newRepositoryManager(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := repoManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	if err := repoManager.HealthCheck(ctx); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	// Redis is optional; without it every cache read misses
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, caching disabled", "error", err)
			redisClient = nil
		}
	}

	publisher, err := newEventPublisher(ctx, cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	generator, err := services.NewGeminiAnswerGenerator(ctx, cfg.AI, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize answer generator: %v", err)
	}

	validator := validator.New()

	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repoManager.GetRepository(),
		Tokens:    auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn),
		Cache:     cache.NewCacheManager(redisClient),
		Generator: generator,
		Publisher: publisher,
		Logger:    slogLogger,
		Validator: validator,
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	created, err := serviceManager.Auth().EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}
	if !created {
		logger.Info("Admin user already exists", "email", cfg.Admin.Email)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.CORSAllowedOrigins)
	handlers.NewHandlerManager(serviceManager, validator, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "database", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stops the in-process event consumer
	stop()

	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	logger.Info("Server exited")
}

func newRepositoryManager(ctx context.Context, cfg *config.Config) (repositories.RepositoryManager, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db}), nil
	case config.DriverMongo:
		client, err := pkg.InitMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewRepositoryManager(mongodb.RepositoryConfig{
			Client:   client,
			Database: cfg.Mongo.Database,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// newEventPublisher publishes to kafka when brokers are configured, otherwise to an
// in-process channel drained by a logging consumer.
func newEventPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic, logger)
	}

	publisher, bus := events.NewInProcessPublisher(cfg.EventsTopic, logger)
	if err := events.RunLogConsumer(ctx, bus, cfg.EventsTopic, logger); err != nil {
		_ = publisher.Close()
		return nil, err
	}
	return publisher, nil
}
