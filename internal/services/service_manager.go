package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/events"
	"github.com/questionportal/faq-service/internal/repositories"
	"github.com/questionportal/faq-service/internal/validator"
	"github.com/questionportal/faq-service/pkg/auth"
)

// ServiceDependencies are the collaborators shared by every service
type ServiceDependencies struct {
	Repo      repositories.Repository
	Tokens    *auth.TokenManager
	Cache     *cache.CacheManager
	Generator AnswerGenerator
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps ServiceDependencies

	authService      AuthService
	questionService  QuestionService
	dashboardService DashboardService
	exportService    ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps ServiceDependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{deps: deps}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.Repo == nil || sm.deps.Tokens == nil || sm.deps.Generator == nil {
		return fmt.Errorf("service manager requires a repository, token manager and answer generator")
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Tokens, d.Cache, d.Logger, d.Validator)
	sm.questionService = NewQuestionService(d.Repo, d.Generator, d.Publisher, d.Cache, d.Logger, d.Validator)
	sm.dashboardService = NewDashboardService(d.Repo, d.Cache, d.Logger)
	sm.exportService = NewExportService(d.Repo, d.Logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")
	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.questionService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// The cache is optional, so an outage only degrades performance
	if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
		sm.deps.Logger.WarnContext(ctx, "Cache health check failed", "error", err)
	}

	return nil
}

// Shutdown releases the publisher, generator and cache. The repository is owned by its
// manager and closed separately.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if closer, ok := sm.deps.Generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close answer generator", "error", err)
		}
	}

	if err := sm.deps.Cache.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close cache", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")
	return nil
}
