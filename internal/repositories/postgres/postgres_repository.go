package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db *gorm.DB

	user      repositories.UserRepository
	question  repositories.QuestionRepository
	dashboard repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB *gorm.DB
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	helpers := NewSharedHelpers(config.DB)

	return &PostgreSQLRepository{
		db:        config.DB,
		user:      NewUserPostgreSQL(config.DB),
		question:  NewQuestionPostgreSQL(config.DB, helpers),
		dashboard: NewDashboardRepository(config.DB),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// Ping checks the health of the database connection
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// RepositoryManager owns the postgres repository lifecycle
type RepositoryManager struct {
	db   *gorm.DB
	repo repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{
		db:   config.DB,
		repo: NewPostgreSQLRepository(config),
	}
}

// Initialize migrates the users and questions tables
func (m *RepositoryManager) Initialize(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Question{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (m *RepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *RepositoryManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *RepositoryManager) Shutdown(ctx context.Context) error {
	return m.repo.Close()
}
