package repositories

import "context"

// Repository aggregates the store interfaces used by the services
type Repository interface {
	User() UserRepository
	Question() QuestionRepository
	Dashboard() DashboardRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize prepares schema and indexes
	Initialize(ctx context.Context) error

	GetRepository() Repository

	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
