package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/questionportal/faq-service/internal/repositories"
)

const (
	usersCollection     = "users"
	questionsCollection = "questions"
)

// MongoRepository implements repositories.Repository on a single database
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database

	user      repositories.UserRepository
	question  repositories.QuestionRepository
	dashboard repositories.DashboardRepository
}

type RepositoryConfig struct {
	Client   *mongo.Client
	Database string
}

func NewMongoRepository(config RepositoryConfig) *MongoRepository {
	db := config.Client.Database(config.Database)
	users := db.Collection(usersCollection)
	questions := db.Collection(questionsCollection)

	return &MongoRepository{
		client:    config.Client,
		db:        db,
		user:      NewUserMongo(users),
		question:  NewQuestionMongo(questions, users),
		dashboard: NewDashboardMongo(questions),
	}
}

func (r *MongoRepository) User() repositories.UserRepository {
	return r.user
}

func (r *MongoRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *MongoRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	if err := r.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index and the question listing indexes
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = r.db.Collection(questionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create questions indexes: %w", err)
	}

	return nil
}

// RepositoryManager owns the mongo repository lifecycle
type RepositoryManager struct {
	repo *MongoRepository
}

func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{repo: NewMongoRepository(config)}
}

func (m *RepositoryManager) Initialize(ctx context.Context) error {
	return m.repo.EnsureIndexes(ctx)
}

func (m *RepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *RepositoryManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *RepositoryManager) Shutdown(ctx context.Context) error {
	if err := m.repo.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}
