package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type UserMongo struct {
	users *mongo.Collection
}

func NewUserMongo(users *mongo.Collection) repositories.UserRepository {
	return &UserMongo{users: users}
}

func (u *UserMongo) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := u.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user email %w", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserMongo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *UserMongo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *UserMongo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := u.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserMongo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := u.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return count > 0, nil
}

func (u *UserMongo) UpdateAccessToken(ctx context.Context, id string, token string) error {
	result, err := u.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"accessToken": token, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
