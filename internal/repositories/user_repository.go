package repositories

import (
	"context"

	"github.com/questionportal/faq-service/internal/models"
)

// UserRepository is the credential store. Email is unique; Create returns ErrDuplicateKey
// when it is not.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateAccessToken replaces the user's current session token
	UpdateAccessToken(ctx context.Context, id string, token string) error
}
