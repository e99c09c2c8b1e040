package repositories

import (
	"context"

	"github.com/questionportal/faq-service/internal/models"
)

// QuestionRepository stores questions. Reads return questions with Creator populated.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error

	// List returns questions matching filters, newest first, and the match count
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)

	// UpdateReview overwrites status, and finalAnswer when non-nil, returning the updated record
	UpdateReview(ctx context.Context, id string, status models.QuestionStatus, finalAnswer *string) (*models.Question, error)
}
