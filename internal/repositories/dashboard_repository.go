package repositories

import (
	"context"

	"github.com/questionportal/faq-service/internal/models"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// GetQuestionStatusCounts aggregates questions by status in a single query
	GetQuestionStatusCounts(ctx context.Context) (*models.QuestionStatusCounts, error)
}
