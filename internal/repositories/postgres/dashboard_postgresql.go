package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) GetQuestionStatusCounts(ctx context.Context) (*models.QuestionStatusCounts, error) {
	var counts models.QuestionStatusCounts
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending`,
			models.QuestionApproved, models.QuestionRejected, models.QuestionPending).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate question status: %w", err)
	}
	return &counts, nil
}
