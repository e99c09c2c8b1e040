package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return q.helpers.AttachAuthors(ctx, []*models.Question{question})
}

// getByID reloads a question with its author
func (q *QuestionPostgreSQL) getByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := q.helpers.AttachAuthors(ctx, []*models.Question{&question}); err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Question{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	questions := make([]*models.Question, 0)
	if err := query.Order("created_at DESC").Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	if err := q.helpers.AttachAuthors(ctx, questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (q *QuestionPostgreSQL) UpdateReview(ctx context.Context, id string, status models.QuestionStatus, finalAnswer *string) (*models.Question, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if finalAnswer != nil {
		updates["final_answer"] = *finalAnswer
	}

	result := q.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update question review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}

	return q.getByID(ctx, id)
}
