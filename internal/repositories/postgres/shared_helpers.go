package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/questionportal/faq-service/internal/models"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// AttachAuthors loads the authors of questions in one query and fills Creator.
func (h *SharedHelpers) AttachAuthors(ctx context.Context, questions []*models.Question) error {
	ids := models.AuthorIDs(questions)
	if len(ids) == 0 {
		return nil
	}

	var users []*models.User
	if err := h.db.WithContext(ctx).
		Select("id", "name", "role").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load question authors: %w", err)
	}

	models.AttachAuthors(questions, users)
	return nil
}
