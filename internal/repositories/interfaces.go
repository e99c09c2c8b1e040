package repositories

import (
	"github.com/questionportal/faq-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Status    *models.QuestionStatus `json:"status"`
	CreatedBy *string                `json:"created_by"`
}
