package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/questionportal/faq-service/internal/models"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

func (v *Validator) registerBusinessRules() {
	// Only non-admin roles may be chosen at signup
	v.validate.RegisterValidation("signup_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).CanSelfRegister()
	})

	v.validate.RegisterValidation("question_status", func(fl validator.FieldLevel) bool {
		return models.QuestionStatus(fl.Field().String()).IsValid()
	})

	// Question text must contain something besides whitespace
	v.validate.RegisterValidation("question_text", notBlank)
	v.validate.RegisterValidation("not_blank", notBlank)

	// bcrypt only reads the first 72 bytes and refuses longer input
	v.validate.RegisterValidation("password_bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateStatusFilter checks an optional status query value. Empty means no filter.
func (v *Validator) ValidateStatusFilter(raw string) (*models.QuestionStatus, error) {
	if raw == "" {
		return nil, nil
	}
	if err := v.Var("status", raw, "question_status"); err != nil {
		return nil, err
	}
	status := models.QuestionStatus(raw)
	return &status, nil
}
