package models

type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6,password_bytes"`
	Name     string   `json:"name" validate:"required,not_blank,max=100"`
	Role     UserRole `json:"role" validate:"required,signup_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateQuestionRequest accepts the lifecycle fields so older clients keep working,
// but only QuestionText is used.
type CreateQuestionRequest struct {
	QuestionText      string  `json:"questionText" validate:"required,question_text"`
	AISuggestedAnswer *string `json:"aiSuggestedAnswer"`
	FinalAnswer       *string `json:"finalAnswer"`
	Status            *string `json:"status"`
}

type ReviewQuestionRequest struct {
	Status      QuestionStatus `json:"status" validate:"required,question_status"`
	FinalAnswer *string        `json:"finalAnswer"`
}

// QuestionListQuery is bound from the query string of the list and export endpoints.
type QuestionListQuery struct {
	Status string `form:"status" validate:"omitempty,question_status"`
}
