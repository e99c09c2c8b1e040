package services

import (
	"context"
	"time"

	"github.com/questionportal/faq-service/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

// Principal is the authenticated caller resolved from a session token
type Principal struct {
	UserID string          `json:"userId"`
	Role   models.UserRole `json:"role"`
}

type UserResponse struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	User        *UserResponse `json:"user"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Counts    int64              `json:"counts"`
}

type DashboardResponse struct {
	TotalQuestions int64   `json:"totalQuestions"`
	ApprovedCount  int64   `json:"approvedCount"`
	RejectedCount  int64   `json:"rejectedCount"`
	RejectionRate  float64 `json:"rejectionRate"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*LoginResponse, error)
	ResolveToken(ctx context.Context, token string) (*Principal, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)

	// EnsureAdmin creates the bootstrap admin unless the email already exists. It reports
	// whether an account was created.
	EnsureAdmin(ctx context.Context, email, password, name string) (bool, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *models.CreateQuestionRequest, authorID string) (*models.Question, error)
	List(ctx context.Context, requester Principal, status *models.QuestionStatus) (*QuestionListResponse, error)
	Review(ctx context.Context, questionID string, req *models.ReviewQuestionRequest, reviewerID string) (*models.Question, error)
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

type ExportService interface {
	// ExportQuestions renders matching questions as an XLSX workbook
	ExportQuestions(ctx context.Context, status *models.QuestionStatus) ([]byte, error)
}

// AnswerGenerator drafts an answer for a question. Errors are not retried.
type AnswerGenerator interface {
	Generate(ctx context.Context, questionText string) (string, error)
}

type ServiceManager interface {
	Auth() AuthService
	Question() QuestionService
	Dashboard() DashboardService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
