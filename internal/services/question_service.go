package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/events"
	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
	"github.com/questionportal/faq-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	generator AnswerGenerator
	publisher events.EventPublisher
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(
	repo repositories.Repository,
	generator AnswerGenerator,
	publisher events.EventPublisher,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
	validator *validator.Validator,
) QuestionService {
	return &questionService{
		repo:      repo,
		generator: generator,
		publisher: publisher,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

// Create drafts an AI answer and stores the question as pending. Lifecycle fields on the
// request are ignored.
func (s *questionService) Create(ctx context.Context, req *models.CreateQuestionRequest, authorID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}
	if authorID == "" {
		return nil, ErrUnauthorized
	}

	text := strings.TrimSpace(req.QuestionText)

	answer, err := s.generator.Generate(ctx, text)
	if err != nil {
		s.logger.ErrorContext(ctx, "Answer generation failed", "author_id", authorID, "error", err)
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			err = &UpstreamError{Provider: "answer generator", Err: err}
		}
		return nil, err
	}

	question := &models.Question{
		QuestionText:      text,
		CreatedBy:         &authorID,
		AISuggestedAnswer: &answer,
		Status:            models.QuestionPending,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateDashboardStats(ctx, s.cache)
	s.publish(ctx, events.QuestionCreated, question, authorID)

	s.logger.InfoContext(ctx, "Question created", "question_id", question.ID, "author_id", authorID)
	return question, nil
}

func (s *questionService) List(ctx context.Context, requester Principal, status *models.QuestionStatus) (*QuestionListResponse, error) {
	if status != nil && !status.IsValid() {
		return nil, validationError(validator.ValidationErrors{{
			Field:   "status",
			Message: "must be one of [approved, rejected, pending]",
			Value:   *status,
			Rule:    "question_status",
		}})
	}

	filters := repositories.QuestionFilters{Status: status}
	switch requester.Role {
	case models.RoleAdmin, models.RoleViewer:
		// all questions
	case models.RoleContributor:
		filters.CreatedBy = &requester.UserID
	default:
		return nil, fmt.Errorf("%w: role %q cannot list questions", ErrForbidden, requester.Role)
	}

	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &QuestionListResponse{Questions: questions, Counts: total}, nil
}

// Review sets the status and optionally the final answer. Already reviewed questions may
// be reviewed again.
func (s *questionService) Review(ctx context.Context, questionID string, req *models.ReviewQuestionRequest, reviewerID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	question, err := s.repo.Question().UpdateReview(ctx, questionID, req.Status, req.FinalAnswer)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to review question: %w", err)
	}

	cache.InvalidateDashboardStats(ctx, s.cache)
	s.publish(ctx, events.QuestionReviewed, question, reviewerID)

	s.logger.InfoContext(ctx, "Question reviewed", "question_id", question.ID, "status", question.Status, "reviewer_id", reviewerID)
	return question, nil
}

func (s *questionService) publish(ctx context.Context, eventType string, question *models.Question, actorID string) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, events.QuestionEvent{
		QuestionID: question.ID,
		Status:     string(question.Status),
		ActorID:    actorID,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish question event", "event_type", eventType, "question_id", question.ID, "error", err)
	}
}
