package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type QuestionMongo struct {
	questions *mongo.Collection
	users     *mongo.Collection
}

func NewQuestionMongo(questions, users *mongo.Collection) repositories.QuestionRepository {
	return &QuestionMongo{questions: questions, users: users}
}

func (q *QuestionMongo) Create(ctx context.Context, question *models.Question) error {
	now := time.Now().UTC()
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	if _, err := q.questions.InsertOne(ctx, question); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return q.attachAuthors(ctx, []*models.Question{question})
}

func (q *QuestionMongo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filter := bson.M{}
	if filters.Status != nil {
		filter["status"] = *filters.Status
	}
	if filters.CreatedBy != nil {
		filter["createdBy"] = *filters.CreatedBy
	}

	total, err := q.questions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := q.questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := []*models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode questions: %w", err)
	}

	if err := q.attachAuthors(ctx, questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (q *QuestionMongo) UpdateReview(ctx context.Context, id string, status models.QuestionStatus, finalAnswer *string) (*models.Question, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if finalAnswer != nil {
		set["finalAnswer"] = *finalAnswer
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var question models.Question
	err := q.questions.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&question)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update question review: %w", err)
	}

	if err := q.attachAuthors(ctx, []*models.Question{&question}); err != nil {
		return nil, err
	}
	return &question, nil
}

// attachAuthors resolves createdBy references with one $in query
func (q *QuestionMongo) attachAuthors(ctx context.Context, questions []*models.Question) error {
	ids := models.AuthorIDs(questions)
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "role": 1})
	cursor, err := q.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return fmt.Errorf("failed to load question authors: %w", err)
	}

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode question authors: %w", err)
	}

	models.AttachAuthors(questions, users)
	return nil
}
