package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type DashboardMongo struct {
	questions *mongo.Collection
}

func NewDashboardMongo(questions *mongo.Collection) repositories.DashboardRepository {
	return &DashboardMongo{questions: questions}
}

func countWhenStatus(status models.QuestionStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
}

func (d *DashboardMongo) GetQuestionStatusCounts(ctx context.Context) (*models.QuestionStatusCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"total":    bson.M{"$sum": 1},
			"approved": countWhenStatus(models.QuestionApproved),
			"rejected": countWhenStatus(models.QuestionRejected),
			"pending":  countWhenStatus(models.QuestionPending),
		}}},
	}

	cursor, err := d.questions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate question status: %w", err)
	}

	var rows []models.QuestionStatusCounts
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode question status: %w", err)
	}

	// An empty collection produces no group at all
	if len(rows) == 0 {
		return &models.QuestionStatusCounts{}, nil
	}
	return &rows[0], nil
}
