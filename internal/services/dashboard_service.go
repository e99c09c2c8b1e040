package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	var stats DashboardResponse
	err := s.cache.Stats.CacheOrExecute(ctx, cache.DashboardStatsKey(), &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		counts, err := s.repo.Dashboard().GetQuestionStatusCounts(ctx)
		if err != nil {
			return nil, err
		}
		return buildDashboard(counts), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return &stats, nil
}

// buildDashboard derives the rejection rate; an empty store has a rate of zero.
func buildDashboard(counts *models.QuestionStatusCounts) *DashboardResponse {
	resp := &DashboardResponse{
		TotalQuestions: counts.Total,
		ApprovedCount:  counts.Approved,
		RejectedCount:  counts.Rejected,
	}
	if counts.Total > 0 {
		resp.RejectionRate = float64(counts.Rejected) / float64(counts.Total)
	}
	return resp
}
