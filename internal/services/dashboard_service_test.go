package services

import (
	"context"
	"testing"

	"github.com/questionportal/faq-service/internal/models"
)

func TestBuildDashboard(t *testing.T) {
	tests := []struct {
		name   string
		counts models.QuestionStatusCounts
		want   DashboardResponse
	}{
		{
			name: "empty store",
			want: DashboardResponse{},
		},
		{
			name:   "mixed",
			counts: models.QuestionStatusCounts{Total: 4, Approved: 2, Rejected: 1, Pending: 1},
			want:   DashboardResponse{TotalQuestions: 4, ApprovedCount: 2, RejectedCount: 1, RejectionRate: 0.25},
		},
		{
			name:   "all rejected",
			counts: models.QuestionStatusCounts{Total: 3, Rejected: 3},
			want:   DashboardResponse{TotalQuestions: 3, RejectedCount: 3, RejectionRate: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := tt.counts
			if got := buildDashboard(&counts); *got != tt.want {
				t.Errorf("buildDashboard() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestDashboardService_GetDashboard(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		env := newTestEnv(t, withRedis)
		ctx := context.Background()

		got, err := env.dashboard.GetDashboard(ctx)
		if err != nil {
			t.Fatalf("redis=%v: GetDashboard() error = %v", withRedis, err)
		}
		if *got != (DashboardResponse{}) {
			t.Errorf("redis=%v: empty dashboard = %+v", withRedis, *got)
		}

		author := env.register(t, "Cara", "c@example.com", models.RoleContributor)
		q1 := env.submit(t, author.ID, "one")
		q2 := env.submit(t, author.ID, "two")
		env.submit(t, author.ID, "three")
		env.submit(t, author.ID, "four")

		if _, err := env.questions.Review(ctx, q1.ID, &models.ReviewQuestionRequest{Status: models.QuestionApproved}, "admin"); err != nil {
			t.Fatal(err)
		}
		if _, err := env.questions.Review(ctx, q2.ID, &models.ReviewQuestionRequest{Status: models.QuestionRejected}, "admin"); err != nil {
			t.Fatal(err)
		}

		// Writes invalidate the cached aggregate, so the counts are current
		got, err = env.dashboard.GetDashboard(ctx)
		if err != nil {
			t.Fatalf("redis=%v: GetDashboard() error = %v", withRedis, err)
		}
		want := DashboardResponse{TotalQuestions: 4, ApprovedCount: 1, RejectedCount: 1, RejectionRate: 0.25}
		if *got != want {
			t.Errorf("redis=%v: GetDashboard() = %+v, want %+v", withRedis, *got, want)
		}
	}
}
