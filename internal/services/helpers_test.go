package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/events"
	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories/repotest"
	"github.com/questionportal/faq-service/internal/validator"
	"github.com/questionportal/faq-service/pkg/auth"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubGenerator returns a fixed answer or error and records its inputs
type stubGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  []string
}

func (g *stubGenerator) Generate(ctx context.Context, questionText string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, questionText)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type testEnv struct {
	repo      *repotest.MemoryRepository
	tokens    *auth.TokenManager
	cache     *cache.CacheManager
	generator *stubGenerator
	publisher *events.MockEventPublisher

	auth      AuthService
	questions QuestionService
	dashboard DashboardService
	export    ExportService
}

// newTestEnv wires the services over an in-memory store. With withRedis the cache is
// backed by miniredis, otherwise it is disabled.
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()

	repo := repotest.NewMemoryRepository()
	// Strictly increasing clock so ordering does not depend on timer resolution
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	var clockMu sync.Mutex
	repo.Now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var client *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
	}

	logger := discardLogger()
	v := validator.New()
	env := &testEnv{
		repo:      repo,
		tokens:    auth.NewTokenManager(testSecret, time.Hour),
		cache:     cache.NewCacheManager(client),
		generator: &stubGenerator{answer: "Drafted answer"},
		publisher: events.NewMockEventPublisher(logger),
	}
	env.auth = NewAuthService(repo, env.tokens, env.cache, logger, v)
	env.questions = NewQuestionService(repo, env.generator, env.publisher, env.cache, logger, v)
	env.dashboard = NewDashboardService(repo, env.cache, logger)
	env.export = NewExportService(repo, logger)
	return env
}

func (e *testEnv) register(t *testing.T, name, email string, role models.UserRole) *UserResponse {
	t.Helper()
	user, err := e.auth.Register(context.Background(), &models.RegisterRequest{
		Email:    email,
		Password: "secret123",
		Name:     name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, email string) *LoginResponse {
	t.Helper()
	resp, err := e.auth.Login(context.Background(), &models.LoginRequest{Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Login(%s) error = %v", email, err)
	}
	return resp
}

func (e *testEnv) submit(t *testing.T, authorID, text string) *models.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), &models.CreateQuestionRequest{QuestionText: text}, authorID)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", text, err)
	}
	return q
}

func strPtr(s string) *string { return &s }
