// Package repotest provides an in-memory repositories.Repository for tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

type MemoryRepository struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	questions map[string]*storedQuestion
	seq       int64

	// Now stamps new records; tests may replace it.
	Now func() time.Time
}

type storedQuestion struct {
	question models.Question
	seq      int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[string]*models.User),
		questions: make(map[string]*storedQuestion),
		Now:       time.Now,
	}
}

func (r *MemoryRepository) User() repositories.UserRepository           { return (*memoryUsers)(r) }
func (r *MemoryRepository) Question() repositories.QuestionRepository   { return (*memoryQuestions)(r) }
func (r *MemoryRepository) Dashboard() repositories.DashboardRepository { return (*memoryDashboard)(r) }
func (r *MemoryRepository) Ping(ctx context.Context) error              { return nil }
func (r *MemoryRepository) Close() error                                { return nil }

// StoredToken returns the persisted session token for a user, or "".
func (r *MemoryRepository) StoredToken(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[userID]; ok && u.AccessToken != nil {
		return *u.AccessToken
	}
	return ""
}

type memoryUsers MemoryRepository

func (m *memoryUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user email %w", repositories.ErrDuplicateKey)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := m.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user with email: %w", repositories.ErrNotFound)
}

func (m *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *memoryUsers) UpdateAccessToken(ctx context.Context, id string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	u.AccessToken = &token
	u.UpdatedAt = m.Now()
	return nil
}

type memoryQuestions MemoryRepository

func (m *memoryQuestions) Create(ctx context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	now := m.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	m.seq++
	m.questions[question.ID] = &storedQuestion{question: *question, seq: m.seq}
	m.attachAuthorsLocked([]*models.Question{question})
	return nil
}

func (m *memoryQuestions) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*storedQuestion, 0, len(m.questions))
	for _, sq := range m.questions {
		if filters.Status != nil && sq.question.Status != *filters.Status {
			continue
		}
		if filters.CreatedBy != nil && (sq.question.CreatedBy == nil || *sq.question.CreatedBy != *filters.CreatedBy) {
			continue
		}
		matched = append(matched, sq)
	}

	// Newest first; insertion order breaks timestamp ties
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.question.CreatedAt.Equal(b.question.CreatedAt) {
			return a.question.CreatedAt.After(b.question.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*models.Question, 0, len(matched))
	for _, sq := range matched {
		q := sq.question
		out = append(out, &q)
	}
	m.attachAuthorsLocked(out)
	return out, int64(len(out)), nil
}

func (m *memoryQuestions) UpdateReview(ctx context.Context, id string, status models.QuestionStatus, finalAnswer *string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sq, ok := m.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	sq.question.Status = status
	if finalAnswer != nil {
		answer := *finalAnswer
		sq.question.FinalAnswer = &answer
	}
	sq.question.UpdatedAt = m.Now()

	q := sq.question
	m.attachAuthorsLocked([]*models.Question{&q})
	return &q, nil
}

func (m *memoryQuestions) attachAuthorsLocked(questions []*models.Question) {
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	models.AttachAuthors(questions, users)
}

type memoryDashboard MemoryRepository

func (m *memoryDashboard) GetQuestionStatusCounts(ctx context.Context) (*models.QuestionStatusCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var counts models.QuestionStatusCounts
	for _, sq := range m.questions {
		counts.Total++
		switch sq.question.Status {
		case models.QuestionApproved:
			counts.Approved++
		case models.QuestionRejected:
			counts.Rejected++
		case models.QuestionPending:
			counts.Pending++
		}
	}
	return &counts, nil
}
