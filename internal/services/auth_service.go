package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"

	"github.com/questionportal/faq-service/internal/cache"
	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
	"github.com/questionportal/faq-service/internal/validator"
	"github.com/questionportal/faq-service/pkg/auth"
)

const passwordHashCost = 10

// sessionRecord is the cached view of a user's current session
type sessionRecord struct {
	Token string          `json:"token"`
	Role  models.UserRole `json:"role"`
}

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenManager
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenManager, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return toUserResponse(user)
}

func (s *authService) createUser(ctx context.Context, email, password, name string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		// Two signups can race past the existence check; the unique index decides.
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := toUserResponse(user)
	if err != nil {
		return nil, err
	}

	// A stored token that still verifies is handed back unchanged
	if user.AccessToken != nil {
		if _, err := s.tokens.ParseValidate(*user.AccessToken); err == nil {
			return &LoginResponse{AccessToken: *user.AccessToken, User: resp}, nil
		}
	}

	token, err := s.tokens.CreateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateAccessToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	s.cacheSession(ctx, user.ID, sessionRecord{Token: token, Role: user.Role})

	s.logger.Info("Session token issued", "user_id", user.ID)
	return &LoginResponse{AccessToken: token, User: resp}, nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.ParseValidate(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	// A cached record that disagrees with the presented token may be stale, so the
	// store has the final word before rejecting.
	var session sessionRecord
	if err := s.cache.Session.Get(ctx, claims.UserID, &session); err != nil || session.Token != token {
		session, err = s.fetchSession(ctx, claims.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
			}
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		s.cacheSession(ctx, claims.UserID, session)
	}

	// Only the most recently issued token is accepted
	if session.Token == "" || session.Token != token {
		return nil, ErrUnauthorized
	}
	if !session.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthorized, session.Role)
	}

	return &Principal{UserID: claims.UserID, Role: session.Role}, nil
}

func (s *authService) fetchSession(ctx context.Context, userID string) (sessionRecord, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return sessionRecord{}, err
	}
	record := sessionRecord{Role: user.Role}
	if user.AccessToken != nil {
		record.Token = *user.AccessToken
	}
	return record, nil
}

func (s *authService) cacheSession(ctx context.Context, userID string, record sessionRecord) {
	if err := s.cache.Session.Set(ctx, userID, record, cache.SessionCacheConfig.TTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache session, dropping entry", "user_id", userID, "error", err)
		cache.InvalidateSession(ctx, s.cache, userID)
	}
}

func (s *authService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserResponse(user)
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	user, err := s.createUser(ctx, email, password, name, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("Admin user created", "user_id", user.ID, "email", user.Email)
	return true, nil
}

func toUserResponse(user *models.User) (*UserResponse, error) {
	var resp UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		return nil, fmt.Errorf("failed to map user: %w", err)
	}
	return &resp, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
