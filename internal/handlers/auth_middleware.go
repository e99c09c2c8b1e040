package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
)

const (
	contextUserIDKey   = "user_id"
	contextUserRoleKey = "user_role"
)

// AuthMiddleware resolves bearer session tokens against the auth service
type AuthMiddleware struct {
	service services.AuthService
	logger  utils.Logger
}

func NewAuthMiddleware(service services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
		logger:  logger,
	}
}

// Authenticate rejects requests without a current session token and stores the caller's
// id and role in the context.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenMissing})
			return
		}

		principal, err := am.service.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				utils.LoggerFromGin(c, am.logger).Error("Failed to resolve session", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: msgInternal})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenInvalid})
			return
		}

		c.Set(contextUserIDKey, principal.UserID)
		c.Set(contextUserRoleKey, principal.Role)
		c.Next()
	}
}

// RequireRoleMiddleware allows only the listed roles. Admin gets no implicit bypass.
func (am *AuthMiddleware) RequireRoleMiddleware(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil || !slices.Contains(allowed, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: msgForbidden})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextUserIDKey)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(contextUserRoleKey)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}

func principalFromContext(c *gin.Context) (services.Principal, error) {
	id, err := GetUserIDFromContext(c)
	if err != nil {
		return services.Principal{}, err
	}
	role, err := GetUserRoleFromContext(c)
	if err != nil {
		return services.Principal{}, err
	}
	return services.Principal{UserID: id, Role: role}, nil
}
