package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
	"github.com/questionportal/faq-service/internal/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	msgInvalidPayload    = "Invalid request payload"
	msgEmailTaken        = "User Email already registered"
	msgUserNotRegistered = "User not found. Please register first."
	msgBadCredentials    = "Invalid email or password."
	msgTokenMissing      = "Authorization token missing or malformed"
	msgTokenInvalid      = "Invalid or expired token"
	msgForbidden         = "Access denied: insufficient permissions"
	msgQuestionNotFound  = "Question not found"
	msgUpstreamFailure   = "Failed to generate an answer, please try again later"
	msgInternal          = "Internal server error"
)

// BaseHandler carries the logger shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromGin(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	utils.LoggerFromGin(c, h.logger).Error(msg, args...)
}

// handleServiceError maps service errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var upstream *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validationMessage(err)})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgEmailTaken})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgBadCredentials})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenInvalid})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: msgForbidden})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgUserNotRegistered})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgQuestionNotFound})
	case errors.As(err, &upstream):
		h.LogError(c, err, "Upstream provider failed", "provider", upstream.Provider)
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: msgUpstreamFailure})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgInternal})
	}
}

// validationMessage reports the first failing field, e.g. "email must be a valid email address"
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs.First()
	}
	return err.Error()
}
