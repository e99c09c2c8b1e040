package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type loginResponse struct {
	Message     string                 `json:"message"`
	AccessToken string                 `json:"accessToken"`
	User        *services.UserResponse `json:"user"`
}

// Signup registers a contributor or viewer
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Signup request"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Validation failed or email taken"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload})
		return
	}

	h.LogRequest(c, "Registering user", "role", req.Role)

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "User Created Successfully", Data: user})
}

// Login issues or reuses the caller's session token
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} loginResponse
// @Failure 401 {object} ErrorResponse "Invalid email or password"
// @Failure 404 {object} ErrorResponse "User not registered"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Message:     "Login successful",
		AccessToken: resp.AccessToken,
		User:        resp.User,
	})
}

// TokenUserDetails returns the user that owns the presented token
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/tokenUserDetails [get]
func (h *AuthHandler) TokenUserDetails(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenInvalid})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User retrieved successfully", Data: user})
}
