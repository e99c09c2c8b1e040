package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
	"github.com/questionportal/faq-service/internal/validator"
)

const serviceName = "faq-service"

type HandlerManager struct {
	authHandler      *AuthHandler
	questionHandler  *QuestionHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *AuthMiddleware
	health           func(ctx context.Context) error
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		questionHandler:  NewQuestionHandler(serviceManager.Question(), serviceManager.Export(), validator, logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:   NewAuthMiddleware(serviceManager.Auth(), logger),
		health:           serviceManager.HealthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", hm.authHandler.Signup)
		auth.POST("/login", hm.authHandler.Login)
		auth.GET("/tokenUserDetails", hm.authMiddleware.Authenticate(), hm.authHandler.TokenUserDetails)
	}

	questions := api.Group("/questions")
	questions.Use(hm.authMiddleware.Authenticate())
	{
		// Submit - contributors and admins
		questions.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleContributor, models.RoleAdmin), hm.questionHandler.AddQuestion)

		// Browse - every role, contributors see only their own
		questions.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleContributor, models.RoleAdmin, models.RoleViewer), hm.questionHandler.ListQuestions)

		// Admin only
		questions.GET("/dashboard", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.dashboardHandler.GetDashboard)
		questions.GET("/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.ExportQuestions)
		questions.PATCH("/approve/:questionId", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.ApproveQuestion)
	}

	router.GET("/health", hm.healthCheck)
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
