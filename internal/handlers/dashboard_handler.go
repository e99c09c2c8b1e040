package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboard returns question totals and the rejection rate
// @Summary Get dashboard statistics
// @Tags questions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /questions/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	stats, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Dashboard Data Fetch Successfully", Data: stats})
}
