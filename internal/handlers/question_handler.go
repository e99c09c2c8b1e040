package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
	"github.com/questionportal/faq-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuestionHandler struct {
	BaseHandler
	service   services.QuestionService
	export    services.ExportService
	validator *validator.Validator
}

func NewQuestionHandler(service services.QuestionService, export services.ExportService, validator *validator.Validator, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
		validator:   validator,
	}
}

// AddQuestion submits a question and drafts its AI answer
// @Summary Submit a question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body models.CreateQuestionRequest true "Question"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 502 {object} ErrorResponse "Answer generation failed"
// @Router /questions [post]
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenInvalid})
		return
	}

	h.LogRequest(c, "Creating question", "user_id", userID)

	question, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Question added successfully", Data: question})
}

// ListQuestions returns the questions visible to the caller, newest first
// @Summary List questions
// @Tags questions
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgTokenInvalid})
		return
	}

	status, ok := h.statusFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), principal, status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions fetched successfully", Data: result})
}

// ApproveQuestion records an admin review
// @Summary Review a question
// @Tags questions
// @Accept json
// @Produce json
// @Param questionId path string true "Question ID"
// @Param request body models.ReviewQuestionRequest true "Review"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /questions/approve/{questionId} [patch]
func (h *QuestionHandler) ApproveQuestion(c *gin.Context) {
	questionID := c.Param("questionId")

	var req models.ReviewQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload})
		return
	}

	reviewerID, _ := GetUserIDFromContext(c)
	h.LogRequest(c, "Reviewing question", "question_id", questionID, "status", req.Status)

	question, err := h.service.Review(c.Request.Context(), questionID, &req, reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("Question %s successfully", question.Status),
		Data:    question,
	})
}

// ExportQuestions downloads questions as an XLSX workbook
// @Summary Export questions
// @Tags questions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "pending, approved or rejected"
// @Success 200 {file} file
// @Router /questions/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	status, ok := h.statusFilter(c)
	if !ok {
		return
	}

	data, err := h.export.ExportQuestions(c.Request.Context(), status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("questions-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// statusFilter parses the optional status query. It writes the 400 itself.
func (h *QuestionHandler) statusFilter(c *gin.Context) (*models.QuestionStatus, bool) {
	var query models.QuestionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload})
		return nil, false
	}

	status, err := h.validator.ValidateStatusFilter(query.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validationMessage(err)})
		return nil, false
	}
	return status, true
}
