package handlers

import (
	"net/http"

	"profileapp/internal/config"
	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// QuestionHandler serves the next profiling question for a visitor.
type QuestionHandler struct {
	questionService services.QuestionServiceInterface
	cfg             *config.Config
	logger          *observability.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questionService services.QuestionServiceInterface, cfg *config.Config, logger *observability.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		cfg:             cfg,
		logger:          logger,
	}
}

// QuestionRequest is the body for requesting the next question. Both fields
// are optional: without a fingerprint the visitor gets a fallback question.
type QuestionRequest struct {
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content"`
}

// NextQuestion handles POST /v1/questions.
func (h *QuestionHandler) NextQuestion(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "next_question")
	defer observability.FinishSpan(span, nil)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid question request format", map[string]interface{}{
			"error": err.Error(),
		})
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request format",
			"",
			err,
		))
		return
	}

	span.SetAttributes(observability.AttributeFingerprint(req.Fingerprint))

	question := h.questionService.NextQuestion(ctx, req.Fingerprint, req.Content)
	c.JSON(http.StatusOK, question)
}
