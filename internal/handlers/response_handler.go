package handlers

import (
	"net/http"

	"profileapp/internal/config"
	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// ResponseHandler appends answered questions to the response log.
type ResponseHandler struct {
	responseService services.ResponseServiceInterface
	cfg             *config.Config
	logger          *observability.Logger
}

// NewResponseHandler creates a ResponseHandler.
func NewResponseHandler(responseService services.ResponseServiceInterface, cfg *config.Config, logger *observability.Logger) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		cfg:             cfg,
		logger:          logger,
	}
}

// ResponseRequest is the body for recording an answered question.
type ResponseRequest struct {
	Fingerprint string `json:"fingerprint" binding:"required"`
	Question    string `json:"question" binding:"required"`
	Answer      string `json:"answer" binding:"required"`
}

// RecordResponse handles POST /v1/responses.
func (h *ResponseHandler) RecordResponse(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "record_response")
	defer observability.FinishSpan(span, nil)

	var req ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid response request format", map[string]interface{}{
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

	responseID, err := h.responseService.RecordResponse(ctx, req.Fingerprint, req.Question, req.Answer)
	if err != nil {
		h.logger.Error(ctx, "Failed to record response", err, map[string]interface{}{
			"fingerprint": req.Fingerprint,
		})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"response_id": responseID})
}
