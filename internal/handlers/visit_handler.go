// Package handlers provides the HTTP API for visitor profiling.
package handlers

import (
	"net/http"

	"profileapp/internal/config"
	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// VisitHandler records visits against the visitor ledger.
type VisitHandler struct {
	visitorService services.VisitorServiceInterface
	cfg            *config.Config
	logger         *observability.Logger
}

// NewVisitHandler creates a VisitHandler.
func NewVisitHandler(visitorService services.VisitorServiceInterface, cfg *config.Config, logger *observability.Logger) *VisitHandler {
	return &VisitHandler{
		visitorService: visitorService,
		cfg:            cfg,
		logger:         logger,
	}
}

// VisitRequest is the body for recording a visit. The IP address is
// optional; when omitted the client address from the connection is used.
type VisitRequest struct {
	Fingerprint string `json:"fingerprint" binding:"required"`
	UserAgent   string `json:"user_agent"`
	IPAddress   string `json:"ip_address"`
}

// RecordVisit handles POST /v1/visits.
func (h *VisitHandler) RecordVisit(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "record_visit")
	defer observability.FinishSpan(span, nil)

	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid visit request format", map[string]interface{}{
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

	if !contextutils.IsValidFingerprint(req.Fingerprint) {
		HandleValidationError(c, "fingerprint", req.Fingerprint, "must be a printable identifier without whitespace, at most 256 characters")
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}
	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress = c.ClientIP()
	}

	span.SetAttributes(observability.AttributeFingerprint(req.Fingerprint))

	visitorID, err := h.visitorService.RecordVisit(ctx, req.Fingerprint, userAgent, ipAddress)
	if err != nil {
		h.logger.Error(ctx, "Failed to record visit", err, map[string]interface{}{
			"fingerprint": req.Fingerprint,
		})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"visitor_id": visitorID})
}
