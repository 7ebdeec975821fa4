package services

import (
	"context"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// QuestionServiceInterface defines the interface for question selection.
type QuestionServiceInterface interface {
	NextQuestion(ctx context.Context, fingerprint, pageContent string) *models.Question
}

// QuestionService picks the next question for a visitor. It prefers the
// adaptive generator and falls back to arithmetic questions whenever
// adaptive generation is unavailable or fails, so callers always receive
// a well-formed question.
type QuestionService struct {
	cfg      *config.Config
	logger   *observability.Logger
	ai       AIServiceInterface
	fallback MathQuestionServiceInterface
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(cfg *config.Config, logger *observability.Logger, ai AIServiceInterface, fallback MathQuestionServiceInterface) *QuestionService {
	return &QuestionService{
		cfg:      cfg,
		logger:   logger,
		ai:       ai,
		fallback: fallback,
	}
}

// NextQuestion returns a question for the visitor. An empty fingerprint
// means the visitor cannot be profiled, so the adaptive generator is not
// consulted at all. Adaptive failures of any kind are logged and absorbed;
// this method never returns an error.
func (s *QuestionService) NextQuestion(ctx context.Context, fingerprint, pageContent string) *models.Question {
	ctx, span := observability.TraceQuestionFunction(ctx, "next_question",
		observability.AttributeFingerprint(fingerprint),
	)
	defer span.End()

	if fingerprint == "" {
		span.SetAttributes(attribute.String("question.source", "fallback"))
		s.logger.Debug(ctx, "No fingerprint provided, serving fallback question", nil)
		return s.fallback.Generate()
	}

	question, err := s.ai.GenerateQuestion(ctx, fingerprint, pageContent)
	if err != nil {
		span.SetAttributes(attribute.String("question.source", "fallback"))
		s.logger.Warn(ctx, "Adaptive generation failed, serving fallback question", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
		return s.fallback.Generate()
	}

	span.SetAttributes(attribute.String("question.source", "adaptive"))
	return question
}
