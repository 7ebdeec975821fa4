package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"
	contextutils "profileapp/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// AIServiceInterface defines the interface for model-backed generation.
type AIServiceInterface interface {
	GenerateQuestion(ctx context.Context, fingerprint, pageContent string) (*models.Question, error)
	CallWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AIService generates profiling questions through an OpenAI-compatible
// chat completions endpoint, steering each prompt with the visitor's
// most recent answer.
type AIService struct {
	cfg             *config.Config
	logger          *observability.Logger
	responseService ResponseServiceInterface
	httpClient      *http.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAIService creates an AIService with an instrumented HTTP client.
func NewAIService(cfg *config.Config, logger *observability.Logger, responseService ResponseServiceInterface) *AIService {
	return NewAIServiceWithRand(cfg, logger, responseService, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewAIServiceWithRand creates an AIService with a caller-supplied random
// source so tests can force the prompt branch.
func NewAIServiceWithRand(cfg *config.Config, logger *observability.Logger, responseService ResponseServiceInterface, rng *rand.Rand) *AIService {
	return &AIService{
		cfg:             cfg,
		logger:          logger,
		responseService: responseService,
		httpClient: &http.Client{
			Timeout:   config.DefaultHTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		rng: rng,
	}
}

// questionSystemPrompt is the system preamble for question generation.
const questionSystemPrompt = "You are a helpful assistant that generates multiple-choice questions."

// OpenAIRequest represents a request to the OpenAI-compatible API
type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a chat message in the API request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse represents a response from the OpenAI-compatible API
type OpenAIResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a choice in the API response
type Choice struct {
	Message Message `json:"message"`
}

// APIError represents an error response from the API
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GenerateQuestion asks the model for one classifying multiple-choice
// question for the given visitor. With probability Generation.HistoryBias
// the prompt cites the visitor's most recent question and answer and asks
// for a different question; otherwise it steers the model away from
// engineering topics. The returned question carries three parsed options
// plus the fixed trailing "other".
func (s *AIService) GenerateQuestion(ctx context.Context, fingerprint, pageContent string) (result0 *models.Question, err error) {
	ctx, span := observability.TraceGenerationFunction(ctx, "generate_question",
		observability.AttributeFingerprint(fingerprint),
		attribute.Int("content.length", len(pageContent)),
	)
	defer observability.FinishSpan(span, &err)

	prompt, err := s.buildQuestionPrompt(ctx, fingerprint, pageContent)
	if err != nil {
		return nil, err
	}

	content, err := s.CallWithPrompt(ctx, questionSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	question, err := parseQuestionResponse(content)
	if err != nil {
		s.logger.Warn(ctx, "Model response did not match the expected format", map[string]interface{}{
			"fingerprint":     fingerprint,
			"response_length": len(content),
			"error":           err.Error(),
		})
		return nil, err
	}

	question.Options = append(question.Options, config.OtherOption)
	return question, nil
}

// buildQuestionPrompt assembles the user prompt, branching on the history
// bias when the visitor already answered at least one question.
func (s *AIService) buildQuestionPrompt(ctx context.Context, fingerprint, pageContent string) (string, error) {
	lastResponse, err := s.responseService.MostRecent(ctx, fingerprint)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Generate a multiple-choice question to help classify visitors based on their interests or industry.\n")
	fmt.Fprintf(&b, "The website content is %s\n", pageContent)
	b.WriteString("Provide the question and three options, separated by newlines.\n")
	b.WriteString("Format the response as follows:\n")
	b.WriteString("Question: [Your question here]\n")
	b.WriteString("Option 1: [Option 1]\n")
	b.WriteString("Option 2: [Option 2]\n")
	b.WriteString("Option 3: [Option 3]\n")

	s.mu.Lock()
	follow := s.rng.Float64() < s.cfg.Generation.HistoryBias
	s.mu.Unlock()

	if follow && lastResponse != nil {
		fmt.Fprintf(&b, "\nAsk a different question based on the user's previous response:\nQuestion: %s\nAnswer: %s",
			lastResponse.Question, lastResponse.Answer)
	} else {
		b.WriteString("\nTry to find the visitor's background unrelated to engineering.")
	}

	return b.String(), nil
}

// parseQuestionResponse extracts the question and exactly three options from
// the model's line-oriented reply. Labels are matched case-insensitively and
// tolerate surrounding whitespace; the value is everything after the first
// colon, trimmed.
func parseQuestionResponse(content string) (*models.Question, error) {
	var questionText string
	var options []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		label, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(label)) {
		case "question":
			questionText = value
		case "option 1", "option 2", "option 3":
			options = append(options, value)
		}
	}

	if questionText == "" || len(options) != 3 {
		return nil, contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid,
			"expected a question and 3 options, got question=%t options=%d", questionText != "", len(options))
	}

	return &models.Question{Text: questionText, Options: options}, nil
}

// CallWithPrompt sends a system and user prompt to the configured provider's
// chat completions endpoint and returns the first choice's content. The call
// is bounded by Generation.RequestTimeout; a deadline hit surfaces as
// ErrTimeout so callers can treat it like any other generation failure.
func (s *AIService) CallWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (result0 string, err error) {
	ctx, span := observability.TraceGenerationFunction(ctx, "call_chat_completions",
		attribute.String("ai.provider", s.cfg.Generation.Provider),
		attribute.String("ai.model", s.cfg.Generation.Model),
		attribute.Int("prompt.length", len(userPrompt)),
	)
	defer observability.FinishSpan(span, &err)

	if userPrompt == "" {
		return "", contextutils.WrapError(contextutils.ErrAIConfigInvalid, "prompt cannot be empty")
	}

	provider := s.cfg.Generation.Provider
	model := s.cfg.Generation.Model
	if provider == "" || model == "" {
		return "", contextutils.WrapError(contextutils.ErrAIConfigInvalid, "generation provider and model are required")
	}

	apiURL := s.cfg.ProviderURL(provider)
	if apiURL == "" {
		return "", contextutils.WrapErrorf(contextutils.ErrAIConfigInvalid, "no base URL configured for provider '%s'", provider)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Generation.RequestTimeout)
	defer cancel()

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	reqBody := OpenAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   s.cfg.MaxTokensForModel(provider, model),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to marshal request body")
	}

	s.logger.Debug(ctx, "Making generation HTTP request", map[string]interface{}{
		"url":      apiURL + "/chat/completions",
		"model":    model,
		"provider": provider,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "profileapp/1.0")
	if s.cfg.Generation.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Generation.APIKey)
	}

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", contextutils.WrapErrorf(contextutils.ErrTimeout, "generation request timed out after %v", duration)
		}
		s.logger.Error(ctx, "Generation HTTP request failed", err, map[string]interface{}{
			"duration": duration.String(),
		})
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "HTTP request failed after %v: %v", duration, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	s.logger.Info(ctx, "Generation HTTP request completed", map[string]interface{}{
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "API request failed with status %d to %s: %s", resp.StatusCode, apiURL+"/chat/completions", string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "failed to parse response as JSON: %v", err)
	}

	if openAIResp.Error != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "no choices in response")
	}

	content := openAIResp.Choices[0].Message.Content
	if content == "" {
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "model returned empty content")
	}

	return content, nil
}
