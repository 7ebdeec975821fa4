package services

import (
	"context"
	"testing"

	"profileapp/internal/config"
	"profileapp/internal/models"
	contextutils "profileapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAIService tracks whether the adaptive generator was consulted.
type recordingAIService struct {
	question *models.Question
	err      error
	calls    int
}

func (s *recordingAIService) GenerateQuestion(_ context.Context, _, _ string) (*models.Question, error) {
	s.calls++
	return s.question, s.err
}

func (s *recordingAIService) CallWithPrompt(_ context.Context, _, _ string) (string, error) {
	return "", s.err
}

type fixedFallback struct {
	question *models.Question
	calls    int
}

func (f *fixedFallback) Generate() *models.Question {
	f.calls++
	return f.question
}

func newTestQuestionService(ai AIServiceInterface, fallback MathQuestionServiceInterface) *QuestionService {
	return NewQuestionService(&config.Config{}, testLogger(), ai, fallback)
}

func TestQuestionService_AdaptiveSuccess(t *testing.T) {
	adaptive := &models.Question{Text: "What do you build?", Options: []string{"Houses", "Software", "Furniture", "other"}}
	ai := &recordingAIService{question: adaptive}
	fallback := &fixedFallback{question: &models.Question{Text: "1 + 1 = ?", Options: []string{"2", "7", "13", "other"}}}

	q := newTestQuestionService(ai, fallback).NextQuestion(context.Background(), "fp-1", "content")
	require.NotNil(t, q)
	assert.Equal(t, adaptive, q)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestQuestionService_EmptyFingerprintSkipsAdaptive(t *testing.T) {
	ai := &recordingAIService{question: &models.Question{Text: "unused"}}
	fallback := &fixedFallback{question: &models.Question{Text: "3 * 4 = ?", Options: []string{"12", "5", "30", "other"}}}

	q := newTestQuestionService(ai, fallback).NextQuestion(context.Background(), "", "content")
	require.NotNil(t, q)
	assert.Equal(t, fallback.question, q)
	assert.Equal(t, 0, ai.calls, "adaptive generator must not be consulted without a fingerprint")
	assert.Equal(t, 1, fallback.calls)
}

func TestQuestionService_AdaptiveFailureFallsBack(t *testing.T) {
	fallbackQuestion := &models.Question{Text: "9 - 2 = ?", Options: []string{"7", "22", "7", "other"}}

	errs := []error{
		contextutils.ErrAIRequestFailed,
		contextutils.ErrAIResponseInvalid,
		contextutils.ErrAIConfigInvalid,
		contextutils.ErrTimeout,
		contextutils.ErrDatabaseQuery,
	}
	for _, genErr := range errs {
		ai := &recordingAIService{err: genErr}
		fallback := &fixedFallback{question: fallbackQuestion}

		q := newTestQuestionService(ai, fallback).NextQuestion(context.Background(), "fp-1", "content")
		require.NotNil(t, q)
		assert.Equal(t, fallbackQuestion, q)
		assert.Equal(t, 1, ai.calls)
		assert.Equal(t, 1, fallback.calls)
	}
}
