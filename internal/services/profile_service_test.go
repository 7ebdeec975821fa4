package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"profileapp/internal/config"
	"profileapp/internal/models"
	contextutils "profileapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVisitorService struct {
	visitor *models.Visitor
	err     error
}

func (s *stubVisitorService) RecordVisit(_ context.Context, _, _, _ string) (int, error) {
	return 0, s.err
}

func (s *stubVisitorService) GetVisitorByFingerprint(_ context.Context, _ string) (*models.Visitor, error) {
	return s.visitor, s.err
}

func (s *stubVisitorService) GetAllVisitors(_ context.Context) ([]models.Visitor, error) {
	if s.visitor == nil {
		return nil, s.err
	}
	return []models.Visitor{*s.visitor}, s.err
}

// promptCapturingAI records the prompt it was asked to summarize.
type promptCapturingAI struct {
	summary      string
	err          error
	systemPrompt string
	userPrompt   string
}

func (s *promptCapturingAI) GenerateQuestion(_ context.Context, _, _ string) (*models.Question, error) {
	return nil, s.err
}

func (s *promptCapturingAI) CallWithPrompt(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.systemPrompt = systemPrompt
	s.userPrompt = userPrompt
	return s.summary, s.err
}

func testVisitor() *models.Visitor {
	return &models.Visitor{
		ID:          7,
		Fingerprint: "fp-7",
		UserAgent:   sql.NullString{String: "Mozilla/5.0", Valid: true},
		IPAddress:   sql.NullString{String: "203.0.113.9", Valid: true},
		VisitCount:  3,
		CreatedAt:   time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestProfileService_Summarize(t *testing.T) {
	visitor := testVisitorServiceFixture()
	ai := &promptCapturingAI{summary: "Likely a teacher interested in carpentry."}
	svc := NewProfileService(&config.Config{}, testLogger(), visitor, &stubResponseService{
		all: []models.Response{
			{Question: "What do you do?", Answer: "I teach"},
			{Question: "Favorite hobby?", Answer: "Woodworking"},
		},
	}, ai)

	summary, err := svc.Summarize(context.Background(), "fp-7")
	require.NoError(t, err)
	assert.Equal(t, "Likely a teacher interested in carpentry.", summary)

	assert.Equal(t, profileSystemPrompt, ai.systemPrompt)
	assert.Contains(t, ai.userPrompt, "- Fingerprint: fp-7")
	assert.Contains(t, ai.userPrompt, "- User Agent: Mozilla/5.0")
	assert.Contains(t, ai.userPrompt, "- IP Address: 203.0.113.9")
	assert.Contains(t, ai.userPrompt, "- Visit Count: 3")
	assert.Contains(t, ai.userPrompt, "- First Visit: 2026-01-15 09:30:00")
	assert.Contains(t, ai.userPrompt, "- Q: What do you do? A: I teach")
	assert.Contains(t, ai.userPrompt, "- Q: Favorite hobby? A: Woodworking")
}

func testVisitorServiceFixture() *stubVisitorService {
	return &stubVisitorService{visitor: testVisitor()}
}

func TestProfileService_SummarizeNoResponses(t *testing.T) {
	ai := &promptCapturingAI{summary: "Not enough data."}
	svc := NewProfileService(&config.Config{}, testLogger(), testVisitorServiceFixture(), &stubResponseService{}, ai)

	summary, err := svc.Summarize(context.Background(), "fp-7")
	require.NoError(t, err)
	assert.Equal(t, "Not enough data.", summary)
	assert.Contains(t, ai.userPrompt, "(none recorded)")
}

func TestProfileService_SummarizeUnknownVisitor(t *testing.T) {
	svc := NewProfileService(&config.Config{}, testLogger(), &stubVisitorService{}, &stubResponseService{}, &promptCapturingAI{})

	_, err := svc.Summarize(context.Background(), "fp-missing")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestProfileService_SummarizeEmptyFingerprint(t *testing.T) {
	svc := NewProfileService(&config.Config{}, testLogger(), &stubVisitorService{}, &stubResponseService{}, &promptCapturingAI{})

	_, err := svc.Summarize(context.Background(), "")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrMissingRequired))
}
