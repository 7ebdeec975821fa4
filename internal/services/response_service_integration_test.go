//go:build integration

package services

import (
	"context"
	"testing"

	"profileapp/internal/config"
	"profileapp/internal/observability"
	contextutils "profileapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResponseServiceTest(t *testing.T) (*VisitorService, *ResponseService) {
	t.Helper()

	db := SharedTestDBSetup(t)
	t.Cleanup(func() {
		CleanupTestDatabase(db, t)
		_ = db.Close()
	})

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	cfg := &config.Config{}
	return NewVisitorService(db, cfg, logger), NewResponseService(db, cfg, logger)
}

func TestResponseServiceIntegration_RecordAndMostRecent(t *testing.T) {
	visitors, responses := setupResponseServiceTest(t)
	ctx := context.Background()

	_, err := visitors.RecordVisit(ctx, "fp-log", "agent", "10.0.0.1")
	require.NoError(t, err)

	for _, qa := range [][2]string{
		{"What do you do?", "I teach"},
		{"Favorite hobby?", "Woodworking"},
		{"Morning person?", "Yes"},
	} {
		_, err := responses.RecordResponse(ctx, "fp-log", qa[0], qa[1])
		require.NoError(t, err)
	}

	latest, err := responses.MostRecent(ctx, "fp-log")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Morning person?", latest.Question)
	assert.Equal(t, "Yes", latest.Answer)
}

func TestResponseServiceIntegration_AllForVisitorOrdered(t *testing.T) {
	visitors, responses := setupResponseServiceTest(t)
	ctx := context.Background()

	_, err := visitors.RecordVisit(ctx, "fp-hist", "agent", "10.0.0.1")
	require.NoError(t, err)

	questions := []string{"q1", "q2", "q3", "q4"}
	for _, q := range questions {
		_, err := responses.RecordResponse(ctx, "fp-hist", q, "a")
		require.NoError(t, err)
	}

	all, err := responses.AllForVisitor(ctx, "fp-hist")
	require.NoError(t, err)
	require.Len(t, all, len(questions))
	for i, r := range all {
		assert.Equal(t, questions[i], r.Question, "history is ordered oldest first")
	}
}

func TestResponseServiceIntegration_DuplicatesAppend(t *testing.T) {
	visitors, responses := setupResponseServiceTest(t)
	ctx := context.Background()

	_, err := visitors.RecordVisit(ctx, "fp-dup", "agent", "10.0.0.1")
	require.NoError(t, err)

	// The same question answered twice produces two immutable rows.
	_, err = responses.RecordResponse(ctx, "fp-dup", "Coffee or tea?", "Coffee")
	require.NoError(t, err)
	_, err = responses.RecordResponse(ctx, "fp-dup", "Coffee or tea?", "Tea")
	require.NoError(t, err)

	all, err := responses.AllForVisitor(ctx, "fp-dup")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	latest, err := responses.MostRecent(ctx, "fp-dup")
	require.NoError(t, err)
	assert.Equal(t, "Tea", latest.Answer)
}

func TestResponseServiceIntegration_UnknownVisitorRejected(t *testing.T) {
	_, responses := setupResponseServiceTest(t)

	_, err := responses.RecordResponse(context.Background(), "fp-ghost", "q", "a")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestResponseServiceIntegration_ValidationErrors(t *testing.T) {
	visitors, responses := setupResponseServiceTest(t)
	ctx := context.Background()

	_, err := visitors.RecordVisit(ctx, "fp-val", "agent", "10.0.0.1")
	require.NoError(t, err)

	for _, tc := range []struct{ fingerprint, question, answer string }{
		{"", "q", "a"},
		{"fp-val", "", "a"},
		{"fp-val", "q", ""},
	} {
		_, err := responses.RecordResponse(ctx, tc.fingerprint, tc.question, tc.answer)
		require.Error(t, err)
		assert.True(t, contextutils.IsError(err, contextutils.ErrMissingRequired))
	}
}

func TestResponseServiceIntegration_MostRecentEmptyHistory(t *testing.T) {
	visitors, responses := setupResponseServiceTest(t)
	ctx := context.Background()

	_, err := visitors.RecordVisit(ctx, "fp-empty", "agent", "10.0.0.1")
	require.NoError(t, err)

	latest, err := responses.MostRecent(ctx, "fp-empty")
	require.NoError(t, err)
	assert.Nil(t, latest)

	all, err := responses.AllForVisitor(ctx, "fp-empty")
	require.NoError(t, err)
	assert.Empty(t, all)
}
