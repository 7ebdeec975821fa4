package services

import (
	"context"
	"database/sql"
	"errors"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"
	contextutils "profileapp/internal/utils"

	"github.com/lib/pq"

	"go.opentelemetry.io/otel/attribute"
)

// ResponseServiceInterface defines the interface for the append-only response log.
type ResponseServiceInterface interface {
	RecordResponse(ctx context.Context, fingerprint, question, answer string) (int, error)
	MostRecent(ctx context.Context, fingerprint string) (*models.Response, error)
	AllForVisitor(ctx context.Context, fingerprint string) ([]models.Response, error)
}

// ResponseService stores one immutable row per answered question. Rows are
// keyed by the visitor fingerprint and ordered by id; a visitor row must
// exist before a response can reference it.
type ResponseService struct {
	db     *sql.DB
	cfg    *config.Config
	logger *observability.Logger
}

// NewResponseService creates a new ResponseService
func NewResponseService(db *sql.DB, cfg *config.Config, logger *observability.Logger) *ResponseService {
	return &ResponseService{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// RecordResponse appends a question/answer pair for the fingerprint and
// returns the new row id.
func (s *ResponseService) RecordResponse(ctx context.Context, fingerprint, question, answer string) (result0 int, err error) {
	ctx, span := observability.TraceResponseFunction(ctx, "record_response",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" || question == "" || answer == "" {
		return 0, contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint, question and answer are required")
	}

	query := `
		INSERT INTO responses (fingerprint, question, answer)
		VALUES ($1, $2, $3)
		RETURNING id`

	var responseID int
	if err := s.db.QueryRowContext(ctx, query, fingerprint, question, answer).Scan(&responseID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "no visitor recorded for fingerprint %q", fingerprint)
		}
		s.logger.Error(ctx, "Failed to record response", err, map[string]interface{}{
			"fingerprint": fingerprint,
		})
		return 0, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to record response: %w", err)
	}

	span.SetAttributes(attribute.Int("response.id", responseID))
	return responseID, nil
}

// MostRecent returns the latest response for the fingerprint, or nil when the
// visitor has not answered anything yet.
func (s *ResponseService) MostRecent(ctx context.Context, fingerprint string) (result0 *models.Response, err error) {
	ctx, span := observability.TraceResponseFunction(ctx, "most_recent",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint is required")
	}

	query := `
		SELECT id, fingerprint, question, answer, created_at
		FROM responses WHERE fingerprint = $1
		ORDER BY id DESC LIMIT 1`

	response := &models.Response{}
	err = s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&response.ID, &response.Fingerprint, &response.Question, &response.Answer, &response.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to get most recent response: %w", err)
	}

	return response, nil
}

// AllForVisitor returns every response for the fingerprint ordered oldest
// first. Used by profile summarization.
func (s *ResponseService) AllForVisitor(ctx context.Context, fingerprint string) (result0 []models.Response, err error) {
	ctx, span := observability.TraceResponseFunction(ctx, "all_for_visitor",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint is required")
	}

	query := `
		SELECT id, fingerprint, question, answer, created_at
		FROM responses WHERE fingerprint = $1
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, fingerprint)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list responses: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.Fingerprint, &r.Question, &r.Answer, &r.CreatedAt); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate responses: %w", err)
	}

	span.SetAttributes(attribute.Int("responses.count", len(responses)))
	return responses, nil
}
