// Package services provides business logic services for the visitor profiling application.
package services

import (
	"context"
	"database/sql"
	"errors"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"
	contextutils "profileapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// VisitorServiceInterface defines the interface for visitor ledger operations.
// This allows for easier mocking in tests.
type VisitorServiceInterface interface {
	RecordVisit(ctx context.Context, fingerprint, userAgent, ipAddress string) (int, error)
	GetVisitorByFingerprint(ctx context.Context, fingerprint string) (*models.Visitor, error)
	GetAllVisitors(ctx context.Context) ([]models.Visitor, error)
}

// VisitorService maintains one ledger row per fingerprint with a monotonically
// increasing visit counter.
type VisitorService struct {
	db     *sql.DB
	cfg    *config.Config
	logger *observability.Logger
}

// NewVisitorService creates a new VisitorService
func NewVisitorService(db *sql.DB, cfg *config.Config, logger *observability.Logger) *VisitorService {
	return &VisitorService{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// RecordVisit creates the ledger row for a fingerprint on first sight, and
// increments its visit counter on every later sight. The insert-or-increment
// runs as a single statement so concurrent visits from the same fingerprint
// serialize at the row and never lose counter updates.
func (s *VisitorService) RecordVisit(ctx context.Context, fingerprint, userAgent, ipAddress string) (result0 int, err error) {
	ctx, span := observability.TraceVisitorFunction(ctx, "record_visit",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" {
		return 0, contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint is required")
	}

	query := `
		INSERT INTO visitors (fingerprint, user_agent, ip_address, visit_count)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), 1)
		ON CONFLICT (fingerprint) DO UPDATE SET
			visit_count = visitors.visit_count + 1,
			user_agent = COALESCE(NULLIF(EXCLUDED.user_agent, ''), visitors.user_agent),
			ip_address = COALESCE(NULLIF(EXCLUDED.ip_address, ''), visitors.ip_address),
			updated_at = NOW()
		RETURNING id`

	var visitorID int
	if err := s.db.QueryRowContext(ctx, query, fingerprint, userAgent, ipAddress).Scan(&visitorID); err != nil {
		s.logger.Error(ctx, "Failed to record visit", err, map[string]interface{}{
			"fingerprint": fingerprint,
		})
		return 0, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to record visit: %w", err)
	}

	span.SetAttributes(attribute.Int("visitor.id", visitorID))
	s.logger.Debug(ctx, "Visit recorded", map[string]interface{}{
		"fingerprint": fingerprint,
		"visitor_id":  visitorID,
	})

	return visitorID, nil
}

// GetVisitorByFingerprint returns the visitor for the given fingerprint, or
// nil when no record exists.
func (s *VisitorService) GetVisitorByFingerprint(ctx context.Context, fingerprint string) (result0 *models.Visitor, err error) {
	ctx, span := observability.TraceVisitorFunction(ctx, "get_visitor_by_fingerprint",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint is required")
	}

	query := `
		SELECT id, fingerprint, user_agent, ip_address, visit_count, created_at, updated_at
		FROM visitors WHERE fingerprint = $1`

	visitor := &models.Visitor{}
	err = s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&visitor.ID, &visitor.Fingerprint, &visitor.UserAgent, &visitor.IPAddress,
		&visitor.VisitCount, &visitor.CreatedAt, &visitor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to get visitor: %w", err)
	}

	return visitor, nil
}

// GetAllVisitors returns every visitor ordered by first sight, oldest first.
// Used by the adm CLI.
func (s *VisitorService) GetAllVisitors(ctx context.Context) (result0 []models.Visitor, err error) {
	ctx, span := observability.TraceVisitorFunction(ctx, "get_all_visitors")
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, fingerprint, user_agent, ip_address, visit_count, created_at, updated_at
		FROM visitors ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list visitors: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var visitors []models.Visitor
	for rows.Next() {
		var v models.Visitor
		if err := rows.Scan(&v.ID, &v.Fingerprint, &v.UserAgent, &v.IPAddress, &v.VisitCount, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate visitors: %w", err)
	}

	span.SetAttributes(attribute.Int("visitors.count", len(visitors)))
	return visitors, nil
}
