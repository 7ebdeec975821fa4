package config

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the timeout for general outbound HTTP requests
	DefaultHTTPTimeout = 60 * time.Second

	// GenerationRequestTimeout bounds a single adaptive-generation round trip.
	// Timeouts are treated as generation failures and trigger the fallback.
	GenerationRequestTimeout = 8 * time.Second

	// DatabaseConnMaxLifetime is the maximum amount of time a connection may be reused
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// Database pool defaults
const (
	DefaultMaxOpenConns = 25
	DefaultMaxIdleConns = 5
)

// Generation defaults
const (
	// DefaultHistoryBias is the probability of building the next question on
	// the visitor's most recent answer when one exists.
	DefaultHistoryBias = 0.7

	// DefaultMaxTokens is used when the provider config does not set a model limit
	DefaultMaxTokens = 1024
)

// OtherOption is the fixed catch-all answer appended as the trailing option
// of every question, adaptive or fallback.
const OtherOption = "other"

// DefaultCSP is the Content-Security-Policy applied to API responses
const DefaultCSP = "default-src 'self'; frame-ancestors 'none'"
