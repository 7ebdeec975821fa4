package contextutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with details",
			appError: &AppError{
				Code:     ErrorCodeInvalidInput,
				Severity: SeverityWarn,
				Message:  "Invalid input",
				Details:  "Field 'fingerprint' is required",
			},
			expected: "INVALID_INPUT: Invalid input - Field 'fingerprint' is required",
		},
		{
			name: "error without details",
			appError: &AppError{
				Code:     ErrorCodeRecordNotFound,
				Severity: SeverityInfo,
				Message:  "Record not found",
			},
			expected: "RECORD_NOT_FOUND: Record not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	appErr := &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal error",
		Cause:    cause,
	}

	assert.Equal(t, cause, appErr.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	err1 := &AppError{Code: ErrorCodeInvalidInput}
	err2 := &AppError{Code: ErrorCodeInvalidInput}
	err3 := &AppError{Code: ErrorCodeRecordNotFound}

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.False(t, err1.Is(errors.New("regular error")))
}

func TestWrapError_PreservesAppErrorCode(t *testing.T) {
	wrapped := WrapError(ErrAIRequestFailed, "calling generation provider")

	var appErr *AppError
	assert.True(t, AsError(wrapped, &appErr))
	assert.Equal(t, ErrorCodeAIRequestFailed, appErr.Code)
	assert.Equal(t, "calling generation provider", appErr.Message)
	assert.True(t, errors.Is(wrapped, ErrAIRequestFailed))
}

func TestWrapError_GenericError(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := WrapError(cause, "dialing provider")

	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(wrapped))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestWrapErrorf_WithWrapVerb(t *testing.T) {
	cause := errors.New("boom")
	wrapped := WrapErrorf(ErrDatabaseQuery, "upserting visitor: %w", cause)

	assert.Equal(t, ErrorCodeDatabaseQuery, GetErrorCode(wrapped))
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestWrapError_NilError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))
	assert.NoError(t, WrapErrorf(nil, "context %d", 1))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrDatabaseConnection))
	assert.True(t, IsRetryable(ErrServiceUnavailable))
	assert.False(t, IsRetryable(ErrInvalidInput))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIsGenerationError(t *testing.T) {
	assert.True(t, IsGenerationError(ErrAIRequestFailed))
	assert.True(t, IsGenerationError(ErrAIResponseInvalid))
	assert.True(t, IsGenerationError(ErrTimeout))
	assert.False(t, IsGenerationError(ErrDatabaseQuery))
	assert.False(t, IsGenerationError(ErrMissingRequired))
}

func TestToJSON(t *testing.T) {
	appErr := NewAppError(ErrorCodeMissingRequired, SeverityWarn, "Missing required field", "fingerprint")
	payload := appErr.ToJSON()

	assert.Equal(t, "MISSING_REQUIRED_FIELD", payload["code"])
	assert.Equal(t, "Missing required field", payload["message"])
	assert.Equal(t, "fingerprint", payload["details"])
	assert.Equal(t, false, payload["retryable"])
}
