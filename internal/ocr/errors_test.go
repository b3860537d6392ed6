package ocr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, Retryable(&QuotaError{Err: base}))
	assert.True(t, Retryable(&TimeoutError{Err: base}))
	assert.True(t, Retryable(&TransientError{Err: base}))

	assert.False(t, Retryable(&AuthError{Err: base}))
	assert.False(t, Retryable(&MalformedResponseError{Err: base}))
	assert.False(t, Retryable(base))
}

func TestRetryable_Wrapped(t *testing.T) {
	err := fmt.Errorf("extracting: %w", &TransientError{Err: errors.New("503")})
	assert.True(t, Retryable(err))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&AuthError{Err: errors.New("401")}))
	assert.True(t, IsFatal(fmt.Errorf("batch: %w", &AuthError{Err: errors.New("401")})))
	assert.False(t, IsFatal(&QuotaError{Err: errors.New("429")}))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestNewQuotaError_DefaultRetryAfter(t *testing.T) {
	assert.Equal(t, 60*time.Second, NewQuotaError(errors.New("429"), 0).RetryAfter)
	assert.Equal(t, 17*time.Second, NewQuotaError(errors.New("429"), 17).RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
	assert.Equal(t, 30, ParseRetryAfterHeader("30"))
}
