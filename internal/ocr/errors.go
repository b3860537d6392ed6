// Package ocr defines the typed failure surface shared by OCR clients.
// The pipeline never inspects the transport underneath; retry decisions are
// made purely on these types.
package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// AuthError indicates the OCR service rejected our credentials. A bad
// credential will not become valid by retrying, so this aborts the whole
// batch.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ocr authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// QuotaError indicates the service returned HTTP 429 or reported quota
// exhaustion. Retryable after RetryAfter.
type QuotaError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("ocr quota exceeded (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// NewQuotaError creates a QuotaError. If retryAfterSecs is 0, defaults to 60s.
func NewQuotaError(err error, retryAfterSecs int) *QuotaError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &QuotaError{Err: err, RetryAfter: time.Duration(retryAfterSecs) * time.Second}
}

// TimeoutError indicates the request exceeded its deadline. Retryable.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ocr request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// TransientError indicates a connection failure or a 5xx from the service.
// Retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient ocr failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the service answered with a payload the
// client cannot decode into elements. Not retryable: the same input will
// produce the same response.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed ocr response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Retryable reports whether err may succeed on resubmission under the
// bounded backoff policy.
func Retryable(err error) bool {
	var (
		qe *QuotaError
		te *TimeoutError
		tr *TransientError
	)
	return errors.As(err, &qe) || errors.As(err, &te) || errors.As(err, &tr)
}

// IsFatal reports whether err must abort the entire batch.
func IsFatal(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
