package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Gemini API errors.
var (
	// ErrUnauthorized indicates an invalid API key.
	ErrUnauthorized = errors.New("gemini: unauthorised (invalid API key)")

	// ErrForbidden indicates the key lacks access to the model.
	ErrForbidden = errors.New("gemini: forbidden")

	// ErrModelNotFound indicates the configured model does not exist.
	ErrModelNotFound = errors.New("gemini: model not found")
)

// RateLimitError reports a 429 response. It unwraps to domain.ErrRateLimited.
type RateLimitError struct {
	// RetryAfter is the server-suggested wait in seconds, or 0 if absent.
	RetryAfter int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("gemini: rate limit exceeded: %s", e.Message)
}

// RetryAfterSeconds returns the server-suggested backoff.
func (e *RateLimitError) RetryAfterSeconds() int {
	return e.RetryAfter
}

// Unwrap exposes domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// WrapError converts a Google API error to a more specific error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("gemini: %w", err)
	}

	switch gerr.Code {
	case http.StatusBadRequest:
		if gerr.Message != "" {
			return fmt.Errorf("gemini: bad request: %s", gerr.Message)
		}
		return fmt.Errorf("gemini: %w", err)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(gerr.Header.Get("Retry-After"))
		return &RateLimitError{RetryAfter: retry, Message: gerr.Message}
	default:
		return fmt.Errorf("gemini: %w", err)
	}
}
