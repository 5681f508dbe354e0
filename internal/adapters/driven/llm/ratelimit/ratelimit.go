// Package ratelimit throttles LLM calls with a token bucket and honours
// provider backoff after a rate limit response.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultBackoff applies when a rate limit response carries no Retry-After.
const DefaultBackoff = 30 * time.Second

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 1).
	BurstSize int
}

// retryAfterer is implemented by provider errors that carry a server backoff hint.
type retryAfterer interface {
	RetryAfterSeconds() int
}

// Limiter is a token bucket with a backoff window set by rate limit responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewLimiter creates a limiter for the given configuration.
func NewLimiter(cfg Config) *Limiter {
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request may proceed, respecting any backoff window first.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// Backoff blocks further requests for the given duration.
// Non-positive durations use DefaultBackoff.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(d); until.After(l.retryAt) {
		l.retryAt = until
	}
}

// Allow reports whether a request may proceed immediately, consuming a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// LLMService wraps another LLM service with a shared limiter.
type LLMService struct {
	next    driven.LLMService
	limiter *Limiter
}

// Wrap returns next unchanged when cfg disables limiting.
func Wrap(next driven.LLMService, cfg Config) driven.LLMService {
	if next == nil || cfg.RequestsPerSecond <= 0 {
		return next
	}
	return &LLMService{next: next, limiter: NewLimiter(cfg)}
}

// Generate waits for a token, then delegates. A rate limit error opens a backoff window.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	out, err := s.next.Generate(ctx, prompt, opts)
	if err != nil && errors.Is(err, domain.ErrRateLimited) {
		backoff := DefaultBackoff
		var hint retryAfterer
		if errors.As(err, &hint) && hint.RetryAfterSeconds() > 0 {
			backoff = time.Duration(hint.RetryAfterSeconds()) * time.Second
		}
		s.limiter.Backoff(backoff)
		logger.Warn("LLM rate limited, pausing requests for %s", backoff)
	}
	return out, err
}

// ModelName returns the wrapped model name.
func (s *LLMService) ModelName() string {
	return s.next.ModelName()
}

// Ping delegates without consuming a token.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.next.Close()
}
