package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

type fakeLLM struct {
	calls  int
	err    error
	closed bool
}

func (f *fakeLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}
func (f *fakeLLM) ModelName() string         { return "fake" }
func (f *fakeLLM) Ping(context.Context) error { return nil }

func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

type hinted struct{ secs int }

func (h *hinted) Error() string          { return fmt.Sprintf("slow down %d", h.secs) }
func (h *hinted) Unwrap() error          { return domain.ErrRateLimited }
func (h *hinted) RetryAfterSeconds() int { return h.secs }

func TestWrap_DisabledReturnsNext(t *testing.T) {
	next := &fakeLLM{}
	assert.Same(t, next, Wrap(next, Config{}))
	assert.Nil(t, Wrap(nil, Config{RequestsPerSecond: 1}))
}

func TestWrap_Delegates(t *testing.T) {
	next := &fakeLLM{}
	svc := Wrap(next, Config{RequestsPerSecond: 100, BurstSize: 10})

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "fake", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close())
	assert.True(t, next.closed)
}

func TestLimiter_BackoffBlocksAllow(t *testing.T) {
	l := NewLimiter(Config{RequestsPerSecond: 100, BurstSize: 5})
	assert.True(t, l.Allow())

	l.Backoff(time.Minute)
	assert.False(t, l.Allow())
}

func TestLimiter_BackoffNeverShortens(t *testing.T) {
	l := NewLimiter(Config{RequestsPerSecond: 100})
	l.Backoff(time.Hour)
	first := l.retryAt
	l.Backoff(time.Second)
	assert.Equal(t, first, l.retryAt)
}

func TestLimiter_WaitHonoursContextDuringBackoff(t *testing.T) {
	l := NewLimiter(Config{RequestsPerSecond: 100})
	l.Backoff(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestGenerate_RateLimitErrorOpensBackoff(t *testing.T) {
	next := &fakeLLM{err: &hinted{secs: 120}}
	svc := Wrap(next, Config{RequestsPerSecond: 100, BurstSize: 10}).(*LLMService)

	before := time.Now()
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.False(t, svc.limiter.Allow())
	assert.WithinDuration(t, before.Add(120*time.Second), svc.limiter.retryAt, 5*time.Second)
}

func TestGenerate_DefaultBackoffWithoutHint(t *testing.T) {
	next := &fakeLLM{err: fmt.Errorf("provider: %w", domain.ErrRateLimited)}
	svc := Wrap(next, Config{RequestsPerSecond: 100, BurstSize: 10}).(*LLMService)

	before := time.Now()
	_, _ = svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.WithinDuration(t, before.Add(DefaultBackoff), svc.limiter.retryAt, 5*time.Second)
}

func TestGenerate_OtherErrorsDoNotBackoff(t *testing.T) {
	next := &fakeLLM{err: errors.New("boom")}
	svc := Wrap(next, Config{RequestsPerSecond: 100, BurstSize: 10}).(*LLMService)

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.True(t, svc.limiter.retryAt.IsZero())
}
