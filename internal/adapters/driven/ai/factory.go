// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hashingembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'ragkit settings' to fix"

// InitResult contains the AI services an application instance runs with.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues, e.g. an unreachable LLM.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init creates and validates the configured services.
// The embedder is mandatory. When requireLLM is false an unusable LLM is
// recorded as a warning so retrieval-only commands still work.
func Init(ctx context.Context, settings *domain.AppSettings, requireLLM bool) (*InitResult, error) {
	embed, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embed == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s", domain.ErrEmbeddingUnavailable, fixHint)
	}

	result := &InitResult{EmbeddingService: embed}

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM)
	switch {
	case err != nil && requireLLM:
		result.Close()
		return nil, err
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil && requireLLM:
		result.Close()
		return nil, fmt.Errorf("%w: no LLM provider configured. %s", domain.ErrLLMUnavailable, fixHint)
	default:
		result.LLMService = llm
	}
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic, domain.AIProviderGemini:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama, openai or hashing", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: embeddingDimensions(settings),
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: embeddingDimensions(settings),
		})

	case domain.AIProviderHashing:
		return hashingembed.NewEmbeddingService(hashingembed.Config{
			Dimensions: settings.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// embeddingDimensions prefers an explicit override, then the known model size.
// Zero lets the adapter learn the size from its first response.
func embeddingDimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}

// CreateLLMService creates the LLM service selected by settings, wrapped in a
// rate limiter when one is configured. Returns nil if the provider is not configured.
func CreateLLMService(_ context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderHashing {
		return nil, fmt.Errorf("%s is an embedding-only provider", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.LLMService
	var err error
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderGemini:
		svc, err = geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, ratelimit.Config{
		RequestsPerSecond: settings.RatePerSecond,
		BurstSize:         settings.Burst,
	}), nil
}
