package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyProfile        = "profile"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedDims      = "embedding.dimensions"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMRate        = "llm.rate_per_second"
	keyLLMBurst       = "llm.burst"
	keyIndexDir       = "index.dir"
	keyIndexMetric    = "index.metric"
	keyIndexBatchSize = "index.batch_size"
	keyChunkSize      = "chunk.size"
	keyChunkOverlap   = "chunk.overlap"
	keyCorpusDir      = "corpus.dir"
	keyCorpusTextCol  = "corpus.text_column"
	keyCorpusInclude  = "corpus.include"
	keyRetrievalTopK  = "retrieval.top_k"
	keyRulesPath      = "rules.path"
)

// Environment variables that supply secrets and endpoints when config leaves them unset.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup used to fill unset secrets.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	s.getenv = getenv
}

// Get retrieves current application settings.
// Profile defaults apply first, then config values, then environment fallbacks.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	profile := domain.Profile(s.configStore.GetString(keyProfile))
	if !profile.IsValid() {
		profile = domain.ProfileMedical
	}
	defaults := domain.DefaultSettingsForProfile(profile)

	settings := &domain.AppSettings{
		Profile: profile,
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider:      s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:         s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:       s.configStore.GetString(keyLLMBaseURL),
			APIKey:        s.configStore.GetString(keyLLMAPIKey),
			RatePerSecond: s.getFloat(keyLLMRate, defaults.LLM.RatePerSecond),
			Burst:         s.getInt(keyLLMBurst, defaults.LLM.Burst),
		},
		Index: domain.IndexSettings{
			Dir:       s.getString(keyIndexDir, defaults.Index.Dir),
			Metric:    s.getMetric(defaults.Index.Metric),
			BatchSize: s.getInt(keyIndexBatchSize, defaults.Index.BatchSize),
		},
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunk.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunk.Overlap),
		},
		Corpus: domain.CorpusSettings{
			Dir:        s.getString(keyCorpusDir, defaults.Corpus.Dir),
			TextColumn: s.getString(keyCorpusTextCol, defaults.Corpus.TextColumn),
			Include:    defaults.Corpus.Include,
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
		},
		RulesPath: s.getString(keyRulesPath, defaults.RulesPath),
	}
	if include := s.configStore.GetStringSlice(keyCorpusInclude); len(include) > 0 {
		settings.Corpus.Include = include
	}
	// A configured overlap of zero is meaningful.
	if _, ok := s.configStore.Get(keyChunkOverlap); ok {
		settings.Chunk.Overlap = s.configStore.GetInt(keyChunkOverlap)
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv fills API keys and the Ollama host from the environment when config leaves them empty.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.apiKeyFromEnv(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.apiKeyFromEnv(settings.LLM.Provider)
	}
	if host := s.getenv(EnvOllamaHost); host != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = host
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = host
		}
	}
}

func (s *SettingsService) apiKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGemini:
		return s.getenv(EnvGoogleAPIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

// Save persists application settings.
// API keys are only written when set, so environment-supplied keys never land in the config file
// unless the user entered them explicitly.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyProfile, settings.Profile.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRate, settings.LLM.RatePerSecond},
		{keyLLMBurst, settings.LLM.Burst},
		{keyIndexDir, settings.Index.Dir},
		{keyIndexMetric, settings.Index.Metric.String()},
		{keyIndexBatchSize, settings.Index.BatchSize},
		{keyChunkSize, settings.Chunk.Size},
		{keyChunkOverlap, settings.Chunk.Overlap},
		{keyCorpusDir, settings.Corpus.Dir},
		{keyCorpusTextCol, settings.Corpus.TextColumn},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRulesPath, settings.RulesPath},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Corpus.Include != nil {
		if err := s.configStore.Set(keyCorpusInclude, settings.Corpus.Include); err != nil {
			return fmt.Errorf("save %s: %w", keyCorpusInclude, err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// SetProfile switches the application profile and resets profile-specific paths.
func (s *SettingsService) SetProfile(profile domain.Profile) error {
	if !profile.IsValid() {
		return fmt.Errorf("invalid profile: %s", profile)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	defaults := domain.DefaultSettingsForProfile(profile)
	settings.Profile = profile
	settings.Index.Dir = defaults.Index.Dir
	settings.Corpus.Include = defaults.Corpus.Include
	if settings.Corpus.Include == nil {
		settings.Corpus.Include = []string{}
	}
	settings.RulesPath = defaults.RulesPath

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetMetric configures the index distance metric.
// An index built with another metric must be rebuilt.
func (s *SettingsService) SetMetric(metric domain.DistanceMetric) error {
	if !metric.IsValid() {
		return fmt.Errorf("invalid metric: %s", metric)
	}
	return s.setValue(keyIndexMetric, metric.String())
}

// SetChunking configures chunk size and overlap, in runes.
func (s *SettingsService) SetChunking(size, overlap int) error {
	if err := validateChunking(size, overlap); err != nil {
		return err
	}
	if err := s.setValue(keyChunkSize, size); err != nil {
		return err
	}
	return s.setValue(keyChunkOverlap, overlap)
}

func (s *SettingsService) setValue(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateChunking(size, overlap int) error {
	if size < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", domain.ErrInvalidInput, size, overlap)
	}
	return nil
}

// Validate checks that current settings can build and query an index.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.Index.Metric.IsValid() {
		return fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInput, settings.Index.Metric)
	}
	if settings.Index.Dir == "" {
		return fmt.Errorf("%w: index directory is empty", domain.ErrInvalidInput)
	}
	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval.top_k must be at least 1", domain.ErrInvalidInput)
	}
	return validateChunking(settings.Chunk.Size, settings.Chunk.Overlap)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the chunking pipeline configuration for current settings.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	settings, err := s.Get()
	if err != nil {
		return domain.DefaultPipelineConfig()
	}
	return domain.PipelineConfigFor(settings.Chunk)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getMetric(defaultVal domain.DistanceMetric) domain.DistanceMetric {
	metric := domain.DistanceMetric(s.configStore.GetString(keyIndexMetric))
	if !metric.IsValid() {
		return defaultVal
	}
	return metric
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
