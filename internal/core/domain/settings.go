package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderHashing is the built-in offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderHashing:
		return "Feature hashing (built-in, offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known vector size. Zero means look it up.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic || e.Provider == AIProviderGemini {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Gemini).
	APIKey string

	// RatePerSecond caps generation calls. Zero disables limiting.
	RatePerSecond float64

	// Burst is the limiter bucket size.
	Burst int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Dir is the directory holding the two index artifacts.
	Dir string

	// Metric is the distance metric used for search.
	Metric DistanceMetric

	// BatchSize is the number of chunks embedded per provider call.
	BatchSize int
}

// ChunkSettings holds chunker configuration, in runes.
type ChunkSettings struct {
	Size    int
	Overlap int
}

// CorpusSettings describes the document directory to index.
type CorpusSettings struct {
	// Dir is the corpus directory.
	Dir string

	// TextColumn is the tabular column holding document text.
	TextColumn string

	// Include restricts loading to files matching these glob patterns. Empty means all.
	Include []string
}

// RetrievalSettings holds query-time defaults.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Profile selects the application instance.
	Profile Profile

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Chunk holds chunking settings.
	Chunk ChunkSettings

	// Corpus holds document source settings.
	Corpus CorpusSettings

	// Retrieval holds query defaults.
	Retrieval RetrievalSettings

	// RulesPath is the compliance rule file (policy profile).
	RulesPath string
}

// Default values shared by all profiles.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 5
	DefaultBatchSize      = 64
	DefaultTextColumn     = "transcription"
	DefaultCorpusDir      = "data"
	DefaultRulesPath      = "compliance_rules.json"
	DefaultEmbeddingModel = "all-minilm"
)

// DefaultAppSettings returns the medical profile defaults.
func DefaultAppSettings() AppSettings {
	return DefaultSettingsForProfile(ProfileMedical)
}

// DefaultSettingsForProfile returns defaults for the given profile.
// The embedding default is the 384-dimension MiniLM model served by a local Ollama.
// The LLM is left unconfigured until an API key is supplied.
func DefaultSettingsForProfile(p Profile) AppSettings {
	s := AppSettings{
		Profile: p,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		Index: IndexSettings{
			Dir:       "index",
			Metric:    MetricCosine,
			BatchSize: DefaultBatchSize,
		},
		Chunk: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Corpus: CorpusSettings{
			Dir:        DefaultCorpusDir,
			TextColumn: DefaultTextColumn,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
	}
	if p == ProfilePolicy {
		s.Index.Dir = "index_policy"
		s.Corpus.Include = []string{"*.pdf"}
		s.RulesPath = DefaultRulesPath
	}
	return s
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHashing,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  DefaultEmbeddingModel,
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "hashing-384",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"snowflake-arctic-embed": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Built-in
		"hashing-384": 384,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the chunking pipeline configuration from chunk settings.
func PipelineConfigFor(c ChunkSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.Size,
				"overlap":    c.Overlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(ChunkSettings{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap})
}
