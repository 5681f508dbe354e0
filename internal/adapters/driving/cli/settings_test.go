package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// mockSettingsService implements driving.SettingsService in memory.
type mockSettingsService struct {
	settings     domain.AppSettings
	validateErr  error
	embeddingErr error
	setErr       error
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetProfile(p domain.Profile) error {
	if !p.IsValid() {
		return domain.ErrInvalidInput
	}
	m.settings.Profile = p
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return m.setErr
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return m.setErr
}

func (m *mockSettingsService) SetMetric(metric domain.DistanceMetric) error {
	if !metric.IsValid() {
		return domain.ErrInvalidInput
	}
	m.settings.Index.Metric = metric
	return nil
}

func (m *mockSettingsService) SetChunking(size, overlap int) error {
	if size <= 0 || overlap < 0 || overlap >= size {
		return domain.ErrInvalidInput
	}
	m.settings.Chunk = domain.ChunkSettings{Size: size, Overlap: overlap}
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.embeddingErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

func setupTestSettings(t *testing.T) *mockSettingsService {
	t.Helper()
	original := settingsService
	svc := newMockSettings()
	settingsService = svc
	resetFlags()
	t.Cleanup(func() { settingsService = original })
	return svc
}

func TestSettingsShow(t *testing.T) {
	svc := setupTestSettings(t)
	svc.settings.LLM.APIKey = "sk-1234567890abcdef"

	out, err := executeCommand(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Profile: medical")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "Provider: Google Gemini (cloud)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Chunking: 1000 chars, 200 overlap")
	assert.Contains(t, out, "Text column: transcription")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_InvalidConfig(t *testing.T) {
	svc := setupTestSettings(t)
	svc.validateErr = errors.New("embedding not configured")

	out, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding not configured")
	assert.Contains(t, out, "ragkit settings wizard")
}

func TestSettings_NotConfigured(t *testing.T) {
	setupTestSettings(t)
	settingsService = nil

	for _, args := range [][]string{
		{"settings"},
		{"settings", "profile", "policy"},
		{"settings", "metric", "l2"},
		{"settings", "chunking", "500", "50"},
		{"settings", "embedding"},
		{"settings", "llm"},
		{"settings", "wizard"},
	} {
		_, err := executeCommand(t, "", args...)
		assert.EqualError(t, err, "settings service not configured", "args %v", args)
	}
}

func TestSettingsProfile(t *testing.T) {
	svc := setupTestSettings(t)

	out, err := executeCommand(t, "", "settings", "profile", "POLICY")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile set to: policy")
	assert.Equal(t, domain.ProfilePolicy, svc.settings.Profile)

	_, err = executeCommand(t, "", "settings", "profile", "dental")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsMetric(t *testing.T) {
	svc := setupTestSettings(t)

	out, err := executeCommand(t, "", "settings", "metric", "l2")

	require.NoError(t, err)
	assert.Contains(t, out, "Metric set to: Squared Euclidean (L2)")
	assert.Contains(t, out, "ragkit build --force")
	assert.Equal(t, domain.MetricL2, svc.settings.Index.Metric)
}

func TestSettingsChunking(t *testing.T) {
	svc := setupTestSettings(t)

	out, err := executeCommand(t, "", "settings", "chunking", "500", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunking set to 500 chars with 50 overlap")
	assert.Equal(t, domain.ChunkSettings{Size: 500, Overlap: 50}, svc.settings.Chunk)

	_, err = executeCommand(t, "", "settings", "chunking", "abc", "50")
	assert.EqualError(t, err, `invalid chunk size "abc"`)

	_, err = executeCommand(t, "", "settings", "chunking", "500", "x")
	assert.EqualError(t, err, `invalid overlap "x"`)

	_, err = executeCommand(t, "", "settings", "chunking", "100", "100")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsEmbedding_Hashing(t *testing.T) {
	svc := setupTestSettings(t)

	out, err := executeCommand(t, "3\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderHashing, svc.settings.Embedding.Provider)
	assert.Equal(t, "hashing-384", svc.settings.Embedding.Model)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsEmbedding_ValidationFails(t *testing.T) {
	svc := setupTestSettings(t)
	svc.embeddingErr = errors.New("connection refused")

	out, err := executeCommand(t, "1\ncustom-model\n", "settings", "embedding")

	assert.ErrorContains(t, err, "embedding configuration validation failed")
	assert.Contains(t, out, "FAILED: connection refused")
	assert.Equal(t, "custom-model", svc.settings.Embedding.Model)
}

func TestSettingsLLM_RequiresAPIKey(t *testing.T) {
	setupTestSettings(t)

	// Gemini is the first choice and needs a key; stdin ends before one is given.
	_, err := executeCommand(t, "1\n\n", "settings", "llm")

	assert.EqualError(t, err, "API key is required for this provider")
}

func TestSettingsLLM_Ollama(t *testing.T) {
	svc := setupTestSettings(t)

	_, err := executeCommand(t, "2\nllama3.1\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, svc.settings.LLM.Provider)
	assert.Equal(t, "llama3.1", svc.settings.LLM.Model)
}

func TestSettingsWizard(t *testing.T) {
	svc := setupTestSettings(t)

	out, err := executeCommand(t, "2\n3\n\n2\n\n", "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePolicy, svc.settings.Profile)
	assert.Equal(t, domain.AIProviderHashing, svc.settings.Embedding.Provider)
	assert.Equal(t, domain.AIProviderOllama, svc.settings.LLM.Provider)
	assert.Contains(t, out, "All settings are valid and saved.")
}
