package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// mockRetrieval returns canned results and records queries.
type mockRetrieval struct {
	mu      sync.Mutex
	results []domain.QueryResult
	err     error
	queries []string
	topKs   []int
}

func (m *mockRetrieval) Query(_ context.Context, text string, topK int) ([]domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	m.topKs = append(m.topKs, topK)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetrieval) Info() domain.IndexInfo {
	return domain.IndexInfo{State: domain.IndexReady, Count: len(m.results)}
}

// mockLLM returns a fixed response or error and records prompts.
type mockLLM struct {
	response  string
	responses []string
	err       error
	prompts   []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) > 0 {
		r := m.responses[0]
		m.responses = m.responses[1:]
		return r, nil
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockAnswers answers with the question echoed, failing on listed questions.
type mockAnswers struct {
	failOn map[string]error
	asked  []string
}

func (m *mockAnswers) Ask(_ context.Context, question string, _ int) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if err, ok := m.failOn[question]; ok {
		return nil, err
	}
	return &domain.Answer{Question: question, Text: "answer to " + question}, nil
}

func (m *mockAnswers) Profile() domain.Profile { return domain.ProfileMedical }

// mockAIConfigValidator returns fixed validation errors.
type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

func results(texts ...string) []domain.QueryResult {
	out := make([]domain.QueryResult, len(texts))
	for i, t := range texts {
		out[i] = domain.QueryResult{
			Metadata: domain.RecordMetadata{Text: t, Source: "doc.txt", Position: i},
			Distance: float64(i) / 10,
		}
	}
	return out
}
