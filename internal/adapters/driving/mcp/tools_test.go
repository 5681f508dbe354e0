package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked chunks with similarity", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.QueryResult{
				hit("chest pain on exertion", "mtsamples.csv#12", 0.2),
				hit("normal sinus rhythm", "mtsamples.csv#40", 0.5),
			},
			info: domain.IndexInfo{Metric: domain.MetricCosine},
		}

		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Query: "angina", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 2, retrieval.topK)
		assert.Equal(t, "chest pain on exertion", output.Results[0].Text)
		assert.Equal(t, "mtsamples.csv#12", output.Results[0].Source)
		assert.InDelta(t, 0.2, output.Results[0].Distance, 1e-9)
		assert.InDelta(t, 0.8, output.Results[0].Similarity, 1e-9)
	})

	t.Run("default top_k is 5", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.DefaultTopK, retrieval.topK)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: errors.New("embedding query: connection refused")}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		answers := &mockAnswerService{answer: &domain.Answer{
			Text:    "Remote work requires manager approval.",
			Sources: []domain.QueryResult{hit("policy text", "handbook.pdf#p3", 0.1)},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answers: answers})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Can I work remotely?"})

		require.NoError(t, err)
		assert.Equal(t, "Remote work requires manager approval.", output.Answer)
		assert.False(t, output.Failed)
		assert.Equal(t, []string{"handbook.pdf#p3"}, output.Sources)
	})

	t.Run("disabled without answer service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, ErrAnswersDisabled)
	})

	t.Run("propagates errors", func(t *testing.T) {
		answers := &mockAnswerService{err: domain.ErrIndexNotReady}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answers: answers})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	})
}

func TestServer_handleCheckRule(t *testing.T) {
	ctx := context.Background()

	t.Run("returns finding", func(t *testing.T) {
		compliance := &mockComplianceService{status: domain.StatusNonCompliant}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Compliance: compliance})
		require.NoError(t, err)

		input := CheckRuleInput{ID: "R7", Category: "Security", Rule: "Laptops are encrypted", Severity: "High"}
		_, output, err := server.handleCheckRule(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "R7", output.ID)
		assert.Equal(t, "Non-Compliant", output.Status)
		assert.Equal(t, "section 4.2", output.Evidence)
		assert.Equal(t, "Security", compliance.rule.Category)
	})

	t.Run("disabled without compliance service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleCheckRule(ctx, nil, CheckRuleInput{ID: "R1", Rule: "x"})
		assert.ErrorIs(t, err, ErrComplianceDisabled)
	})
}
