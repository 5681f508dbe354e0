package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	QueryFunc func(ctx context.Context, text string, topK int) ([]domain.QueryResult, error)
	InfoValue domain.IndexInfo
}

func (m *MockRetrievalService) Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, topK)
	}
	return nil, nil
}

func (m *MockRetrievalService) Info() domain.IndexInfo {
	return m.InfoValue
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, question string, topK int) (*domain.Answer, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, topK)
	}
	return &domain.Answer{Question: question}, nil
}

func (m *MockAnswerService) Profile() domain.Profile {
	return domain.ProfileMedical
}

func TestNewPorts(t *testing.T) {
	retrieval := &MockRetrievalService{}
	answers := &MockAnswerService{}

	ports := NewPorts(retrieval, answers)

	require.NotNil(t, ports)
	assert.Equal(t, retrieval, ports.Retrieval)
	assert.Equal(t, answers, ports.Answers)
}

func TestPorts_Validate(t *testing.T) {
	assert.NoError(t, (&Ports{Retrieval: &MockRetrievalService{}}).Validate())
	assert.ErrorIs(t, (&Ports{Answers: &MockAnswerService{}}).Validate(), ErrMissingRetrievalService)
}
