package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// RetrievalService answers similarity queries against the built index.
type RetrievalService interface {
	// Query returns up to topK chunks ordered by ascending distance.
	Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error)

	// Info describes the index currently being served.
	Info() domain.IndexInfo
}
