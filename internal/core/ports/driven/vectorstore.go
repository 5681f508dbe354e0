package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// VectorStore is a persisted exact similarity index over chunk embeddings.
//
// A store starts Unbuilt and becomes Ready through exactly one successful
// Build or Load. Vectors and metadata are index-aligned: position i of one
// artifact always describes position i of the other.
type VectorStore interface {
	// State returns the lifecycle state.
	State() domain.IndexState

	// ArtifactsExist reports whether both persisted artifacts are present.
	ArtifactsExist() bool

	// Build embeds chunks and persists both artifacts.
	// Returns ErrAlreadyBuilt if the store is Ready or both artifacts exist,
	// and a BuildError for an empty chunk set.
	Build(ctx context.Context, chunks []domain.Chunk) error

	// Load restores the store from persisted artifacts.
	// Returns NotFoundError if an artifact is missing and CorruptError if
	// they disagree with each other or with the embedder.
	Load(ctx context.Context) error

	// Query returns up to topK nearest chunks by ascending distance.
	Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error)

	// Info describes the index.
	Info() domain.IndexInfo

	// Close releases resources.
	Close() error
}

// VectorStoreOpener creates a fresh Unbuilt store bound to the configured index.
type VectorStoreOpener func() (VectorStore, error)
