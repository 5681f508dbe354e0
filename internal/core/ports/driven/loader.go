package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// DocumentLoader turns one file into zero or more Documents.
// Each loader handles a family of formats (tabular, paged, plain text).
type DocumentLoader interface {
	// Name returns the loader format name (e.g. "tabular").
	Name() string

	// Extensions returns the lowercase file extensions handled, with leading dot.
	Extensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific loaders should return 50-89.
	// Fallback loaders should return 1-9.
	Priority() int

	// Load reads the file at path. An empty result is not an error.
	Load(ctx context.Context, path string) ([]domain.Document, error)
}

// LoaderRegistry selects the appropriate loader for a file.
type LoaderRegistry interface {
	// Register adds a loader to the registry.
	Register(loader DocumentLoader)

	// LoaderFor returns the best loader for path, or ErrUnsupportedType.
	LoaderFor(path string) (DocumentLoader, error)

	// SupportedExtensions returns all extensions that can be loaded.
	SupportedExtensions() []string
}

// CorpusLoader reads a whole corpus directory.
type CorpusLoader interface {
	// LoadDir walks dir and returns the Documents of every supported file.
	// Include restricts the walk to matching glob patterns; empty means all files.
	LoadDir(ctx context.Context, dir string, include []string) ([]domain.Document, error)
}
