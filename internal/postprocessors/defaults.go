package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Runes per chunk (default: 1000)
//   - overlap (int): Overlapping runes between chunks (default: 200)
//
// Unlike chunker.New, an overlap not smaller than the size is rejected
// rather than clamped, because it comes from user configuration.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size, overlap := chunker.DefaultChunkSize, chunker.DefaultChunkOverlap

	if v, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		size = v
	}
	if v, ok := getIntFromConfig(cfg, "overlap"); ok {
		overlap = v
	}

	if size < 1 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, size, overlap)
	}

	return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap)), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
