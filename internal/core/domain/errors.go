package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format no loader handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured or failed.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or failed.
	// Neither build nor query can proceed without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Index Errors.

	// ErrCorpusUnavailable indicates the corpus directory is missing, empty,
	// or contains no supported files.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrBuildFailed indicates an index build could not complete.
	ErrBuildFailed = errors.New("index build failed")

	// ErrIndexCorrupt indicates persisted artifacts are inconsistent with each
	// other or with the current embedding model.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrAlreadyBuilt indicates a build was attempted on a ready store
	// or over existing artifacts.
	ErrAlreadyBuilt = errors.New("index already built")

	// ErrIndexNotReady indicates a query against a store that was never built or loaded.
	ErrIndexNotReady = errors.New("index not ready")
)

// LoadError reports a corpus that cannot feed a build. Fatal to build.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load corpus %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrCorpusUnavailable and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return joinCause(ErrCorpusUnavailable, e.Err)
}

// BuildError reports a failed index build, including an empty input set.
type BuildError struct {
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	msg := "build index: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrBuildFailed and the underlying cause.
func (e *BuildError) Unwrap() []error {
	return joinCause(ErrBuildFailed, e.Err)
}

// CorruptError reports persisted artifacts that must not be served.
type CorruptError struct {
	Artifact string
	Reason   string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt index artifact %q: %s", e.Artifact, e.Reason)
}

// Unwrap exposes ErrIndexCorrupt.
func (e *CorruptError) Unwrap() error {
	return ErrIndexCorrupt
}

// NotFoundError reports a missing persisted artifact. Callers treat it as "build needed".
type NotFoundError struct {
	Artifact string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("index artifact %q not found", e.Artifact)
}

// Unwrap exposes ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// EmbeddingError reports an embedding provider failure or a vector dimension mismatch.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	if e.Err == nil {
		return "embedding " + e.Op + " failed"
	}
	return fmt.Sprintf("embedding %s: %v", e.Op, e.Err)
}

// Unwrap exposes ErrEmbeddingUnavailable and the underlying cause.
func (e *EmbeddingError) Unwrap() []error {
	return joinCause(ErrEmbeddingUnavailable, e.Err)
}

// GenerationError reports an LLM call failure.
// Orchestrators surface it as a labelled answer rather than returning it.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation failed"
	}
	return "generation failed: " + e.Err.Error()
}

// Unwrap exposes ErrLLMUnavailable and the underlying cause.
func (e *GenerationError) Unwrap() []error {
	return joinCause(ErrLLMUnavailable, e.Err)
}

func joinCause(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
