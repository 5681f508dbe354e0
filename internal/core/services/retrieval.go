package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalConfig describes the corpus a RetrievalService builds from.
type RetrievalConfig struct {
	// CorpusDir is the directory of source documents.
	CorpusDir string

	// Include restricts the corpus to files matching these glob patterns.
	Include []string
}

// RetrievalService owns one vector store and answers similarity queries against it.
// It is ready as soon as it is constructed.
type RetrievalService struct {
	opener driven.VectorStoreOpener

	mu    sync.RWMutex
	store driven.VectorStore
}

// NewRetrievalService loads the persisted index when both artifacts exist and
// otherwise builds it from the corpus. Any failure is returned and no service
// is created. An empty corpus is a LoadError and writes nothing.
func NewRetrievalService(
	ctx context.Context,
	cfg RetrievalConfig,
	loader driven.CorpusLoader,
	pipeline driven.PostProcessorPipeline,
	opener driven.VectorStoreOpener,
) (*RetrievalService, error) {
	if opener == nil {
		return nil, fmt.Errorf("%w: vector store opener is required", domain.ErrInvalidInput)
	}

	store, err := opener()
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	if store.ArtifactsExist() {
		logger.Info("Loading existing index from %s", store.Info().Dir)
		if err := store.Load(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return &RetrievalService{opener: opener, store: store}, nil
	}

	logger.Info("No index found in %s, building from %s", store.Info().Dir, cfg.CorpusDir)
	if err := buildStore(ctx, store, cfg, loader, pipeline); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &RetrievalService{opener: opener, store: store}, nil
}

// buildStore runs loader, chunker and store in sequence.
func buildStore(
	ctx context.Context,
	store driven.VectorStore,
	cfg RetrievalConfig,
	loader driven.CorpusLoader,
	pipeline driven.PostProcessorPipeline,
) error {
	if loader == nil || pipeline == nil {
		return fmt.Errorf("%w: corpus loader and chunking pipeline are required to build", domain.ErrInvalidInput)
	}

	docs, err := loader.LoadDir(ctx, cfg.CorpusDir, cfg.Include)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		reason := "no supported documents found"
		if len(cfg.Include) > 0 {
			reason += " matching " + strings.Join(cfg.Include, ", ")
		}
		return &domain.LoadError{Path: cfg.CorpusDir, Reason: reason}
	}

	logger.Section("Chunk documents")
	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := pipeline.Process(ctx, &docs[i])
		if err != nil {
			return &domain.BuildError{Reason: "chunk " + docs[i].Source, Err: err}
		}
		chunks = append(chunks, docChunks...)
	}
	logger.Info("Split %d documents into %d chunks", len(docs), len(chunks))

	logger.Section("Build index")
	return store.Build(ctx, chunks)
}

// Query returns up to topK chunks nearest to text, by ascending distance.
func (s *RetrievalService) Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return nil, domain.ErrIndexNotReady
	}

	done := logger.Timed(fmt.Sprintf("query top_k=%d", topK))
	defer done()
	return s.store.Query(ctx, text, topK)
}

// Info describes the index currently being served.
func (s *RetrievalService) Info() domain.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return domain.IndexInfo{State: domain.IndexUnbuilt}
	}
	return s.store.Info()
}

// Reload loads the persisted artifacts into a fresh store and swaps it in.
// The current store keeps serving if the reload fails.
func (s *RetrievalService) Reload(ctx context.Context) error {
	fresh, err := s.opener()
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	if err := fresh.Load(ctx); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("reload index: %w", err)
	}

	s.mu.Lock()
	old := s.store
	s.store = fresh
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	info := fresh.Info()
	logger.Info("Reloaded index: %d chunks, built %s", info.Count, info.BuiltAt.Format("2006-01-02 15:04:05"))
	return nil
}

// Close releases the store. Queries afterwards return ErrIndexNotReady.
func (s *RetrievalService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// IsRebuildNeeded reports whether err from NewRetrievalService means the
// persisted index should be deleted and rebuilt.
func IsRebuildNeeded(err error) bool {
	return errors.Is(err, domain.ErrIndexCorrupt)
}
