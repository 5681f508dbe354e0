// Package flat implements an exact, brute-force vector index persisted as two
// aligned artifacts: vectors.bin (see vectorfile) and metadata.db (see sqlite).
package flat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/vectorfile"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Artifact file names inside the index directory.
const (
	VectorsFile  = "vectors.bin"
	MetadataFile = "metadata.db"
)

// Default configuration values.
const (
	DefaultMetric    = domain.MetricCosine
	DefaultBatchSize = domain.DefaultBatchSize
)

// ctxCheckEvery is how many vectors are scored between cancellation checks.
const ctxCheckEvery = 4096

// Config holds configuration for a flat store.
type Config struct {
	// Dir holds both artifacts (required).
	Dir string

	// Metric is the distance metric (default: cosine).
	Metric domain.DistanceMetric

	// BatchSize is the number of chunks per EmbedBatch call (default: 64).
	BatchSize int
}

// Store is an in-memory exact index with on-disk persistence.
type Store struct {
	cfg      Config
	embedder driven.EmbeddingService
	now      func() time.Time

	mu      sync.RWMutex
	state   domain.IndexState
	dims    int
	vectors []float32 // row-major, len = count*dims
	records []domain.RecordMetadata
	info    domain.IndexInfo
}

// New creates an Unbuilt store. It touches nothing on disk.
func New(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding service is required", domain.ErrInvalidInput)
	}
	if cfg.Metric == "" {
		cfg.Metric = DefaultMetric
	}
	if !cfg.Metric.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInput, cfg.Metric)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Store{
		cfg:      cfg,
		embedder: embedder,
		now:      time.Now,
		state:    domain.IndexUnbuilt,
	}, nil
}

// Opener returns a driven.VectorStoreOpener producing fresh stores for cfg.
func Opener(cfg Config, embedder driven.EmbeddingService) driven.VectorStoreOpener {
	return func() (driven.VectorStore, error) {
		return New(cfg, embedder)
	}
}

// RemoveArtifacts deletes both artifacts from dir so the next open rebuilds.
// Missing files are not an error.
func RemoveArtifacts(dir string) error {
	for _, name := range []string{VectorsFile, MetadataFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) vectorsPath() string  { return filepath.Join(s.cfg.Dir, VectorsFile) }
func (s *Store) metadataPath() string { return filepath.Join(s.cfg.Dir, MetadataFile) }

// State returns the lifecycle state.
func (s *Store) State() domain.IndexState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ArtifactsExist reports whether both artifacts are present.
func (s *Store) ArtifactsExist() bool {
	return fileExists(s.vectorsPath()) && fileExists(s.metadataPath())
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// Build embeds chunks in order and persists both artifacts.
// Position i of the index is chunks[i].
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.IndexReady {
		return domain.ErrAlreadyBuilt
	}
	vecExists, metaExists := fileExists(s.vectorsPath()), fileExists(s.metadataPath())
	if vecExists && metaExists {
		return fmt.Errorf("%w: artifacts exist in %s", domain.ErrAlreadyBuilt, s.cfg.Dir)
	}
	if vecExists || metaExists {
		logger.Warn("Replacing partial index artifacts in %s", s.cfg.Dir)
	}
	if len(chunks) == 0 {
		return &domain.BuildError{Reason: "no chunks to index"}
	}

	defer logger.Timed(fmt.Sprintf("build index of %d chunks", len(chunks)))()

	vectors, dims, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	records := make([]domain.RecordMetadata, len(chunks))
	for i := range chunks {
		records[i] = recordFor(chunks[i])
	}

	info := domain.IndexInfo{
		Dir:            s.cfg.Dir,
		Metric:         s.cfg.Metric,
		Dimensions:     dims,
		Count:          len(chunks),
		EmbeddingModel: s.embedder.ModelName(),
		BuiltAt:        s.now().UTC().Truncate(time.Second),
	}

	if err := s.persist(ctx, info, records, vectors); err != nil {
		return &domain.BuildError{Reason: "persist index", Err: err}
	}

	s.dims = dims
	s.vectors = flatten(vectors, dims)
	s.records = records
	s.info = info
	s.state = domain.IndexReady
	logger.Info("Indexed %d chunks (%d dimensions, %s)", len(chunks), dims, s.cfg.Metric)
	return nil
}

func recordFor(c domain.Chunk) domain.RecordMetadata {
	return domain.RecordMetadata{
		ChunkID:    c.ID,
		DocumentID: c.DocumentID,
		Source:     c.Source,
		Text:       c.Text,
		Position:   c.Position,
		Metadata:   maps.Clone(c.Metadata),
	}
}

// embedChunks embeds texts batch by batch, checking every vector's length.
func (s *Store) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, int, error) {
	dims := s.embedder.Dimensions()
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, 0, &domain.BuildError{Reason: "cancelled", Err: err}
		}
		end := min(start+s.cfg.BatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, 0, &domain.BuildError{Reason: "embed chunks", Err: asEmbeddingError("build", err)}
		}
		if len(batch) != len(texts) {
			return nil, 0, &domain.BuildError{Reason: "embed chunks", Err: &domain.EmbeddingError{
				Op:  "build",
				Err: fmt.Errorf("got %d vectors for %d texts", len(batch), len(texts)),
			}}
		}

		for i, vec := range batch {
			if dims == 0 {
				dims = len(vec)
			}
			if len(vec) == 0 || len(vec) != dims {
				return nil, 0, &domain.BuildError{Reason: "embed chunks", Err: &domain.EmbeddingError{
					Op:  "build",
					Err: fmt.Errorf("chunk %d: vector has %d dimensions, expected %d", start+i, len(vec), dims),
				}}
			}
			if s.cfg.Metric == domain.MetricCosine {
				vec = normalise(vec)
			}
			vectors = append(vectors, vec)
		}
		logger.Debug("Embedded %d/%d chunks", end, len(chunks))
	}
	return vectors, dims, nil
}

// persist writes metadata then vectors, each through a temp file and rename.
// On failure neither artifact is left behind.
func (s *Store) persist(ctx context.Context, info domain.IndexInfo, records []domain.RecordMetadata, vectors [][]float32) error {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmpMeta := s.metadataPath() + ".tmp"
	meta, err := sqlite.Create(ctx, tmpMeta)
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}
	if err := meta.WriteIndex(ctx, info, records); err != nil {
		_ = meta.Close()
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := meta.Close(); err != nil {
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Rename(tmpMeta, s.metadataPath()); err != nil {
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("rename metadata: %w", err)
	}

	if err := vectorfile.WriteFile(s.vectorsPath(), info.Metric, info.Dimensions, vectors); err != nil {
		_ = os.Remove(s.metadataPath())
		_ = os.Remove(s.vectorsPath())
		return fmt.Errorf("write vectors: %w", err)
	}
	return nil
}

// Load restores the store from both artifacts after checking they agree with
// each other, with the configured metric and with the embedder.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.IndexReady {
		return domain.ErrAlreadyBuilt
	}
	for _, p := range []string{s.vectorsPath(), s.metadataPath()} {
		if !fileExists(p) {
			return &domain.NotFoundError{Artifact: p}
		}
	}

	header, vectors, err := vectorfile.ReadFile(s.vectorsPath())
	if err != nil {
		return &domain.CorruptError{Artifact: s.vectorsPath(), Reason: err.Error()}
	}

	meta, err := sqlite.Open(ctx, s.metadataPath())
	if err != nil {
		return &domain.CorruptError{Artifact: s.metadataPath(), Reason: err.Error()}
	}
	defer meta.Close()

	info, err := meta.ReadInfo(ctx)
	if err != nil {
		return &domain.CorruptError{Artifact: s.metadataPath(), Reason: err.Error()}
	}
	records, err := meta.ReadRecords(ctx)
	if err != nil {
		return &domain.CorruptError{Artifact: s.metadataPath(), Reason: err.Error()}
	}

	if err := s.checkConsistency(header, info, len(records)); err != nil {
		return err
	}

	info.Dir = s.cfg.Dir
	info.Count = len(records)
	s.dims = header.Dimensions
	s.vectors = vectors
	s.records = records
	s.info = info
	s.state = domain.IndexReady
	logger.Info("Loaded index of %d chunks from %s", len(records), s.cfg.Dir)
	return nil
}

func (s *Store) checkConsistency(h vectorfile.Header, info domain.IndexInfo, records int) error {
	corrupt := func(artifact, format string, args ...any) error {
		return &domain.CorruptError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case h.Count != records:
		return corrupt(s.cfg.Dir, "%d vectors but %d metadata records", h.Count, records)
	case info.Count != records:
		return corrupt(s.metadataPath(), "index_info count %d but %d records", info.Count, records)
	case h.Metric != info.Metric:
		return corrupt(s.cfg.Dir, "vectors use metric %s, metadata records %s", h.Metric, info.Metric)
	case h.Metric != s.cfg.Metric:
		return corrupt(s.vectorsPath(), "index built with metric %s, configured %s", h.Metric, s.cfg.Metric)
	case h.Dimensions != info.Dimensions:
		return corrupt(s.cfg.Dir, "vectors have %d dimensions, metadata records %d", h.Dimensions, info.Dimensions)
	}

	if d := s.embedder.Dimensions(); d > 0 && d != h.Dimensions {
		return corrupt(s.vectorsPath(), "index has %d dimensions, embedder %s produces %d",
			h.Dimensions, s.embedder.ModelName(), d)
	}
	if info.EmbeddingModel != "" && info.EmbeddingModel != s.embedder.ModelName() {
		return corrupt(s.metadataPath(), "index built with embedding model %s, configured %s",
			info.EmbeddingModel, s.embedder.ModelName())
	}
	return nil
}

// Query embeds text and returns the topK nearest records by ascending distance.
// Ties are broken by position, and topK is clamped to the stored count.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}
	if s.State() != domain.IndexReady {
		return nil, domain.ErrIndexNotReady
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, asEmbeddingError("query", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != domain.IndexReady {
		return nil, domain.ErrIndexNotReady
	}
	if len(query) != s.dims {
		return nil, &domain.EmbeddingError{
			Op:  "query",
			Err: fmt.Errorf("query vector has %d dimensions, index has %d", len(query), s.dims),
		}
	}
	if s.cfg.Metric == domain.MetricCosine {
		query = normalise(query)
	}

	type hit struct {
		pos  int
		dist float64
	}
	n := len(s.records)
	hits := make([]hit, n)
	for i := 0; i < n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := s.vectors[i*s.dims : (i+1)*s.dims]
		hits[i] = hit{pos: i, dist: distance(s.cfg.Metric, query, row)}
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	k := min(topK, n)
	results := make([]domain.QueryResult, k)
	for i := 0; i < k; i++ {
		rec := s.records[hits[i].pos]
		rec.Metadata = maps.Clone(rec.Metadata)
		results[i] = domain.QueryResult{Metadata: rec, Distance: hits[i].dist}
	}
	return results, nil
}

// Info describes the index.
func (s *Store) Info() domain.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := s.info
	info.State = s.state
	info.Dir = s.cfg.Dir
	if s.state != domain.IndexReady {
		info.Metric = s.cfg.Metric
	}
	return info
}

// Close drops the in-memory index. The store reports Unbuilt afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.records = nil
	s.state = domain.IndexUnbuilt
	return nil
}

func asEmbeddingError(op string, err error) error {
	var embErr *domain.EmbeddingError
	if errors.As(err, &embErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.EmbeddingError{Op: op, Err: err}
}

func flatten(vectors [][]float32, dims int) []float32 {
	out := make([]float32, 0, len(vectors)*dims)
	for _, v := range vectors {
		out = append(out, v...)
	}
	return out
}

// normalise returns v scaled to unit length. Zero vectors are returned unchanged.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// distance computes the raw metric distance. Cosine assumes unit vectors and is clamped to [0, 2].
func distance(metric domain.DistanceMetric, a, b []float32) float64 {
	switch metric {
	case domain.MetricCosine:
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return min(max(1-dot, 0), 2)
	default:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return sum
	}
}
