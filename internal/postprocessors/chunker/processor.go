// Package chunker provides a fixed-size rune window chunking processor.
package chunker

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document content into overlapping fixed-size chunks.
// It implements the PostProcessor interface.
//
// Chunk i starts at rune i*(size-overlap). Output depends only on the
// document and the two parameters, so repeated runs yield identical chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// An overlap that is not smaller than the size is clamped to size/4.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Size returns the chunk size in runes.
func (p *Processor) Size() int {
	return p.chunkSize
}

// Overlap returns the overlap in runes.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Blank content produces no chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	step := p.chunkSize - p.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)

	for position, start := 0, 0; ; position, start = position+1, start+step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+p.chunkSize, total)

		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc, position),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Text:       string(runes[start:end]),
			Position:   position,
			Start:      start,
			End:        end,
			Metadata:   maps.Clone(doc.Metadata),
		})

		if end == total {
			break
		}
	}

	return chunks, nil
}

// chunkID derives a stable ID from the document provenance and chunk position.
func chunkID(doc *domain.Document, position int) string {
	key := doc.Source
	if key == "" {
		key = doc.ID
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key+"#chunk="+strconv.Itoa(position))).String()
}
