package domain

import "time"

// IndexState is the lifecycle state of a vector index store.
type IndexState string

// Index lifecycle states.
const (
	// IndexUnbuilt means neither Build nor Load has succeeded yet.
	IndexUnbuilt IndexState = "unbuilt"

	// IndexReady means the store holds an aligned index and accepts queries.
	IndexReady IndexState = "ready"
)

// String returns the string representation.
func (s IndexState) String() string {
	return string(s)
}

// DistanceMetric selects how the index compares vectors.
type DistanceMetric string

// Supported distance metrics.
const (
	// MetricL2 is squared Euclidean distance over raw vectors.
	MetricL2 DistanceMetric = "l2"

	// MetricCosine is 1 - cosine similarity over L2-normalised vectors.
	MetricCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	return m == MetricL2 || m == MetricCosine
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// Description returns a human-readable description of the metric.
func (m DistanceMetric) Description() string {
	switch m {
	case MetricL2:
		return "Squared Euclidean (L2)"
	case MetricCosine:
		return "Cosine distance (normalised vectors)"
	default:
		return unknownDescription
	}
}

// Similarity converts a raw distance into a presentation score where larger is better.
//
// For cosine the score is 1 - distance, which equals the cosine similarity.
// For l2 the distance is unbounded, so 1 - distance would be meaningless; the
// score is 1 / (1 + distance) instead, which preserves ranking but is not calibrated.
func Similarity(metric DistanceMetric, distance float64) float64 {
	switch metric {
	case MetricCosine:
		return 1 - distance
	case MetricL2:
		if distance < 0 {
			distance = 0
		}
		return 1 / (1 + distance)
	default:
		return 0
	}
}

// RecordMetadata is the metadata stored at the same position as a vector.
type RecordMetadata struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string `json:"chunk_id"`

	// DocumentID identifies the chunk's parent document.
	DocumentID string `json:"document_id"`

	// Source is the provenance of the chunk.
	Source string `json:"source"`

	// Text is the embedded chunk text.
	Text string `json:"text"`

	// Position is the chunk position within its document.
	Position int `json:"position"`

	// Metadata carries loader attributes inherited from the document.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// QueryResult is a single ranked retrieval hit.
type QueryResult struct {
	// Metadata is the stored record for the matching vector.
	Metadata RecordMetadata `json:"metadata"`

	// Distance is the raw metric distance (smaller is closer).
	Distance float64 `json:"distance"`
}

// Text returns the matching chunk text.
func (r QueryResult) Text() string {
	return r.Metadata.Text
}

// Source returns the matching chunk provenance.
func (r QueryResult) Source() string {
	return r.Metadata.Source
}

// IndexInfo describes a built or loaded index.
type IndexInfo struct {
	State          IndexState     `json:"state"`
	Dir            string         `json:"dir"`
	Metric         DistanceMetric `json:"metric"`
	Dimensions     int            `json:"dimensions"`
	Count          int            `json:"count"`
	EmbeddingModel string         `json:"embedding_model,omitempty"`
	BuiltAt        time.Time      `json:"built_at,omitempty"`
}
