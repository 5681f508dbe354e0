package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestChunk_RuneLen tests rune length from offsets
func TestChunk_RuneLen(t *testing.T) {
	c := Chunk{Text: "héllo", Start: 10, End: 15}
	assert.Equal(t, 5, c.RuneLen())
}

// TestQueryResult_Accessors tests Text and Source helpers
func TestQueryResult_Accessors(t *testing.T) {
	r := QueryResult{
		Metadata: RecordMetadata{Text: "chunk text", Source: "data/a.csv#row=3"},
		Distance: 0.25,
	}
	assert.Equal(t, "chunk text", r.Text())
	assert.Equal(t, "data/a.csv#row=3", r.Source())
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		metric   DistanceMetric
		distance float64
		want     float64
	}{
		{"cosine identical", MetricCosine, 0, 1},
		{"cosine orthogonal", MetricCosine, 1, 0},
		{"cosine opposite", MetricCosine, 2, -1},
		{"l2 identical", MetricL2, 0, 1},
		{"l2 distance one", MetricL2, 1, 0.5},
		{"l2 negative clamps", MetricL2, -0.001, 1},
		{"unknown metric", DistanceMetric("dot"), 0.3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.metric, tt.distance), 1e-9)
		})
	}
}

func TestSimilarity_L2IsMonotone(t *testing.T) {
	assert.Greater(t, Similarity(MetricL2, 0.5), Similarity(MetricL2, 3.0))
	assert.Greater(t, Similarity(MetricL2, 10), 0.0)
}

func TestDistanceMetric_IsValid(t *testing.T) {
	assert.True(t, MetricL2.IsValid())
	assert.True(t, MetricCosine.IsValid())
	assert.False(t, DistanceMetric("ip").IsValid())
	assert.Equal(t, unknownDescription, DistanceMetric("ip").Description())
}
