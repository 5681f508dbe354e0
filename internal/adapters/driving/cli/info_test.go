package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestInfoCmd_Text(t *testing.T) {
	info := readyInfo()
	info.BuiltAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{info: info}})

	out, err := executeCommand(t, "", "info")

	require.NoError(t, err)
	assert.Contains(t, out, "[Index]")
	assert.Contains(t, out, "State: ready")
	assert.Contains(t, out, "Chunks: 12")
	assert.Contains(t, out, "Dimensions: 384")
	assert.Contains(t, out, "Metric: Cosine distance (normalised vectors)")
	assert.Contains(t, out, "Embedding model: all-minilm")
	assert.Contains(t, out, "Built: ")
}

func TestInfoCmd_NotBuilt(t *testing.T) {
	setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{info: domain.IndexInfo{State: domain.IndexUnbuilt}}})

	out, err := executeCommand(t, "", "info")

	require.NoError(t, err)
	assert.Contains(t, out, "State: unbuilt")
	assert.NotContains(t, out, "Built: ")
}

func TestInfoCmd_JSON(t *testing.T) {
	setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{info: readyInfo()}})

	out, err := executeCommand(t, "", "info", "--json")
	require.NoError(t, err)

	var got domain.IndexInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, readyInfo().Count, got.Count)
	assert.Equal(t, domain.MetricCosine, got.Metric)
}
