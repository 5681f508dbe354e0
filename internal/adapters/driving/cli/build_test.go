package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCmd_PrintsIndexSummary(t *testing.T) {
	calls := setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{info: readyInfo()}})

	out, err := executeCommand(t, "", "build")

	require.NoError(t, err)
	assert.Contains(t, out, "Index ready: 12 chunks, 384 dimensions, cosine metric")
	assert.Contains(t, out, "Artifacts: index")
	require.Len(t, *calls, 1)
	assert.False(t, (*calls)[0].Rebuild)
	assert.Empty(t, (*calls)[0].CorpusDir)
}

func TestBuildCmd_ForceAndCorpus(t *testing.T) {
	calls := setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{info: readyInfo()}})

	_, err := executeCommand(t, "", "build", "--force", "--corpus", "docs")

	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.True(t, (*calls)[0].Rebuild)
	assert.Equal(t, "docs", (*calls)[0].CorpusDir)
}

func TestBuildCmd_RejectsArgs(t *testing.T) {
	setupTestRuntime(t, &Runtime{Retrieval: &mockRetrieval{}})

	_, err := executeCommand(t, "", "build", "extra")

	assert.Error(t, err)
}
