package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/flat"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/services"
)

type testEnv struct {
	corpus string
	index  string
	comp   *composer
}

func newTestEnv(t *testing.T, extra map[string]any) *testEnv {
	t.Helper()
	corpus := t.TempDir()
	index := filepath.Join(t.TempDir(), "index")

	values := map[string]any{
		"embedding.provider": "hashing",
		"llm.provider":       "openai",
		"index.dir":          index,
		"corpus.dir":         corpus,
		"chunk.size":         50,
		"chunk.overlap":      10,
	}
	for k, v := range extra {
		values[k] = v
	}

	settings := services.NewSettingsService(memory.NewConfigStore(values), nil)
	settings.SetEnvLookup(nil)

	return &testEnv{
		corpus: corpus,
		index:  index,
		comp:   newComposer(settings, t.TempDir()),
	}
}

func (e *testEnv) write(t *testing.T, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.corpus, name), []byte(text), 0o600))
}

func TestComposer_OpenBuildsIndex(t *testing.T) {
	env := newTestEnv(t, nil)
	env.write(t, "notes.txt", strings.Repeat("cardiology follow-up visit ", 10))

	rt, err := env.comp.open(context.Background(), cli.RuntimeOptions{})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, env.index, rt.IndexDir)
	assert.Empty(t, rt.Warnings)
	assert.NotNil(t, rt.Reload)
	assert.FileExists(t, filepath.Join(env.index, flat.VectorsFile))

	results, err := rt.Retrieval.Query(context.Background(), "cardiology", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "notes.txt", filepath.Base(results[0].Source()))

	assert.Equal(t, domain.ProfileMedical, rt.Answers.Profile())
}

func TestComposer_Rebuild(t *testing.T) {
	env := newTestEnv(t, nil)
	env.write(t, "a.txt", "first document")

	rt, err := env.comp.open(context.Background(), cli.RuntimeOptions{})
	require.NoError(t, err)
	first := rt.Retrieval.Info().Count
	rt.Close()

	env.write(t, "b.txt", "second document")

	rt, err = env.comp.open(context.Background(), cli.RuntimeOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, rt.Retrieval.Info().Count)
	rt.Close()

	rt, err = env.comp.open(context.Background(), cli.RuntimeOptions{Rebuild: true})
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, first+1, rt.Retrieval.Info().Count)
}

func TestComposer_RequireLLM(t *testing.T) {
	env := newTestEnv(t, nil)
	env.write(t, "a.txt", "text")

	_, err := env.comp.open(context.Background(), cli.RuntimeOptions{RequireLLM: true})

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.NoFileExists(t, filepath.Join(env.index, flat.VectorsFile))
}

func TestComposer_EmptyCorpus(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.comp.open(context.Background(), cli.RuntimeOptions{})

	assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
}

func TestComposer_InvalidChunking(t *testing.T) {
	env := newTestEnv(t, map[string]any{"chunk.overlap": 50})
	env.write(t, "a.txt", "text")

	_, err := env.comp.open(context.Background(), cli.RuntimeOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComposer_Resolve(t *testing.T) {
	env := newTestEnv(t, nil)

	settings, err := env.comp.resolve(cli.RuntimeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileMedical, settings.Profile)
	assert.Equal(t, domain.DefaultRulesPath, settings.RulesPath)

	settings, err = env.comp.resolve(cli.RuntimeOptions{
		Profile:   domain.ProfilePolicy,
		CorpusDir: "policies",
		RulesPath: "rules.yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePolicy, settings.Profile)
	assert.Equal(t, "index_policy", settings.Index.Dir)
	assert.Equal(t, []string{"*.pdf"}, settings.Corpus.Include)
	assert.Equal(t, "policies", settings.Corpus.Dir)
	assert.Equal(t, "rules.yaml", settings.RulesPath)
}
