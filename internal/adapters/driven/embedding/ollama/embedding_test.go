package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func newServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			resp := embedResponse{}
			for i := range req.Input {
				vec := make([]float64, dims)
				vec[i%dims] = 1
				resp.Embeddings = append(resp.Embeddings, vec)
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 384, svc.Dimensions())
}

func TestNewEmbeddingService_KnownModelDimensions(t *testing.T) {
	for _, model := range []string{"nomic-embed-text", "mxbai-embed-large", "snowflake-arctic-embed"} {
		svc := NewEmbeddingService(Config{Model: model})
		assert.Equal(t, domain.EmbeddingDimensions()[model], svc.Dimensions(), model)
		assert.NotZero(t, svc.Dimensions(), model)
	}
}

func TestNewEmbeddingService_UnknownModelLearnsDimensions(t *testing.T) {
	srv := newServer(t, 5)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "custom-embedder"})
	assert.Equal(t, 0, svc.Dimensions())

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 5)
	assert.Equal(t, 5, svc.Dimensions())
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	srv := newServer(t, 4)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 4})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(1), vecs[1][1])
	assert.Equal(t, float32(1), vecs[2][2])
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	srv := newServer(t, 3)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 384})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "expected 384")
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPing(t *testing.T) {
	srv := newServer(t, 3)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close())
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: url})
	assert.Error(t, svc.Ping(context.Background()))
}
