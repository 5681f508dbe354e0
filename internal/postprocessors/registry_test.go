package postprocessors

import (
	"errors"
	"testing"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/postprocessors/chunker"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: "mock"}, nil
	})

	if !r.Has("mock") || r.Has("other") {
		t.Fatal("Has reports wrong membership")
	}

	p, err := r.Build("mock", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("expected mock, got %s", p.Name())
	}

	if _, err := r.Build("unknown", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown processor, got %v", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "chunker"} {
		r.Register(n, nil)
	}

	names := r.Names()
	want := []string{"alpha", "chunker", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]any
		wantSize    int
		wantOverlap int
		wantErr     bool
	}{
		{"nil config uses defaults", nil, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap, false},
		{"int values", map[string]any{"chunk_size": 500, "overlap": 50}, 500, 50, false},
		{"toml int64 values", map[string]any{"chunk_size": int64(300), "overlap": int64(0)}, 300, 0, false},
		{"json float values", map[string]any{"chunk_size": 200.0, "overlap": 20.0}, 200, 20, false},
		{"overlap equals size", map[string]any{"chunk_size": 100, "overlap": 100}, 0, 0, true},
		{"overlap exceeds size", map[string]any{"chunk_size": 100, "overlap": 150}, 0, 0, true},
		{"negative overlap", map[string]any{"chunk_size": 100, "overlap": -1}, 0, 0, true},
		{"zero size", map[string]any{"chunk_size": 0}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := buildChunker(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c := p.(*chunker.Processor)
			if c.Size() != tt.wantSize || c.Overlap() != tt.wantOverlap {
				t.Errorf("got size=%d overlap=%d, want %d/%d", c.Size(), c.Overlap(), tt.wantSize, tt.wantOverlap)
			}
		})
	}
}

func TestBuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline(domain.DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}

	if _, err := r.BuildPipeline(domain.PipelineConfig{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty pipeline, got %v", err)
	}

	bad := domain.PipelineConfigFor(domain.ChunkSettings{Size: 10, Overlap: 10})
	if _, err := r.BuildPipeline(bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for overlap >= size, got %v", err)
	}
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": 3.0, "d": "4"}

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if got, ok := getIntFromConfig(cfg, key); !ok || got != want {
			t.Errorf("%s: got %d,%v want %d", key, got, ok, want)
		}
	}
	if _, ok := getIntFromConfig(cfg, "d"); ok {
		t.Error("string value should not parse")
	}
	if _, ok := getIntFromConfig(nil, "a"); ok {
		t.Error("nil config should not parse")
	}
}
