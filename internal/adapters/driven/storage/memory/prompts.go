package memory

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from a map.
type PromptStore struct {
	mu      sync.RWMutex
	prompts map[string]string
}

// NewPromptStore creates a prompt store holding the given templates.
func NewPromptStore(prompts map[string]string) *PromptStore {
	s := &PromptStore{prompts: make(map[string]string, len(prompts))}
	for k, v := range prompts {
		s.prompts[k] = v
	}
	return s
}

// Load returns the named template.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

// Reload is a no-op.
func (s *PromptStore) Reload() {}

// Set replaces a template.
func (s *PromptStore) Set(name, template string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[name] = template
}
