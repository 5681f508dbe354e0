package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// sniffLen is how much of a file is read to detect its format.
const sniffLen = 512

// Sniffer is implemented by loaders that can recognise their format from content.
type Sniffer interface {
	Sniff(head []byte) bool
}

// Registry selects the DocumentLoader for a file.
type Registry struct {
	mu      sync.RWMutex
	loaders []driven.DocumentLoader
}

// NewRegistry creates a registry holding the given loaders.
func NewRegistry(loaders ...driven.DocumentLoader) *Registry {
	r := &Registry{}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// Register adds a loader. Loaders are kept in descending priority order;
// equal priorities keep registration order.
func (r *Registry) Register(loader driven.DocumentLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaders = append(r.loaders, loader)
	sort.SliceStable(r.loaders, func(i, j int) bool {
		return r.loaders[i].Priority() > r.loaders[j].Priority()
	})
}

// LoaderFor returns the loader for path.
// The extension decides first; otherwise the file head is sniffed.
func (r *Registry) LoaderFor(path string) (driven.DocumentLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		for _, l := range r.loaders {
			for _, e := range l.Extensions() {
				if e == ext {
					return l, nil
				}
			}
		}
	}

	head, err := readHead(path)
	if err != nil {
		return nil, fmt.Errorf("sniff %s: %w", path, err)
	}
	for _, l := range r.loaders {
		if s, ok := l.(Sniffer); ok && s.Sniff(head) {
			return l, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(path))
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var exts []string
	for _, l := range r.loaders {
		for _, e := range l.Extensions() {
			if !seen[e] {
				seen[e] = true
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
