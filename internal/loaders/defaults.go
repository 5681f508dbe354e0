package loaders

import (
	"github.com/custodia-labs/ragkit/internal/loaders/paged"
	"github.com/custodia-labs/ragkit/internal/loaders/plaintext"
	"github.com/custodia-labs/ragkit/internal/loaders/tabular"
)

// Options configures the built-in loaders.
type Options struct {
	// TextColumn is the tabular column holding document text.
	TextColumn string

	// PDFRunner overrides how pdftotext is executed. Nil uses the system binary.
	PDFRunner paged.CommandRunner
}

// NewDefaultRegistry returns a registry with every built-in loader.
func NewDefaultRegistry(opts Options) *Registry {
	pdf := paged.New()
	if opts.PDFRunner != nil {
		pdf = paged.NewWithRunner(opts.PDFRunner)
	}

	return NewRegistry(
		tabular.New(opts.TextColumn),
		pdf,
		plaintext.New(),
	)
}
