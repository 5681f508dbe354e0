// Package paged loads PDF files, one Document per page.
package paged

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// maxTitleLen bounds titles taken from page text.
const maxTitleLen = 80

// Loader extracts PDF text with pdftotext and splits it on form feeds.
// Images and other non-text content are ignored.
type Loader struct {
	runner CommandRunner
}

// New creates a PDF loader that runs the system pdftotext.
func New() *Loader {
	return &Loader{runner: ExecRunner{}}
}

// NewWithRunner creates a PDF loader with a custom command runner.
func NewWithRunner(runner CommandRunner) *Loader {
	return &Loader{runner: runner}
}

// Name returns the loader format name.
func (l *Loader) Name() string {
	return "paged"
}

// Extensions returns the file extensions handled.
func (l *Loader) Extensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (l *Loader) Priority() int {
	return 50
}

// Sniff reports whether head starts with the PDF magic.
func (l *Loader) Sniff(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

// Load extracts the pages of the PDF at path. Blank pages are skipped
// but still counted, so page numbers match the source document.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	out, err := l.runner.Run(ctx, pdfToText, "-layout", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := strings.Split(string(out), "\f")
	// pdftotext terminates the last page with a form feed.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}

	var docs []domain.Document
	for i, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		num := i + 1
		docs = append(docs, domain.Document{
			Source:  path + "#page=" + strconv.Itoa(num),
			Title:   pageTitle(text, path, num),
			Content: text,
			Metadata: map[string]any{
				"page":  num,
				"pages": len(pages),
			},
		})
	}

	return docs, nil
}

// pageTitle uses the first non-empty line of the page, or the file name.
func pageTitle(text, path string, page int) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleLen {
			line = string(r[:maxTitleLen])
		}
		return line
	}
	return filepath.Base(path) + " p." + strconv.Itoa(page)
}
