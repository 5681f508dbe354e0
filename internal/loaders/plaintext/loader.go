// Package plaintext loads .txt and .md files, one Document per file.
package plaintext

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads UTF-8 text files. Markdown formatting is simplified to plain text.
type Loader struct{}

// New creates a plain text loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader format name.
func (l *Loader) Name() string {
	return "plaintext"
}

// Extensions returns the file extensions handled.
func (l *Loader) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Priority returns the selection priority.
func (l *Loader) Priority() int {
	return 5 // Fallback loader
}

// Sniff accepts valid UTF-8 without NUL bytes.
func (l *Loader) Sniff(head []byte) bool {
	if len(head) == 0 || bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	// The head may end mid-rune.
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.Valid(head) {
			return true
		}
		head = head[:len(head)-1]
	}
	return false
}

// Load reads the file at path. Blank files yield no Documents.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := strings.ToValidUTF8(string(data), "�")
	title := ""
	format := "text"

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		title = markdownTitle(content)
		content = stripMarkdown(content)
		format = "markdown"
	}

	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	return []domain.Document{{
		Source:   path,
		Title:    title,
		Content:  content,
		Metadata: map[string]any{"format": format},
	}}, nil
}
