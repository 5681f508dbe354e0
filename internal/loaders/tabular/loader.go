// Package tabular loads CSV and TSV files, one Document per data row.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// titleColumns are tried in order to label a row.
var titleColumns = []string{"sample_name", "title", "name", "description"}

// Loader reads delimited text with a header row.
//
// When the text column is present, each row with non-empty text becomes a
// Document whose content is that cell and whose metadata holds the other
// non-empty cells. Otherwise every non-empty cell is rendered as a
// "header: value" line.
type Loader struct {
	textColumn string
}

// New creates a tabular loader. An empty textColumn uses "transcription".
func New(textColumn string) *Loader {
	if textColumn == "" {
		textColumn = domain.DefaultTextColumn
	}
	return &Loader{textColumn: textColumn}
}

// Name returns the loader format name.
func (l *Loader) Name() string {
	return "tabular"
}

// Extensions returns the file extensions handled.
func (l *Loader) Extensions() []string {
	return []string{".csv", ".tsv"}
}

// Priority returns the selection priority.
func (l *Loader) Priority() int {
	return 60
}

// Load reads the file at path.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = normaliseHeader(header)

	textIdx := indexOf(header, l.textColumn)
	titleIdx := -1
	for _, c := range titleColumns {
		if i := indexOf(header, c); i >= 0 && i != textIdx {
			titleIdx = i
			break
		}
	}

	var docs []domain.Document
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		doc, ok := l.rowDocument(path, row, header, record, textIdx, titleIdx)
		if ok {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

func (l *Loader) rowDocument(path string, row int, header, record []string, textIdx, titleIdx int) (domain.Document, bool) {
	metadata := map[string]any{"row": row}
	var content string

	if textIdx >= 0 {
		content = strings.TrimSpace(cell(record, textIdx))
		if content == "" {
			return domain.Document{}, false
		}
		for i, h := range header {
			if i == textIdx || h == "" {
				continue
			}
			if v := strings.TrimSpace(cell(record, i)); v != "" {
				metadata[h] = v
			}
		}
	} else {
		var lines []string
		for i, h := range header {
			if v := strings.TrimSpace(cell(record, i)); v != "" {
				lines = append(lines, h+": "+v)
			}
		}
		if len(lines) == 0 {
			return domain.Document{}, false
		}
		content = strings.Join(lines, "\n")
	}

	title := ""
	if titleIdx >= 0 {
		title = strings.TrimSpace(cell(record, titleIdx))
	}
	if title == "" {
		title = filepath.Base(path) + " row " + strconv.Itoa(row)
	}

	return domain.Document{
		Source:   path + "#row=" + strconv.Itoa(row),
		Title:    title,
		Content:  content,
		Metadata: metadata,
	}, true
}

func normaliseHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
