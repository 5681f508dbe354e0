package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_Metadata(t *testing.T) {
	l := New()
	assert.Equal(t, "plaintext", l.Name())
	assert.Contains(t, l.Extensions(), ".txt")
	assert.Contains(t, l.Extensions(), ".md")
	assert.Equal(t, 5, l.Priority())
}

func TestLoad_Text(t *testing.T) {
	path := writeFile(t, "notes.txt", "Patient follow-up in two weeks.\n")

	docs, err := New().Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, path, docs[0].Source)
	assert.Equal(t, "Patient follow-up in two weeks.\n", docs[0].Content)
	assert.Equal(t, "text", docs[0].Metadata["format"])
}

func TestLoad_Markdown(t *testing.T) {
	path := writeFile(t, "guide.md", "# Triage Guide\n\nSee the [protocol](http://x) for **urgent** cases.\n\n- give `aspirin 81mg`\n")

	docs, err := New().Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Triage Guide", docs[0].Title)
	assert.Equal(t, "Triage Guide\n\nSee the protocol for urgent cases.\n\ngive aspirin 81mg", docs[0].Content)
	assert.Equal(t, "markdown", docs[0].Metadata["format"])
}

func TestLoad_BlankFile(t *testing.T) {
	docs, err := New().Load(context.Background(), writeFile(t, "blank.txt", "  \n\n"))

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSniff(t *testing.T) {
	l := New()

	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{"ascii", []byte("hello"), true},
		{"utf8", []byte("héllo wörld"), true},
		{"truncated rune", []byte("h\xc3"), true},
		{"binary", []byte{0x7f, 'E', 'L', 'F', 0, 0}, false},
		{"invalid", []byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb, 0xfa}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Sniff(tt.head))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "## Dosage", "Dosage"},
		{"image removed", "before ![chart](c.png) after", "before  after"},
		{"code block kept", "```go\nx := 1\n```", "x := 1"},
		{"blockquote", "> quoted", "quoted"},
		{"rule", "a\n---\nb", "a\n\nb"},
		{"underscores in words kept", "snake_case_name", "snake_case_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}
