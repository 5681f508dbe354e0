package domain

// Document is a normalised text unit produced by a loader.
// Documents are created at load time and discarded once chunked; they are never persisted.
type Document struct {
	// ID is a stable identifier derived from Source.
	ID string

	// Source identifies where the text came from (file path, "path#row=N" or "path#page=N").
	Source string

	// Title is a human-readable label.
	Title string

	// Content is the full text body.
	Content string

	// Format is the loader format that produced the document (e.g. "tabular", "paged").
	Format string

	// Metadata holds loader-specific attributes (row columns, page number).
	Metadata map[string]any
}

// Chunk is a bounded-length substring of a document's content.
type Chunk struct {
	// ID is a stable identifier derived from the source and position.
	ID string

	// DocumentID is the parent document ID.
	DocumentID string

	// Source is inherited from the parent document.
	Source string

	// Text is the chunk content.
	Text string

	// Position is the 0-based sequence index within the document.
	Position int

	// Start and End are rune offsets into the document content.
	Start int
	End   int

	// Metadata is inherited from the parent document.
	Metadata map[string]any
}

// RuneLen returns the chunk length in runes.
func (c Chunk) RuneLen() int {
	return c.End - c.Start
}
