// Package loaders turns a corpus directory into Documents.
//
// Each file format is handled by a DocumentLoader registered with a Registry.
// Selection is by file extension, highest priority first. Files with an
// unknown extension are sniffed by loaders implementing Sniffer.
//
// Loaders:
//   - tabular: CSV/TSV, one Document per row
//   - paged: PDF via pdftotext, one Document per page
//   - plaintext: .txt and .md, one Document per file
package loaders
