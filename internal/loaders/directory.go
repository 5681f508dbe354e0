package loaders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure DirectoryLoader implements the interface.
var _ driven.CorpusLoader = (*DirectoryLoader)(nil)

// DirectoryLoader walks a corpus directory and loads every supported file.
type DirectoryLoader struct {
	registry driven.LoaderRegistry
}

// NewDirectoryLoader creates a directory loader backed by registry.
func NewDirectoryLoader(registry driven.LoaderRegistry) *DirectoryLoader {
	return &DirectoryLoader{registry: registry}
}

// LoadDir walks dir in lexical order and returns the Documents of every supported file.
//
// Hidden files and directories are skipped. When include is non-empty, a file is
// loaded only if a pattern matches its base name or its slash-separated path
// relative to dir. Unsupported or unreadable files are skipped with a warning.
// A missing directory is a LoadError; an empty result is not an error here.
func (d *DirectoryLoader) LoadDir(ctx context.Context, dir string, include []string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &domain.LoadError{Path: dir, Reason: "cannot access corpus directory", Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.LoadError{Path: dir, Reason: "not a directory"}
	}

	for _, pattern := range include {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: include pattern %q: %w", domain.ErrInvalidInput, pattern, err)
		}
	}

	logger.Section("Load corpus")

	var docs []domain.Document
	files := 0

	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			logger.Warn("skipping %s: %v", path, walkErr)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		rel, _ := filepath.Rel(dir, path)
		if !matchesAny(include, name, filepath.ToSlash(rel)) {
			logger.Debug("excluded %s", rel)
			return nil
		}

		loader, err := d.registry.LoaderFor(path)
		if err != nil {
			logger.Warn("skipping %s: %v", rel, err)
			return nil
		}

		loaded, err := loader.Load(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("skipping %s: %v", rel, err)
			return nil
		}

		files++
		logger.Debug("%s: %d documents (%s)", rel, len(loaded), loader.Name())
		for i := range loaded {
			docs = append(docs, finalise(loaded[i], loader.Name(), path))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.LoadError{Path: dir, Reason: "walk failed", Err: err}
	}

	logger.Info("loaded %d documents from %d files in %s", len(docs), files, dir)
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// finalise fills the fields every loader shares.
func finalise(doc domain.Document, format, path string) domain.Document {
	if doc.Source == "" {
		doc.Source = path
	}
	if doc.ID == "" {
		doc.ID = DocumentID(doc.Source)
	}
	if doc.Format == "" {
		doc.Format = format
	}
	if doc.Title == "" {
		doc.Title = TitleFromPath(path)
	}
	return doc
}

// DocumentID derives a stable document ID from its source.
func DocumentID(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

// TitleFromPath turns a file name into a readable title.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

func matchesAny(patterns []string, name, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}
	return false
}
