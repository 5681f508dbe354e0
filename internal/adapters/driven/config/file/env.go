package file

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragkit/internal/logger"
)

// LoadEnv loads .env files into the process environment.
// Variables already set are never overridden, so the shell wins over the file.
// Missing files are skipped; the return value lists the files that were read.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		logger.Debug("loaded environment from %s", p)
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// DefaultEnvFiles returns the .env lookup order: working directory, then ~/.ragkit.
func DefaultEnvFiles() []string {
	files := []string{".env"}
	if dir, err := DefaultConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, ".env"))
	}
	return files
}
