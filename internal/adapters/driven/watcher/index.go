// Package watcher reloads a served index when another process rebuilds it.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragkit/internal/logger"
)

// DefaultDebounce is how long the directory must be quiet before a reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the trigger files change.
type ReloadFunc func(ctx context.Context) error

// Config holds configuration for an IndexWatcher.
type Config struct {
	// Dir is the index directory to watch (required).
	Dir string

	// Triggers are the base names whose creation or modification schedules a reload.
	// The artifact written last is the right trigger.
	Triggers []string

	// Debounce coalesces bursts of events (default: 500ms).
	Debounce time.Duration
}

// IndexWatcher watches an index directory with fsnotify.
type IndexWatcher struct {
	cfg     Config
	reload  ReloadFunc
	watcher *fsnotify.Watcher

	closeOnce sync.Once
}

// New creates a watcher on cfg.Dir. Call Run to start delivering reloads.
func New(cfg Config, reload ReloadFunc) (*IndexWatcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watcher: directory is required")
	}
	if reload == nil {
		return nil, errors.New("watcher: reload function is required")
	}
	if len(cfg.Triggers) == 0 {
		return nil, errors.New("watcher: at least one trigger file is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watcher: watch %s: %w", cfg.Dir, err)
	}

	return &IndexWatcher{cfg: cfg, reload: reload, watcher: w}, nil
}

// Run delivers reloads until ctx is done. Reload failures are logged and the
// watcher keeps running, so a half-written rebuild is retried on the next event.
func (w *IndexWatcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	logger.Info("Watching %s for index rebuilds", w.cfg.Dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.isTrigger(event) {
				continue
			}
			logger.Debug("index change: %s %s", event.Op, event.Name)
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				logger.Warn("index reload failed: %v", err)
			}
		}
	}
}

func (w *IndexWatcher) isTrigger(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(w.cfg.Triggers, filepath.Base(event.Name))
}

// Close stops watching. It is safe to call more than once.
func (w *IndexWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}
