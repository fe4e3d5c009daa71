// Package watch re-runs a callback whenever a config file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/san-kum/crystalsim/internal/logging"
)

const DefaultDebounce = 200 * time.Millisecond

type Config struct {
	// Path is the file to watch. Its directory is watched so that editors
	// which replace the file on save are still seen.
	Path string

	// Debounce collapses bursts of events into one callback.
	Debounce time.Duration

	// OnChange runs on the watcher goroutine; a slow callback delays the
	// next one rather than overlapping it.
	OnChange func(ctx context.Context, path string)

	Logger *slog.Logger
}

type Watcher struct {
	cfg     Config
	target  string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch: no path")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("watch: no change callback")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Noop()
	}

	target, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	return &Watcher{
		cfg:     cfg,
		target:  target,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Run blocks until ctx is canceled, calling OnChange once per debounced
// burst of writes to the watched file.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("watching config", "path", w.target, "debounce", w.cfg.Debounce)

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("config change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			w.cfg.OnChange(ctx, w.cfg.Path)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
