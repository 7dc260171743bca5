package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a configuration file whenever it changes.
type Watcher struct {
	path     string
	logger   zerolog.Logger
	debounce time.Duration
	onChange func([]*Config)
}

// NewWatcher returns a watcher calling onChange with every configuration
// that loads successfully. Files that fail to load are logged and skipped.
func NewWatcher(path string, logger zerolog.Logger, onChange func([]*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &Watcher{path: abs, logger: logger, debounce: DefaultDebounce, onChange: onChange}, nil
}

// SetDebounce changes the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; atomic saves replace the file.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.logger.Info().Str("path", w.path).Msg("watching config file for changes")

	name := filepath.Base(w.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("config file changed")
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) reload() {
	cfgs, err := Load(w.path)
	if err != nil {
		w.logger.Error().Err(err).Msg("config reload failed")
		return
	}
	w.logger.Info().Int("configs", len(cfgs)).Msg("configuration reloaded")
	w.onChange(cfgs)
}
