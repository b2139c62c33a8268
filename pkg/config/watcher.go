package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a configuration file for changes. Budget configs are
// fixed for the lifetime of the process, so the watcher does not hot-swap
// anything: it re-loads and re-validates the changed file, reports the
// result through the callback, and leaves restarting to the operator.
// It implements debouncing to prevent event storms from editors that
// write in several steps.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig contains configuration for the config file watcher.
type WatcherConfig struct {
	// Path is the configuration file to watch.
	Path string

	// DebounceInterval is the quiet period required after the last file
	// event before the file is re-read (default: 250ms).
	DebounceInterval time.Duration
}

// NewWatcher creates a watcher for the given configuration file. The
// file's parent directory is watched so that atomic rename-replace
// writes are seen.
func NewWatcher(config WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("watcher path is required")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     config.Path,
		watcher:  fsw,
		logger:   logger.With("component", "config.watcher"),
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching and blocks until the context is cancelled or
// Stop is called. Each settled change re-loads the file; onChange
// receives the freshly validated Config, or the load error if the new
// file is broken.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config, error)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	w.logger.Info("configuration file watcher started",
		"path", w.path,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("configuration file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("configuration file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				cfg, err := LoadConfigWithEnvOverrides(w.path)
				if err != nil {
					w.logger.Error("changed configuration file is invalid",
						"path", w.path,
						"error", err,
					)
				} else {
					w.logger.Info("configuration file changed; restart to apply",
						"path", w.path,
					)
				}
				if onChange != nil {
					onChange(cfg, err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration file watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent filters events down to writes of the watched file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path)
}

// debouncer collects rapid events and runs the callback only after a
// quiet period.
type debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger arms the debouncer with a new event. The callback runs after
// the debounce interval if no new events arrive in the meantime.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
