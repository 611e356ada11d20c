package combos

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the combo dataset file and invalidates a CachedLoader
// when the file is rewritten, so long-lived sessions pick up curation
// updates without a restart.
type Watcher struct {
	path     string
	loader   *CachedLoader
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// WatcherConfig configures a dataset watcher.
type WatcherConfig struct {
	Path   string        // dataset file path
	Loader *CachedLoader // cache to invalidate on change
	Logger *slog.Logger  // defaults to slog.Default()

	// PollInterval is a backup re-check in case file events are missed.
	// Default: 30s. Set negative to disable polling.
	PollInterval time.Duration
}

// NewWatcher creates and starts a dataset watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.PollInterval == 0 {
		config.PollInterval = 30 * time.Second
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(config.Path); err != nil {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close watcher after add error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to watch combo dataset: %w", err)
	}

	w := &Watcher{
		path:     config.Path,
		loader:   config.Loader,
		logger:   config.Logger,
		watcher:  fsWatcher,
		stopChan: make(chan struct{}),
	}

	go w.run(config.PollInterval)
	return w, nil
}

func (w *Watcher) run(pollInterval time.Duration) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	if pollInterval > 0 {
		ticker = time.NewTicker(pollInterval)
		tick = ticker.C
		defer ticker.Stop()
	}

	var lastMod time.Time

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug("combo dataset changed, invalidating cache", "path", w.path)
				w.loader.Invalidate()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("combo dataset watcher error", "error", err)
		case <-tick:
			// Backup polling in case file events are missed.
			info, err := statFile(w.path)
			if err != nil {
				continue
			}
			if !lastMod.IsZero() && info.After(lastMod) {
				w.loader.Invalidate()
			}
			lastMod = info
		}
	}
}

func statFile(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	return nil
}
