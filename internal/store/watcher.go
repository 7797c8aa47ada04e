package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// PreferenceWatcher watches the preference file for writes made by other
// processes and invokes a callback, typically theme.Resolver.Reload.
type PreferenceWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	onChange func()
	logger   *slog.Logger

	done    chan struct{}
	stopped chan struct{}
	mu      sync.Mutex
	running bool
}

// NewPreferenceWatcher creates a watcher for filePath.
func NewPreferenceWatcher(filePath string, onChange func(), logger *slog.Logger) (*PreferenceWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &PreferenceWatcher{
		watcher:  watcher,
		filePath: filePath,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start begins watching the file for changes.
func (pw *PreferenceWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return nil
	}

	// Watch the directory containing the file: Save replaces the file by
	// rename, which drops a watch on the file itself.
	dir := filepath.Dir(pw.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := pw.watcher.Add(dir); err != nil {
		return err
	}

	pw.running = true
	go pw.watch()

	pw.logger.Debug("preference watcher started", "path", pw.filePath)
	return nil
}

// watch is the main watch loop.
func (pw *PreferenceWatcher) watch() {
	defer close(pw.stopped)

	filename := filepath.Base(pw.filePath)

	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pw.logger.Debug("preference file changed", "file", pw.filePath, "op", event.Op.String())
				if pw.onChange != nil {
					pw.onChange()
				}
			}

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("preference watcher error", "error", err)

		case <-pw.done:
			return
		}
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (pw *PreferenceWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return pw.watcher.Close()
	}

	pw.running = false
	close(pw.done)
	err := pw.watcher.Close()
	<-pw.stopped

	pw.logger.Debug("preference watcher stopped")
	return err
}
