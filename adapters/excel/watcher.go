package excel

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gospc/internal"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor emits on save
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls onChange after the data file is written, created or renamed
// into place. The parent directory is watched so atomic saves are seen.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	fs       *fsnotify.Watcher
	logger   *internal.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: debounce,
		logger:   internal.DefaultLogger.With("Watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.fs = fs

	w.wg.Add(1)
	go w.run()

	w.logger.Info("watching %s", w.path)
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("%s on %s", event.Op, event.Name)
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		case <-timer.C:
			w.onChange()
		case <-w.stopCh:
			return
		}
	}
}

// Stop halts the watcher
func (w *Watcher) Stop() error {
	if w.fs == nil {
		return nil
	}
	close(w.stopCh)
	err := w.fs.Close()
	w.wg.Wait()
	w.fs = nil
	return err
}
