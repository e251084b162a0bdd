package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// ReloadHandler receives the outcome of every reload. It runs on the
// watcher's goroutine.
type ReloadHandler func(res *Result, err error)

// Watcher reloads one graph file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself, so saves that
// replace the file through a rename are still seen.
type Watcher struct {
	loader   *Loader
	path     string
	handler  ReloadHandler
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu       sync.Mutex
	watching bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher prepares a watcher for path. Call Start to begin.
func NewWatcher(loader *Loader, path string, debounce time.Duration, handler ReloadHandler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		loader:   loader,
		path:     abs,
		handler:  handler,
		debounce: debounce,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the watch is registered; events
// are processed until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	go w.loop(ctx)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			res, err := w.loader.LoadFile(w.path)
			w.handler(res, err)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.loader.logger().Warn("file watcher error", "path", w.path, "error", err)
		}
	}
}
