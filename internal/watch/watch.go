// Package watch reloads a story file when it changes on disk.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/storygraph/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Watcher calls onChange once per burst of writes to the watched files.
//
// The parent directory is watched instead of the file itself, so editors
// that save by renaming a temporary file over the original keep working.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	files    map[string]struct{}
	done     chan struct{}
}

// New starts watching paths. onChange runs on a timer goroutine; GUI callers
// must hand the work over to their event loop.
func New(paths []string, delay time.Duration, onChange func()) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		files:   make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Join(err, fw.Close())
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		slog.Debug("adding path to FS watcher", slog.String("path", dir))
		if err := fw.Add(dir); err != nil {
			err := errors.Join(err, fw.Close())
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.debounce = debounce.New(delay, onChange)
	go w.loop(fw)
	return w, nil
}

// Close stops the watcher and drops any pending reload.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	w.debounce.Stop()
	err := w.watcher.Close()
	w.watcher = nil
	<-w.done
	return err
}

func (w *Watcher) loop(fw *fsnotify.Watcher) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.debounce.Trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if shouldIgnore(ev.Name) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

func shouldIgnore(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".swp", ".swx", ".tmp", ".lock":
		return true
	}
	return false
}
