// Package watcher feeds newly written candidate files into the redaction
// pipeline once they have been quiet for a debounce interval. Editors and
// scanners write files in bursts; redacting a half-written file produces
// garbage, so nothing is handed off until the burst settles.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/cleanse/internal/batch"
)

// DefaultQuietPeriod is how long a file must stay unchanged before it is
// handed to the handler.
const DefaultQuietPeriod = 2 * time.Second

// ErrClosed is returned for operations on a closed watcher.
var ErrClosed = errors.New("watcher: closed")

// Handler receives the batch of settled files. Paths are sorted and
// deduplicated; a path appears once per quiet period no matter how many
// events it produced.
type Handler func(paths []string)

// Watcher watches directories recursively for candidate files.
type Watcher struct {
	fs      *fsnotify.Watcher
	log     *log.Logger
	handler Handler
	quiet   time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	watched map[string]bool
	closed  bool
}

// New builds a watcher; quiet <= 0 means DefaultQuietPeriod.
func New(handler Handler, logger *log.Logger, quiet time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		fs:      fsw,
		log:     logger,
		handler: handler,
		quiet:   quiet,
		pending: make(map[string]struct{}),
		watched: make(map[string]bool),
	}, nil
}

// Add watches dir and every subdirectory under it. Hidden directories are
// skipped.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != abs {
			return filepath.SkipDir
		}
		if w.watched[path] {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn("cannot watch directory", "dir", path, "err", err)
			return nil
		}
		w.watched[path] = true
		return nil
	})
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.accept(ev) {
				timer.Reset(w.quiet)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "err", err)
		case <-timer.C:
			w.flush()
		}
	}
}

// accept records an event, returning true when the debounce timer should
// restart. New directories are added to the watch; new or rewritten
// candidate files go on the pending set.
func (w *Watcher) accept(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return false
	}

	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if ev.Op.Has(fsnotify.Create) {
			if err := w.Add(ev.Name); err != nil && !errors.Is(err, ErrClosed) {
				w.log.Warn("cannot watch new directory", "dir", ev.Name, "err", err)
			}
		}
		return false
	}

	if !batch.IsCandidate(ev.Name) {
		return false
	}

	w.mu.Lock()
	w.pending[ev.Name] = struct{}{}
	w.mu.Unlock()
	return true
}

// flush hands the settled files to the handler.
func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	w.log.Debug("flushing settled files", "count", len(paths))
	if w.handler != nil {
		w.handler(paths)
	}
}

// Close stops watching. Pending unflushed files are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}
