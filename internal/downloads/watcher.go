package downloads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long a new file must stay quiet before it counts
// as finished.
const DefaultSettle = 500 * time.Millisecond

// partialSuffixes mark files browsers are still writing.
var partialSuffixes = []string{".part", ".crdownload", ".tmp", ".download"}

// IsPartial reports whether name looks like an in-progress download or a
// hidden scratch file.
func IsPartial(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return true
	}
	lower := strings.ToLower(base)
	for _, s := range partialSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// HandlerFunc receives download events. It may be called from several
// goroutines at once.
type HandlerFunc func(ctx context.Context, ev Event)

// Watcher reports files that appear in a download directory.
type Watcher struct {
	dir    string
	settle time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a Watcher for dir. A non-positive settle uses
// DefaultSettle.
func NewWatcher(dir string, settle time.Duration, log zerolog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:     dir,
		settle:  settle,
		log:     log,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches the directory until ctx is done. Each file created or
// renamed into place is reported once it has been quiet for the settle
// period and no partial sibling remains. Writes to files that were not
// created while watching are ignored.
func (w *Watcher) Run(ctx context.Context, handle HandlerFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info().Str("dir", w.dir).Msg("watching downloads")

	defer w.stopAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			w.handleFSEvent(ctx, ev, handle)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn().Err(err).Str("dir", w.dir).Msg("download events lost")
				continue
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("download watch error")
		}
	}
}

func (w *Watcher) handleFSEvent(ctx context.Context, ev fsnotify.Event, handle HandlerFunc) {
	if IsPartial(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create):
		w.schedule(ctx, ev.Name, handle)
	case ev.Has(fsnotify.Write):
		// Writes only extend a pending download; editing an existing
		// file is not one.
		if w.isPending(ev.Name) {
			w.schedule(ctx, ev.Name, handle)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(ev.Name)
	}
}

func (w *Watcher) isPending(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[path]
	return ok
}

// inProgress reports whether a partial sibling of path (path.part and
// friends) exists. Browsers create the final name as an empty placeholder
// and rename the partial file onto it when done, which arrives as a new
// Create.
func inProgress(path string) bool {
	for _, s := range partialSuffixes {
		if _, err := os.Lstat(path + s); err == nil {
			return true
		}
	}
	return false
}

// schedule (re)arms the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, handle HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.pending[path] != t {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if inProgress(path) {
			w.log.Debug().Str("path", path).Msg("download still in progress")
			return
		}
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return
		}
		exists := err == nil
		handle(ctx, Event{Path: path, Succeeded: true, Exists: &exists})
	})
	w.pending[path] = t
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
