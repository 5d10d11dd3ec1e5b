// Package watch re-runs a callback when a script file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a file must stay quiet before the callback runs.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches script files. Editors often save by renaming a temporary
// file over the original, so the parent directory is watched and events are
// matched by path.
type Watcher struct {
	w        *fsnotify.Watcher
	log      logrus.FieldLogger
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]func(string)
	timers map[string]*time.Timer
}

// New returns a Watcher that waits debounce after the last change to a file
// before calling back. A non-positive debounce selects DefaultDebounce.
func New(debounce time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{
		w:        w,
		log:      log,
		debounce: debounce,
		files:    make(map[string]func(string)),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add registers fn to run when file changes.
func (fw *Watcher) Add(file string, fn func(path string)) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", file, err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch: %s: %w", abs, err)
	}
	fw.files[abs] = fn
	return nil
}

// Run dispatches change events until ctx is done, then closes the watcher.
func (fw *Watcher) Run(ctx context.Context) error {
	defer fw.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fw.changed(ev.Name)
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.log.WithError(err).Warn("file watcher error")
		}
	}
}

func (fw *Watcher) changed(name string) {
	name = filepath.Clean(name)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fn, ok := fw.files[name]
	if !ok {
		return
	}
	if t, ok := fw.timers[name]; ok {
		t.Stop()
	}
	fw.timers[name] = time.AfterFunc(fw.debounce, func() { fn(name) })
}

func (fw *Watcher) close() {
	fw.mu.Lock()
	for _, t := range fw.timers {
		t.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()

	if err := fw.w.Close(); err != nil {
		fw.log.WithError(err).Debug("closing file watcher")
	}
}
