// Package watch reports changes to a fixed set of files.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long events must be quiet before a change fires.
const DefaultDebounce = 150 * time.Millisecond

// ErrNoFiles is returned by New when there is nothing to watch.
var ErrNoFiles = errors.New("watch: no files")

// Watcher watches the directories holding a set of files and reports,
// after a quiet period, that at least one of those files changed. Watching
// directories instead of files keeps working when an editor replaces a file
// by renaming over it.
type Watcher struct {
	files    map[string]bool // absolute paths
	debounce time.Duration
	logger   *log.Logger

	fsnotify  *fsnotify.Watcher
	closeOnce sync.Once
}

// New starts watching files. debounce <= 0 selects DefaultDebounce.
func New(files []string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]bool),
		debounce: debounce,
		logger:   logger,
		fsnotify: fw,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls onChange with the most recently changed file each time watched
// files settle after a burst of events. It blocks until ctx is done or the
// watcher fails, and closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.Close()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if !w.relevant(e) {
				continue
			}
			w.logger.Debug("file event", "path", e.Name, "op", e.Op.String())
			changed = e.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(changed)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
			return fmt.Errorf("watch: %w", err)
		}
	}
}

func (w *Watcher) relevant(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsnotify.Close() })
	return err
}
