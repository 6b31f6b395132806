// Package watcher turns raw filesystem notifications into debounced,
// coalesced batches of tree changes.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/ignore"
	"github.com/avitaltamir/projectable/internal/tree"
)

// DefaultDebounce is the window used when Options.Debounce is zero.
const DefaultDebounce = time.Second

// Options configures a Watcher.
type Options struct {
	// Debounce is the window over which events are collected before a
	// batch is delivered.
	Debounce time.Duration
	// Filter keeps ignored directories from being watched.
	Filter *ignore.Filter
	Log    logrus.FieldLogger
}

// Watcher watches a directory tree recursively. Batches are delivered on
// Events(); when the channel is full the batch is kept and merged with
// later events rather than dropped.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	filter   *ignore.Filter
	log      logrus.FieldLogger

	events    chan []tree.Change
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts watching root and every non-ignored directory below it.
func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:      fsw,
		root:     filepath.Clean(root),
		debounce: debounce,
		filter:   opts.Filter,
		log:      log.WithField("component", "watcher"),
		events:   make(chan []tree.Change, 1),
		done:     make(chan struct{}),
	}

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events returns the channel of coalesced batches. It is closed when the
// watcher stops, either through Close or because the underlying
// notification source went away.
func (w *Watcher) Events() <-chan []tree.Change {
	return w.events
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	w.wg.Wait()
	return err
}

// addRecursive registers dir and its subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	conf := fastwalk.Config{Follow: false}
	return fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are simply not watched
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.filter != nil && w.filter.Ignored(path, true) {
			return fastwalk.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.WithError(err).WithField("path", path).Debug("cannot watch directory")
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	pending := NewCoalescer()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false
	arm := func() {
		if !armed {
			timer.Reset(w.debounce)
			armed = true
		}
	}

	for {
		select {
		case <-w.done:
			timer.Stop()
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.log.Warn("notification channel closed")
				return
			}
			if ev.Op == 0 {
				continue
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := w.addRecursive(ev.Name); err != nil {
					w.log.WithError(err).WithField("path", ev.Name).Debug("cannot watch new directory")
				}
			}
			pending.Add(ev.Name, ev.Op)
			arm()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.log.Warn("notification error channel closed")
				return
			}
			w.log.WithError(err).Warn("watch error")

		case <-timer.C:
			armed = false
			batch := pending.Changes()
			if len(batch) == 0 {
				pending.Reset()
				continue
			}
			select {
			case w.events <- batch:
				pending.Reset()
			default:
				// consumer is behind; keep coalescing and try again
				arm()
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
