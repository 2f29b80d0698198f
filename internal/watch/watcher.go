// Package watch detects out-of-band edits to the file backend's record
// files and replays them into the SQLite backend, so hand-edited or
// externally written files do not silently diverge from the master.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	gosync "sync"

	"github.com/fsnotify/fsnotify"

	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Event is a change to one record file in a family directory.
type Event struct {
	// Kind is the entity family derived from the parent directory.
	Kind storage.Kind
	// ID is the record identifier derived from the filename.
	ID string
	// Op is the operation that occurred.
	Op storage.Op
}

// Watcher watches the file backend's family directories for record-file
// changes. It uses fsnotify for cross-platform file system monitoring.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	wg      gosync.WaitGroup
	mu      gosync.Mutex
	running bool
	kinds   map[string]storage.Kind // absolute dir -> family
}

// New creates a Watcher. The watcher must be started with Start before it
// emits events.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		kinds:   make(map[string]storage.Kind),
	}, nil
}

// Start begins watching the given family directories. The map keys are
// directory paths, the values the entity family each one holds.
func (w *Watcher) Start(dirs map[string]storage.Kind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	var added []string
	for path, kind := range dirs {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		if err := w.watcher.Add(abs); err != nil {
			for _, prev := range added {
				w.watcher.Remove(prev)
			}
			return fmt.Errorf("failed to watch directory %s: %w", abs, err)
		}
		added = append(added, abs)
		w.kinds[abs] = kind
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop stops watching and cleans up. It blocks until the event processing
// goroutine has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel that emits record-file change events.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel that emits watcher errors.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev, ok := w.convertEvent(event); ok {
				select {
				case w.events <- ev:
				case <-w.done:
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// convertEvent converts an fsnotify event to an Event. Returns ok=false for
// events that should be ignored (non-record files, chmod noise, files
// outside the watched families).
func (w *Watcher) convertEvent(event fsnotify.Event) (Event, bool) {
	if !strings.HasSuffix(event.Name, ".json") {
		return Event{}, false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return Event{}, false
	}
	kind, ok := w.kindFor(filepath.Dir(abs))
	if !ok {
		return Event{}, false
	}

	var op storage.Op
	switch {
	case event.Has(fsnotify.Create):
		op = storage.OpInsert
	case event.Has(fsnotify.Write):
		op = storage.OpUpdate
	case event.Has(fsnotify.Remove):
		op = storage.OpDelete
	case event.Has(fsnotify.Rename):
		// A rename away is a delete; the new name triggers its own create.
		op = storage.OpDelete
	default:
		return Event{}, false
	}

	return Event{
		Kind: kind,
		ID:   strings.TrimSuffix(filepath.Base(abs), ".json"),
		Op:   op,
	}, true
}

func (w *Watcher) kindFor(dir string) (storage.Kind, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kind, ok := w.kinds[dir]
	return kind, ok
}

// IsRunning reports whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
