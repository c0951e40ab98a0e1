// Package watcher reports changes to the files rule generation depends on.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ohare93/rulegen/internal/pkgmanager"
)

// EventType represents the type of file change event
type EventType int

const (
	LockfileChanged EventType = iota
	ManifestChanged
	WorkspaceChanged
	ConfigChanged
	MembersChanged
)

func (t EventType) String() string {
	switch t {
	case LockfileChanged:
		return "lockfile"
	case ManifestChanged:
		return "manifest"
	case WorkspaceChanged:
		return "workspace"
	case ConfigChanged:
		return "config"
	case MembersChanged:
		return "members"
	default:
		return "unknown"
	}
}

// Event represents a file change event
type Event struct {
	Type EventType
	Path string
}

// Watcher watches repository directories for marker file changes
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Event
	Errors  chan error
	done    chan struct{}
	mu      sync.Mutex
	running bool
	watched map[string]bool
	parents map[string]bool // Directories whose new subdirectories may be members
}

// New creates a new file watcher
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsWatcher,
		Events:  make(chan Event, 100),
		Errors:  make(chan error, 10),
		done:    make(chan struct{}),
		watched: make(map[string]bool),
		parents: make(map[string]bool),
	}, nil
}

// WatchDir adds a directory whose marker files should be observed.
// Directories already watched are ignored.
func (w *Watcher) WatchDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	w.watched[dir] = true
	return nil
}

// WatchParent watches dir like WatchDir and also reports subdirectories
// created in it, or watched subdirectories removed from it, as MembersChanged.
func (w *Watcher) WatchParent(dir string) error {
	if err := w.WatchDir(dir); err != nil {
		return err
	}
	w.mu.Lock()
	w.parents[dir] = true
	w.mu.Unlock()
	return nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.eventLoop()
}

// eventLoop processes file system events
func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Lockfiles are often replaced (rename) or deleted during installs
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			e := w.memberEvent(event)
			if e == nil {
				e = classifyEvent(event.Name)
			}
			if e != nil {
				// Non-blocking send
				select {
				case w.Events <- *e:
				default:
					// Channel full, skip event
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// memberEvent reports directories appearing in or leaving a parent directory.
func (w *Watcher) memberEvent(event fsnotify.Event) *Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.parents[filepath.Dir(event.Name)] {
		return nil
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return nil
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if !w.watched[event.Name] {
			return nil
		}
		// Forget it so a recreated directory is added again.
		delete(w.watched, event.Name)
		delete(w.parents, event.Name)
	default:
		return nil
	}
	return &Event{Type: MembersChanged, Path: event.Name}
}

// classifyEvent determines the event type based on the file path
func classifyEvent(path string) *Event {
	base := filepath.Base(path)

	switch {
	case pkgmanager.IsMarker(base):
		return &Event{Type: LockfileChanged, Path: path}
	case base == "package.json":
		return &Event{Type: ManifestChanged, Path: path}
	case base == "pnpm-workspace.yaml" || base == "deno.json":
		return &Event{Type: WorkspaceChanged, Path: path}
	case base == ".rulegen.yaml":
		return &Event{Type: ConfigChanged, Path: path}
	}
	return nil
}

// Run calls fn once per burst of events until ctx is cancelled. Events that
// arrive within debounce of each other are coalesced into one call that
// receives the last event of the burst.
func (w *Watcher) Run(ctx context.Context, debounce time.Duration, fn func(Event)) error {
	w.Start()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending *Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e := <-w.Events:
			pending = &e
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending != nil {
				fn(*pending)
				pending = nil
			}

		case err := <-w.Errors:
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	default:
	}

	close(w.done)
	w.running = false
	return w.watcher.Close()
}

// Close is an alias for Stop
func (w *Watcher) Close() error {
	return w.Stop()
}
