package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventKind represents the type of file change event
type EventKind int

const (
	Added EventKind = iota
	Deleted
	Modified
)

// Letter returns the one-letter code used in change notices.
func (k EventKind) Letter() string {
	switch k {
	case Added:
		return "A"
	case Deleted:
		return "D"
	case Modified:
		return "M"
	default:
		return "?"
	}
}

// String returns the change kind as a word.
func (k EventKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Deleted:
		return "Deleted"
	case Modified:
		return "Modified"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event represents a file change event
type Event struct {
	Kind  EventKind
	Path  string
	IsDir bool // Directory added or removed; no file notice is due for these
}

// Options configures a Watcher.
type Options struct {
	// Ignore lists directory names skipped at any depth below the root.
	Ignore []string
}

// Watcher watches a directory tree for file changes. fsnotify only watches
// single directories, so every subdirectory gets its own watch and new
// subdirectories are added as they appear. Files present when the watcher
// is created produce no events.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	ignore  map[string]bool
	dirs    map[string]bool // owned by eventLoop once started
	Events  chan Event
	Errors  chan error
	done    chan struct{}
	mu      sync.Mutex
	running bool
	closed  bool
}

// New creates a watcher for the tree rooted at root
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root is not a directory: %s", root)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fsWatcher,
		root:    filepath.Clean(root),
		ignore:  make(map[string]bool, len(opts.Ignore)),
		dirs:    make(map[string]bool),
		Events:  make(chan Event, 100),
		Errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}
	for _, name := range opts.Ignore {
		w.ignore[name] = true
	}

	if err := w.addTree(w.root, nil); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// addTree watches dir and every non-ignored directory below it. When found
// is non-nil it receives each regular file discovered on the way.
func (w *Watcher) addTree(dir string, found func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Entries can vanish between the event and the walk
			if os.IsNotExist(err) && path != w.root {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != w.root && w.ignored(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.dirs[path] = true
			return nil
		}
		if found != nil && !w.ignored(path) {
			found(path)
		}
		return nil
	})
}

// ignored reports whether any path element below the root is ignored
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignore[part] {
			return true
		}
	}
	return false
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running || w.closed {
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
			for _, e := range w.classifyEvent(event) {
				select {
				case w.Events <- e:
				case <-w.done:
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-blocking error send
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// classifyEvent maps a raw fsnotify event onto change events, updating the
// set of watched directories on the way.
func (w *Watcher) classifyEvent(event fsnotify.Event) []Event {
	path := filepath.Clean(event.Name)
	if path == w.root || w.ignored(path) {
		return nil
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.dirs[path] {
			w.forgetTree(path)
			return []Event{{Kind: Deleted, Path: path, IsDir: true}}
		}
		return []Event{{Kind: Deleted, Path: path}}

	case event.Has(fsnotify.Create):
		info, err := os.Lstat(path)
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return []Event{{Kind: Added, Path: path}}
		}
		events := []Event{{Kind: Added, Path: path, IsDir: true}}
		// Files may land in the new directory before its watch exists
		err = w.addTree(path, func(file string) {
			events = append(events, Event{Kind: Added, Path: file})
		})
		if err != nil {
			w.sendError(err)
		}
		return events

	case event.Has(fsnotify.Write):
		if w.dirs[path] {
			return nil
		}
		return []Event{{Kind: Modified, Path: path}}
	}

	// Chmod only
	return nil
}

func (w *Watcher) forgetTree(dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range w.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.dirs, path)
			// Already gone for removed directories
			_ = w.watcher.Remove(path)
		}
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	close(w.done)
	w.running = false
	w.closed = true
	return w.watcher.Close()
}

// Close is an alias for Stop
func (w *Watcher) Close() error {
	return w.Stop()
}
