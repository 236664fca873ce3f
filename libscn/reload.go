package libscn

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"
)

// Watcher collects file changes on a background goroutine. The render thread
// picks them up with Drain, since GL objects can only be touched there.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	owners  map[string][]string
	dirs    map[string]bool
	pending map[string]bool
}

func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}
	w := &Watcher{
		watcher: fsw,
		done:    make(chan struct{}),
		owners:  map[string][]string{},
		dirs:    map[string]bool{},
		pending: map[string]bool{},
	}
	go w.run()
	return w, nil
}

// Watch reports name whenever one of files changes. The parent directories are
// watched rather than the files, so editors that save by renaming are seen too.
func (w *Watcher) Watch(name string, files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("could not watch %q: %w", file, err)
		}
		if !slices.Contains(w.owners[abs], name) {
			w.owners[abs] = append(w.owners[abs], name)
		}

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err = w.watcher.Add(dir); err != nil {
			return fmt.Errorf("could not watch directory %q: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.Notify(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher: %v", err)
		}
	}
}

// Notify marks every owner of file as changed.
func (w *Watcher) Notify(file string) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range w.owners[abs] {
		w.pending[name] = true
	}
}

// Drain returns the sorted names that changed since the last call.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(w.pending))
	for name := range w.pending {
		names = append(names, name)
	}
	w.pending = map[string]bool{}
	slices.Sort(names)
	return names
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
