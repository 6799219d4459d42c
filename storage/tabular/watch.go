package tabular

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core"
)

// Watcher notifies subscribers when a store file is changed on disk, by this process or by another one
// (e.g. a spreadsheet editor saving the workbook).
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  core.Logger

	mutex sync.Mutex
	subs    map[string][]func()
	dirs    map[string]bool
	running bool
	done    chan struct{}
}

func NewWatcher(logger core.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	return &Watcher{
		watcher: w,
		logger:  logger,
		subs:    make(map[string][]func()),
		dirs:    make(map[string]bool),
		done:    make(chan struct{}),
	}, nil
}

// Watch calls onChange whenever the file at path is written, created, renamed or removed.
// The parent directory is watched since writes replace the file.
func (w *Watcher) Watch(path string, onChange func()) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolving watched path")
	}
	dir := filepath.Dir(path)

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.dirs[dir] {
		if err = w.watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
		w.dirs[dir] = true
	}
	w.subs[path] = append(w.subs[path], onChange)
	return nil
}

// Start dispatches events in a goroutine until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", err)
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return
	}
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mutex.Lock()
	subs := append([]func(){}, w.subs[path]...)
	w.mutex.Unlock()

	if len(subs) > 0 {
		w.logger.Debug("store file changed", map[string]interface{}{"path": path, "op": ev.Op.String()})
	}
	for _, fn := range subs {
		fn()
	}
}

// Close stops the watcher and waits for the dispatch goroutine to return.
func (w *Watcher) Close() error {
	err := w.watcher.Close()

	w.mutex.Lock()
	running := w.running
	w.mutex.Unlock()
	if running {
		<-w.done
	}
	return err
}
