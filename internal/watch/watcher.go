package watch

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"fasmbook/internal/util"
)

// Watcher follows the book directory and broadcasts chapter changes.
// fsnotify is not recursive, so every directory is registered up front
// and new ones are added as they appear.
type Watcher struct {
	rootAbs string
	hub     *Hub
	log     *slog.Logger
	w       *fsnotify.Watcher
	done    chan struct{}
}

func NewWatcher(rootAbs string, hub *Hub, log *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ww := &Watcher{rootAbs: rootAbs, hub: hub, log: log, w: w, done: make(chan struct{})}

	err = filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" {
				return fs.SkipDir
			}
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	go ww.loop()
	return ww, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.w.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// A new directory may hold future chapters; start watching it.
	if ev.Op&fsnotify.Create != 0 {
		if st, err := util.Stat(ev.Name); err == nil && st.IsDir() {
			_ = w.w.Add(ev.Name)
			w.hub.Broadcast(Event{Type: "tree-updated"})
			return
		}
	}

	relOS, err := filepath.Rel(w.rootAbs, ev.Name)
	if err != nil {
		return
	}
	rel := filepath.ToSlash(relOS)
	if !util.IsMarkdownFileName(filepath.Base(ev.Name)) {
		return
	}

	w.hub.Broadcast(Event{Type: "chapter-changed", Path: rel})
	if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.hub.Broadcast(Event{Type: "tree-updated"})
	}
}
