package serve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

const debounceWindow = 300 * time.Millisecond

// watcher turns filesystem events under the content dir into rebuild
// requests. Bursts collapse through a debounce window, and markdown events
// whose content fingerprint did not move are suppressed entirely.
type watcher struct {
	fsw     *fsnotify.Watcher
	prints  *fingerprintIndex
	request func()

	mu    sync.Mutex
	timer *time.Timer
}

// newWatcher watches contentDir recursively. request is invoked (debounced)
// whenever a relevant change is seen.
func newWatcher(contentDir string, prints *fingerprintIndex, request func()) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to create filesystem watcher")
	}
	if err := addDirsRecursive(fsw, contentDir); err != nil {
		_ = fsw.Close()
		return nil, siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to watch content directory").
			WithContext("path", contentDir)
	}
	return &watcher{fsw: fsw, prints: prints, request: request}, nil
}

// run consumes watcher events until the context ends.
func (w *watcher) run(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *watcher) handleEvent(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}

	// New directories must join the watch before their contents change.
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(w.fsw, ev.Name)
		}
	}

	if filepath.Ext(ev.Name) == ".md" && !w.prints.Changed(ev.Name) {
		slog.Debug("Fingerprint unchanged; skipping rebuild", logfields.Path(ev.Name))
		return
	}

	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// trigger requests a rebuild after the debounce window; further events within
// the window reset it.
func (w *watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceWindow, w.request)
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if err := fsw.Add(path); err != nil {
				slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters events that never change the generated site:
// hidden files, editor swap and backup files, OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
