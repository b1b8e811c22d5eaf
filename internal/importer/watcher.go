package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches floorplan-drop directories and feeds matching files to the
// importer. Rapid editor saves are debounced so a half-written file is not
// imported.
type Watcher struct {
	importer   *Importer
	roots      []string
	extensions []string
	debounce   time.Duration
	logger     *zap.Logger

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	started     bool
	stopOnce    sync.Once
	done        chan struct{}
}

// NewWatcher creates a watcher over roots. extensions filter which files are
// imported (empty = all).
func NewWatcher(im *Importer, roots, extensions []string, logger *zap.Logger) *Watcher {
	return &Watcher{
		importer:    im,
		roots:       roots,
		extensions:  extensions,
		debounce:    defaultDebounce,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	for _, root := range w.roots {
		if err := fsw.Add(root); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("dir", root), zap.Error(err))
		}
	}

	go w.loop(ctx)
	return nil
}

// SyncExistingFiles imports every matching file already present in the
// watched directories, so a restart picks up files dropped while down.
func (w *Watcher) SyncExistingFiles(ctx context.Context) {
	for _, root := range w.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			w.logger.Warn("failed to read watch directory", zap.String("dir", root), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(root, e.Name())
			if !w.matches(path) {
				continue
			}
			if err := w.importer.ImportFile(ctx, path); err != nil {
				w.logger.Warn("sync import failed", zap.String("file", path), zap.Error(err))
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		for _, t := range w.debounceMap {
			t.Stop()
		}
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.scheduleImport(ctx, event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := w.importer.RemoveFile(ctx, event.Name); err != nil {
			w.logger.Warn("remove failed", zap.String("file", event.Name), zap.Error(err))
		}
	}
}

// scheduleImport (re)arms the per-file debounce timer.
func (w *Watcher) scheduleImport(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		if err := w.importer.ImportFile(ctx, path); err != nil {
			w.logger.Warn("import failed", zap.String("file", path), zap.Error(err))
		}
	})
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
