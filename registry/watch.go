package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates loaded handlers when files under the handler root
// change on disk
type Watcher struct {
	// OnChange, when set before Start, is called with each invalidated file
	OnChange func(file string)

	registry *Registry
	root     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher watches root, the directory the registry file system is rooted
// at, and all of its sub-directories
func NewWatcher(registry *Registry, root string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		registry: registry,
		root:     root,
		watcher:  fw,
		logger:   logger,
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start processes file events until ctx is done or the watcher is closed
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("handler watcher error", zap.Error(err))
			}
		}
	}()
}

// Close stops watching and waits for the event loop to exit
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	// Any file of a Go package may declare handler methods
	if !strings.HasSuffix(rel, "."+w.registry.Extension()) && !strings.HasSuffix(rel, ".go") {
		return
	}

	w.logger.Info("handler file changed",
		zap.String("file", rel),
		zap.String("op", event.Op.String()))
	w.registry.Invalidate(rel)
	if w.OnChange != nil {
		w.OnChange(rel)
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// Skip hidden directories
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}
