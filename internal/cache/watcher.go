package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates cache keys when their backing files change.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	keys    map[string][]string
	logger  *zap.Logger
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the directories of the given files. bindings maps a
// file path to the cache keys it feeds.
func NewWatcher(c *Cache, bindings map[string][]string, logger *zap.Logger) (*Watcher, error) {
	if c == nil {
		return nil, errors.New("cache: nil cache")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cache: create watcher: %w", err)
	}

	keys := make(map[string][]string, len(bindings))
	dirs := make(map[string]struct{})
	for path, bound := range bindings {
		clean := filepath.Clean(path)
		keys[clean] = append(keys[clean], bound...)
		dirs[filepath.Dir(clean)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("cache watcher cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	return &Watcher{
		cache:   c,
		watcher: fsw,
		keys:    keys,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Run processes file events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
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
			w.logger.Warn("cache watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	keys := w.keys[filepath.Clean(event.Name)]
	if len(keys) == 0 {
		return
	}
	w.cache.Invalidate(keys...)
	w.logger.Debug("cache invalidated by file change",
		zap.String("file", event.Name),
		zap.Strings("keys", keys),
	)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
