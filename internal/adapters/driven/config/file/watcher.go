package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// Watch re-reads the config file whenever it changes on disk, so settings
// edits take effect without a restart. The watch is placed on the config
// directory rather than the file itself: editors that write via
// rename-and-replace would otherwise drop the watch on the first save.
//
// Watch returns once the watcher is installed; reloading continues in the
// background until ctx is cancelled.
func (s *ConfigStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleFsEvent(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error: %v", err)
			}
		}
	}()

	return nil
}

// handleFsEvent reloads the store for writes to the config file and ignores
// everything else (other files in the directory, chmods, removals).
func (s *ConfigStore) handleFsEvent(event fsnotify.Event) {
	if event.Name != s.filePath {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	if err := s.Load(); err != nil {
		logger.Warn("config reload failed, keeping previous settings: %v", err)
		return
	}
	logger.Debug("config reloaded from %s", s.filePath)
}
