package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// settleDelay coalesces the burst of events editors produce for a single save.
const settleDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and calls fn with each configuration that loads and
// validates. Invalid edits are logged and skipped. The parent directory is watched so saves
// that replace the file are seen. Watch blocks until ctx is done.
//
// Parameters:
//   - ctx: stops the watcher when done
//   - path: the configuration file
//   - fn: called with every successfully reloaded configuration
//
// Returns:
//   - error: an error if the watcher could not start; nil once ctx is done
func Watch(ctx context.Context, path string, fn func(Config)) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config: expand %q: %w", path, err)
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	logger := common.Logger()
	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settleDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("[Config] watcher error", "path", path, "error", err)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("[Config] reload skipped", "path", path, "error", err)
				continue
			}
			logger.Info("[Config] reloaded", "path", path)
			fn(cfg)
		}
	}
}
