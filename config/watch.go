package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to fn. The
// parent directory is watched so editors that replace the file on save are
// picked up too. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	go func() {
		defer w.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()
		defer timer.Stop()

		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(debounce)

			case <-timer.C:
				cfg, err := LoadFile(path)
				if err == nil {
					err = cfg.Validate()
				}
				fn(cfg, err)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(nil, fmt.Errorf("config watcher: %w", err))
			}
		}
	}()
	return nil
}
