package i2c

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WaitForDevice blocks until the I2C device node exists, watching /dev
// for its creation. After modprobe the node appears asynchronously via
// udev; polling i2cdetect before it exists produces a spurious
// "no hardware" result.
func WaitForDevice(ctx context.Context, path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	// Re-check after the watch is armed; the node may have appeared in
	// between.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ev := <-watcher.Events:
			if ev.Name == path && ev.Op.Has(fsnotify.Create) {
				return nil
			}
		case err := <-watcher.Errors:
			return fmt.Errorf("watch error on %s: %w", path, err)
		case <-deadline.C:
			return fmt.Errorf("device %s did not appear within %s", path, timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
