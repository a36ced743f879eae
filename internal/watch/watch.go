// Package watch reloads the vault when its files change on disk, for example
// when another process or a synced folder writes them.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an atomic write produces.
const DefaultDebounce = 200 * time.Millisecond

// Reloader re-reads state after an external change.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watch starts an fsnotify watcher on root and calls r.Reload once the files
// named by keys settle after a change. It blocks until ctx is cancelled.
//
// Writes made by this process are reported too; Reload detects that nothing
// changed by checksum and does nothing.
func Watch(ctx context.Context, root string, keys []string, r Reloader, debounce time.Duration, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the files: atomic renames replace the inode.
	if err := w.Add(root); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Any("keys", keys))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := r.Reload(ctx); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: reloaded")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !slices.Contains(keys, filepath.Base(ev.Name)) {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			scheduleReload()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
