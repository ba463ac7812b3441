// Package watcher re-runs the manifest update whenever a tracked data file
// changes on disk. It is the local authoring loop mirroring what CI does on
// push.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor write bursts into one update run.
const debounce = 300 * time.Millisecond

// Watch starts an fsnotify watcher over the directories containing the
// tracked files and calls apply (debounced) after any of them changes.
// paths are tracked data file paths relative to root. Watch blocks until
// ctx is cancelled.
func Watch(ctx context.Context, root string, paths []string, logger *slog.Logger, apply func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	tracked := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs := filepath.Join(root, p)
		tracked[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("tracked", len(tracked)))

	var applyTimer *time.Timer
	var applyCh <-chan time.Time

	scheduleApply := func() {
		if applyTimer == nil {
			applyTimer = time.NewTimer(debounce)
			applyCh = applyTimer.C
		} else {
			applyTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if applyTimer != nil {
				applyTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-applyCh:
			apply()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ok := tracked[ev.Name]; !ok {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("watcher: tracked file changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			scheduleApply()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
