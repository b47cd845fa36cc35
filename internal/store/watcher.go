package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const refreshDebounce = 150 * time.Millisecond

// WatchFile follows the database file for writes made by other processes
// (the seed and mcp commands, a second server) and re-notifies the paths
// they changed. It blocks until ctx is cancelled.
func (s *SQLite) WatchFile(ctx context.Context, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(s.file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("store watcher: started", slog.String("file", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(refreshDebounce)
			fire = timer.C
			return
		}
		timer.Reset(refreshDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("store watcher: stopped")
			return nil

		case <-fire:
			changed, err := s.Refresh(ctx)
			if err != nil {
				logger.Warn("store watcher: refresh failed", slog.String("error", err.Error()))
				continue
			}
			if len(changed) > 0 {
				logger.Debug("store watcher: external change", slog.Any("paths", changed))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Matches the main file as well as its -wal and -shm companions.
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("store watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
