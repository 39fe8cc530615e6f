package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// NotifyChanges watches the top level of dir and signals after new or rewritten files with a
// supported extension settle for debounce. Signals coalesce; the channel closes when ctx ends
// or the underlying watcher fails.
func NotifyChanges(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		logger.Error("failed to watch inbox", "inbox", dir, "error", err)
		_ = w.Close()
		return nil, err
	}

	var (
		mu    sync.Mutex
		done  bool
		timer *time.Timer
	)
	out := make(chan struct{}, 1)
	signal := func() {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		select {
		case out <- struct{}{}:
		default:
		}
	}

	go func() {
		defer func() {
			mu.Lock()
			done = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			if err := w.Close(); err != nil {
				logger.Warn("failed to close fsnotify watcher", "error", err)
			}
			close(out)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || IsHidden(e.Name) || !AllowedExt(filepath.Ext(e.Name)) {
					continue
				}
				logger.Debug("inbox change", "path", e.Name, "op", e.Op.String())
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, signal)
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				return
			}
		}
	}()
	return out, nil
}
