// Package watch re-runs Refresh when the load-order document is edited
// outside of modsync, for example by the in-game mod manager.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/engine"
)

// DefaultDebounce is how long the document must stay quiet before a
// refresh runs.
const DefaultDebounce = 500 * time.Millisecond

// Refresher is what the watcher drives.
type Refresher interface {
	// DocumentChanged reports whether the document differs from what
	// modsync itself last wrote.
	DocumentChanged(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) (*engine.Result, error)
}

// Callback is called after every refresh the watcher ran.
type Callback func(res *engine.Result, err error)

// Watch watches the directory holding docPath and runs a debounced
// Refresh after the document is created, written or replaced. It returns
// when ctx is cancelled.
func Watch(ctx context.Context, docPath string, r Refresher, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(docPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(docPath)
	logger.Info("watcher: started", slog.String("path", docPath))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			refresh(ctx, r, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("watcher: document event", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func refresh(ctx context.Context, r Refresher, logger *slog.Logger, cb Callback) {
	changed, err := r.DocumentChanged(ctx)
	if err != nil {
		logger.Warn("watcher: checksum failed", slog.String("error", err.Error()))
		return
	}
	if !changed {
		logger.Debug("watcher: document unchanged since last write")
		return
	}

	res, err := r.Refresh(ctx)
	switch {
	case err == nil:
		logger.Info("watcher: refreshed", slog.String("outcome", res.Outcome.String()), slog.String("result", res.Message))
	case apperr.IsOperational(err):
		logger.Warn("watcher: refresh skipped", slog.String("error", err.Error()))
	default:
		logger.Error("watcher: refresh failed", slog.String("error", err.Error()))
	}
	if cb != nil {
		cb(res, err)
	}
}
