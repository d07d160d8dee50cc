package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/starford/modsync/internal/modservice"
)

// NewConsoleHandler returns a colored console handler. With showLevel off
// the level prefix is dropped so lines read like plain messages.
func NewConsoleHandler(w io.Writer, level slog.Level, showLevel bool) slog.Handler {
	l := log.NewWithOptions(w, log.Options{
		Level: log.Level(level),
	})
	if !showLevel {
		styles := log.DefaultStyles()
		for _, lvl := range []log.Level{log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel, log.FatalLevel} {
			delete(styles.Levels, lvl)
		}
		l.SetStyles(styles)
	}
	return l
}

// logFileName names the log file of the given day.
func logFileName(day time.Time) string {
	return fmt.Sprintf("modsync-%s.log", day.Format(time.DateOnly))
}

// openLogFile opens today's JSON log file in <dataDir>/logs for appending.
func openLogFile(dataDir string, now time.Time) (*os.File, error) {
	dir := filepath.Join(dataDir, modservice.LogsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName(now)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// newLogger builds the console and file logger. The returned closer
// closes the log file.
func newLogger(cfg *Config, console io.Writer, now time.Time) (*slog.Logger, io.Closer, error) {
	f, err := openLogFile(cfg.Paths.DataDir, now)
	if err != nil {
		return nil, nil, err
	}
	h := fanout{
		NewConsoleHandler(console, cfg.Logging.LogLevel, cfg.Logging.LogLevelInStdout),
		slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	return slog.New(h), f, nil
}
