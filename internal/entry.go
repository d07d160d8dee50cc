// Package internal wires configuration, logging, storage and the mod
// service into a runnable application.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/modsync/internal/journal"
	"github.com/starford/modsync/internal/mcpserver"
	"github.com/starford/modsync/internal/modservice"
	"github.com/starford/modsync/internal/storage"
	"github.com/starford/modsync/internal/watch"
	"github.com/starford/modsync/internal/workspace"
)

// App is an opened application: logger, journal and mod service.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Service *modservice.Service

	version string
	closers []io.Closer
}

// Open builds the application from the given options.
func Open(opts ...Option) (*App, error) {
	a := &application{
		console: os.Stderr,
		version: "dev",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config

	logger, logFile, err := newLogger(cfg, a.console, a.now())
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, version: a.version, closers: []io.Closer{logFile}}

	logger.Debug("Configuration loaded",
		slog.String("appdata_dir", cfg.Paths.AppDataDir),
		slog.String("profile_dir", cfg.Paths.ProfileDir()),
		slog.String("data_dir", cfg.Paths.DataDir),
		slog.String("log_level", cfg.Logging.LogLevel.String()))

	data, err := storage.NewFS(cfg.Paths.DataDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init data dir: %w", err)
	}
	profile, err := storage.NewFS(cfg.Paths.ProfileDir())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init profile dir: %w", err)
	}

	layout := modservice.Layout{DataDir: cfg.Paths.DataDir, AppDataDir: cfg.Paths.AppDataDir}
	if err := os.MkdirAll(layout.PakPath(), 0o755); err != nil {
		app.Close()
		return nil, fmt.Errorf("create pak dir: %w", err)
	}
	paks, err := storage.NewFS(layout.PakPath())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init pak dir: %w", err)
	}

	var j journal.Journal = journal.Nop{}
	if cfg.Journal.Enabled {
		db, err := journal.Open(cfg.JournalPath())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init journal: %w", err)
		}
		j = db
		app.closers = append(app.closers, db)
	}

	ws := workspace.NewDisk(data, profile, logger)
	app.Service = modservice.NewService(ws, j, paks, layout, logger)
	return app, nil
}

// Close releases the journal and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Watch refreshes once, then refreshes after every external edit of the
// load-order document until ctx is cancelled or a shutdown signal arrives.
func (a *App) Watch(ctx context.Context, cb watch.Callback) error {
	logger := a.Logger
	svc := a.Service

	res, err := svc.Refresh(ctx)
	if cb != nil {
		cb(res, err)
	}
	if err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, svc.DocumentPath(), svc, watch.DefaultDebounce, logger, cb)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Stopped watching")
	return nil
}

// ServeMCP serves the mod tools over stdio until stdin closes.
func (a *App) ServeMCP() error {
	a.Logger.Info("Serving MCP over stdio")
	return mcpserver.New(a.Service, a.version).ServeStdio()
}

// Init prepares dataDir: the mod, dump, backup and log dirs, an empty
// registry and a config template. Existing files are kept. It returns
// the paths it created.
func Init(dataDir string) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	created, err := modservice.Init(dataDir)
	if err != nil {
		return created, err
	}

	conf := filepath.Join(dataDir, ConfigFileName)
	_, err = os.Stat(conf)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(conf, []byte(ConfigTemplate), 0o644); err != nil {
			return created, fmt.Errorf("init: %w", err)
		}
		created = append(created, conf)
	default:
		return created, fmt.Errorf("init: %w", err)
	}
	return created, nil
}

var (
	_ watch.Refresher      = (*modservice.Service)(nil)
	_ mcpserver.ModService = (*modservice.Service)(nil)
)
