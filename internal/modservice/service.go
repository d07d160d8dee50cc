// Package modservice drives the engine for the CLI and the MCP server: it
// runs operations, records them in the journal and builds the read models.
package modservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/checksum"
	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/journal"
	"github.com/starford/modsync/internal/storage"
	"github.com/starford/modsync/internal/workspace"
)

// ModRow is one line of the mod list.
type ModRow struct {
	Number    int       `json:"number"`
	Active    bool      `json:"active"`
	Name      string    `json:"name"`
	UUID      string    `json:"uuid"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"last_installed"`
}

// BackupRow is one backup fragment and the mod it belongs to.
type BackupRow struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Active bool   `json:"active"`
	Known  bool   `json:"known"`
}

// Filter selects mods by install state.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterInactive
)

// NewFilter maps the --active/--inactive flags to a Filter.
func NewFilter(active, inactive bool) (Filter, error) {
	switch {
	case active && inactive:
		return FilterAll, fmt.Errorf("--active and --inactive are exclusive: %w", apperr.ErrInvalidInput)
	case active:
		return FilterActive, nil
	case inactive:
		return FilterInactive, nil
	default:
		return FilterAll, nil
	}
}

// Service coordinates the engine, the disk workspace and the journal.
type Service struct {
	engine  *engine.Engine
	ws      *workspace.Disk
	journal journal.Journal
	paks    storage.Provider
	layout  Layout
	logger  *slog.Logger
	runID   string
}

// NewService creates a mod service. paks is rooted at the game's pak dir.
func NewService(ws *workspace.Disk, j journal.Journal, paks storage.Provider, layout Layout, logger *slog.Logger) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:  engine.New(ws, logger),
		ws:      ws,
		journal: j,
		paks:    paks,
		layout:  layout,
		logger:  logger,
		runID:   uuid.NewString(),
	}
}

// Layout returns the configured layout.
func (s *Service) Layout() Layout {
	return s.layout
}

// DocumentPath returns the absolute load-order document path.
func (s *Service) DocumentPath() string {
	return s.ws.DocumentPath()
}

// Activate runs the Activate operation for the mod numbered n.
func (s *Service) Activate(ctx context.Context, n int) (*engine.Result, error) {
	return s.Run(ctx, engine.Activate{Number: n})
}

// Deactivate runs the Deactivate operation for the mod numbered n.
func (s *Service) Deactivate(ctx context.Context, n int) (*engine.Result, error) {
	return s.Run(ctx, engine.Deactivate{Number: n})
}

// Refresh runs the Refresh operation.
func (s *Service) Refresh(ctx context.Context) (*engine.Result, error) {
	return s.Run(ctx, engine.Refresh{})
}

// Reorder runs the Reorder operation.
func (s *Service) Reorder(ctx context.Context, selected []int, placement engine.Placement) (*engine.Result, error) {
	return s.Run(ctx, engine.Reorder{Selected: selected, Placement: placement})
}

// Run applies op and records the outcome in the journal.
func (s *Service) Run(ctx context.Context, op engine.Op) (*engine.Result, error) {
	res, err := s.engine.Apply(ctx, op)
	s.record(ctx, op.Name(), res, err)
	if err != nil {
		return nil, err
	}
	if res.Outcome == engine.Applied {
		s.rememberStores(ctx)
	}
	return res, nil
}

func (s *Service) record(ctx context.Context, op string, res *engine.Result, opErr error) {
	e := journal.Entry{RunID: s.runID, Op: op}
	if res != nil {
		e.Outcome = res.Outcome.String()
		e.ModUUID = res.UUID
		e.ModName = res.Name
		e.Detail = res.Message
		if len(res.Warnings) > 0 {
			e.Detail += "; " + strings.Join(res.Warnings, "; ")
		}
	}
	if opErr != nil {
		e.Outcome = "failed"
		e.Error = opErr.Error()
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.logger.Warn("journal: record failed", slog.String("error", err.Error()))
	}
}

// rememberStores records the fingerprints of both store files so the
// watcher can tell modsync's own writes from external edits.
func (s *Service) rememberStores(ctx context.Context) {
	for _, p := range []string{s.ws.RegistryPath(), s.ws.DocumentPath()} {
		sum, err := checksum.File(p)
		if err != nil {
			s.logger.Warn("checksum failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if err := s.journal.SetChecksum(ctx, p, sum); err != nil {
			s.logger.Warn("journal: set checksum failed", slog.String("error", err.Error()))
		}
	}
}

// DocumentChanged reports whether the load-order document differs from
// what modsync last wrote. Without a journal every call reports true.
func (s *Service) DocumentChanged(ctx context.Context) (bool, error) {
	p := s.ws.DocumentPath()
	known, err := s.journal.Checksum(ctx, p)
	if err != nil {
		return false, err
	}
	current, err := checksum.File(p)
	if err != nil {
		return false, err
	}
	return known == "" || known != current, nil
}

// List returns the registry as rows sorted by order number.
func (s *Service) List(_ context.Context, f Filter) ([]ModRow, error) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	var rows []ModRow
	for _, e := range snap.Registry.Sorted() {
		if (f == FilterActive && !e.Installed) || (f == FilterInactive && e.Installed) {
			continue
		}
		rows = append(rows, ModRow{
			Number:    e.Number,
			Active:    e.Installed,
			Name:      e.Name,
			UUID:      e.UUID,
			Type:      e.Origin.Label(),
			UpdatedAt: e.UpdatedAt.Time,
		})
	}
	return rows, nil
}

// Backups lists every backup fragment with the registry row it belongs to.
func (s *Service) Backups(_ context.Context) ([]BackupRow, error) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	ids, err := s.ws.Backups().List()
	if err != nil {
		return nil, err
	}
	rows := make([]BackupRow, 0, len(ids))
	for _, id := range ids {
		row := BackupRow{UUID: id}
		if e, ok := snap.Registry.Get(id); ok {
			row.Known = true
			row.Name = e.Name
			row.Number = e.Number
			row.Active = e.Installed
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteBackup removes the backup fragment of the mod numbered n. The
// fragment of an inactive mod is its only copy and is never deleted.
func (s *Service) DeleteBackup(ctx context.Context, n int) (*BackupRow, error) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	e, ok := snap.Registry.ByNumber(n)
	if !ok {
		return nil, fmt.Errorf("no mod with number %d: %w", n, apperr.ErrModNotFound)
	}
	if !e.Installed {
		return nil, fmt.Errorf("mod %q is inactive, its backup is needed to activate it: %w", e.Name, apperr.ErrInvalidInput)
	}
	if _, found, err := s.ws.Backups().Read(e.UUID); err != nil {
		return nil, err
	} else if !found {
		return nil, fmt.Errorf("mod %q: %w", e.Name, apperr.ErrMissingBackup)
	}
	if err := s.ws.Backups().Delete(e.UUID); err != nil {
		return nil, err
	}

	row := &BackupRow{UUID: e.UUID, Name: e.Name, Number: e.Number, Active: true, Known: true}
	s.record(ctx, "delete_backup", &engine.Result{
		Outcome: engine.Applied,
		UUID:    e.UUID,
		Name:    e.Name,
		Message: "deleted backup fragment",
	}, nil)
	return row, nil
}

// History returns recent journal entries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	return s.journal.Recent(ctx, limit)
}
