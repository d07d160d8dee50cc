// Package engine reconciles the mod registry with the load-order document.
// Every operation is planned against a fresh snapshot of both stores and
// committed in one step, so a failed validation writes nothing.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/modsync/internal/workspace"
)

// Engine runs operations against a workspace, one at a time.
type Engine struct {
	ws     workspace.Workspace
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates an Engine.
func New(ws workspace.Workspace, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ws: ws, logger: logger}
}

// Apply loads a snapshot, plans op against it and commits the change.
func (e *Engine) Apply(ctx context.Context, op Op) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.ws.Load()
	if err != nil {
		return nil, err
	}
	change, res, err := Plan(snap, op)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.ws.Commit(change); err != nil {
		return nil, err
	}
	e.logger.Debug("operation done",
		"op", res.Op,
		"outcome", res.Outcome.String(),
		"uuid", res.UUID,
		"registry_written", change.Registry != nil,
		"document_written", change.Document != nil,
		"backups_written", len(change.Backups),
	)
	return res, nil
}

// Snapshot loads both stores for read-only use.
func (e *Engine) Snapshot() (*workspace.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Load()
}
