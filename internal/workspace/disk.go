package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/backup"
	"github.com/starford/modsync/internal/checksum"
	"github.com/starford/modsync/internal/loadorder"
	"github.com/starford/modsync/internal/registry"
	"github.com/starford/modsync/internal/storage"
)

// Disk keeps the registry and backups in the data dir and the load-order
// document in the profile dir.
type Disk struct {
	data    storage.Provider
	profile storage.Provider
	backups *backup.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewDisk creates a Disk workspace.
func NewDisk(data, profile storage.Provider, logger *slog.Logger) *Disk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Disk{
		data:    data,
		profile: profile,
		backups: backup.NewStore(data),
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source handed to loaded registries.
func (w *Disk) SetClock(now func() time.Time) {
	w.now = now
}

// Backups returns the fragment store.
func (w *Disk) Backups() *backup.Store {
	return w.backups
}

// RegistryPath returns the absolute registry path.
func (w *Disk) RegistryPath() string {
	return filepath.Join(w.data.Root(), registry.FileName)
}

// DocumentPath returns the absolute load-order document path.
func (w *Disk) DocumentPath() string {
	return filepath.Join(w.profile.Root(), loadorder.FileName)
}

// Load implements Workspace.
func (w *Disk) Load() (*Snapshot, error) {
	regData, err := w.data.Read(registry.FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("workspace: %s: %w (run init)", w.RegistryPath(), apperr.ErrNotInitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	reg, err := registry.Parse(regData)
	if err != nil {
		return nil, fmt.Errorf("workspace: %s: %w", w.RegistryPath(), err)
	}
	reg.SetClock(w.now)

	docData, err := w.profile.Read(loadorder.FileName)
	if err != nil {
		return nil, fmt.Errorf("workspace: load-order document: %w", err)
	}
	doc, err := loadorder.Parse(docData)
	if err != nil {
		return nil, fmt.Errorf("workspace: %s: %w", w.DocumentPath(), err)
	}

	return &Snapshot{
		Registry: reg,
		Document: doc,
		Backups:  w.backups,
		base:     newBase(regData, docData),
	}, nil
}

// Commit implements Workspace.
func (w *Disk) Commit(c *Change) error {
	if c.Empty() {
		return nil
	}
	if err := w.checkBase(c.base); err != nil {
		return err
	}

	for _, f := range c.Backups {
		if err := w.backups.Write(f.UUID, f.Data); err != nil {
			return fmt.Errorf("workspace: write backup %s: %w", f.UUID, err)
		}
		w.logger.Debug("Wrote data to backup", "uuid", f.UUID)
	}

	var staged []*storage.Staged
	if c.Registry != nil {
		data, err := c.Registry.Encode()
		if err != nil {
			return err
		}
		s, err := w.data.Stage(registry.FileName, data)
		if err != nil {
			return fmt.Errorf("workspace: stage registry: %w", err)
		}
		staged = append(staged, s)
	}
	if c.Document != nil {
		if err := w.snapshotDocument(); err != nil {
			storage.DiscardAll(staged...)
			return err
		}
		data, err := c.Document.Encode()
		if err != nil {
			storage.DiscardAll(staged...)
			return err
		}
		s, err := w.profile.Stage(loadorder.FileName, data)
		if err != nil {
			storage.DiscardAll(staged...)
			return fmt.Errorf("workspace: stage document: %w", err)
		}
		staged = append(staged, s)
	}

	if err := storage.Commit(staged...); err != nil {
		return fmt.Errorf("workspace: commit: %w", err)
	}
	for _, s := range staged {
		w.logger.Debug("Wrote data to " + s.Dest())
	}
	return nil
}

func (w *Disk) checkBase(b base) error {
	regSum, err := checksum.File(w.RegistryPath())
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if regSum != b.registry {
		return fmt.Errorf("workspace: %s %w", registry.FileName, apperr.ErrConflict)
	}
	docSum, err := checksum.File(w.DocumentPath())
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if docSum != b.document {
		return fmt.Errorf("workspace: %s %w", loadorder.FileName, apperr.ErrConflict)
	}
	return nil
}

// snapshotDocument keeps a one-time pristine copy of the document next to
// it before the tool first modifies it.
func (w *Disk) snapshotDocument() error {
	bak := loadorder.FileName + loadorder.BackupSuffix
	exists, err := w.profile.Exists(bak)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if exists {
		return nil
	}
	data, err := w.profile.Read(loadorder.FileName)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if err := w.profile.Write(bak, data); err != nil {
		return fmt.Errorf("workspace: write %s: %w", bak, err)
	}
	w.logger.Info("Made backup of " + loadorder.FileName)
	return nil
}
