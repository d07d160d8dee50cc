package workspace

import (
	"fmt"
	"time"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/checksum"
	"github.com/starford/modsync/internal/loadorder"
	"github.com/starford/modsync/internal/registry"
)

// Memory is an in-memory Workspace. It holds raw store bytes, so every
// Load parses fresh snapshots exactly like Disk does.
type Memory struct {
	registry []byte
	document []byte
	backups  map[string][]byte
	now      func() time.Time

	// Commits counts Commit calls that wrote something.
	Commits int
}

// NewMemory creates a Memory workspace from raw registry and document
// content. A nil registry behaves like a missing registry file.
func NewMemory(registryData, documentData []byte) *Memory {
	return &Memory{
		registry: registryData,
		document: documentData,
		backups:  make(map[string][]byte),
		now:      time.Now,
	}
}

// SetClock replaces the time source handed to loaded registries.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// RegistryData returns the current raw registry.
func (m *Memory) RegistryData() []byte {
	return m.registry
}

// DocumentData returns the current raw document.
func (m *Memory) DocumentData() []byte {
	return m.document
}

// SetDocumentData replaces the raw document, as an external edit would.
func (m *Memory) SetDocumentData(data []byte) {
	m.document = data
}

// SetBackup stores a fragment for uuid.
func (m *Memory) SetBackup(uuid string, fragment []byte) {
	m.backups[uuid] = fragment
}

// Backup returns the fragment stored for uuid.
func (m *Memory) Backup(uuid string) ([]byte, bool) {
	data, ok := m.backups[uuid]
	return data, ok
}

// Read implements BackupReader.
func (m *Memory) Read(uuid string) ([]byte, bool, error) {
	data, ok := m.backups[uuid]
	return data, ok, nil
}

// Load implements Workspace.
func (m *Memory) Load() (*Snapshot, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("workspace: %w", apperr.ErrNotInitialized)
	}
	reg, err := registry.Parse(m.registry)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	reg.SetClock(m.now)
	doc, err := loadorder.Parse(m.document)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	return &Snapshot{
		Registry: reg,
		Document: doc,
		Backups:  m,
		base:     newBase(m.registry, m.document),
	}, nil
}

// Commit implements Workspace.
func (m *Memory) Commit(c *Change) error {
	if c.Empty() {
		return nil
	}
	if checksum.Sum(m.registry) != c.base.registry || checksum.Sum(m.document) != c.base.document {
		return fmt.Errorf("workspace: %w", apperr.ErrConflict)
	}

	regData, docData := m.registry, m.document
	var err error
	if c.Registry != nil {
		if regData, err = c.Registry.Encode(); err != nil {
			return err
		}
	}
	if c.Document != nil {
		if docData, err = c.Document.Encode(); err != nil {
			return err
		}
	}
	for _, f := range c.Backups {
		m.backups[f.UUID] = f.Data
	}
	m.registry, m.document = regData, docData
	m.Commits++
	return nil
}
