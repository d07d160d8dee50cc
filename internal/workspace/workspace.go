// Package workspace loads the two stores as snapshots and persists the
// changes planned against them.
package workspace

import (
	"github.com/starford/modsync/internal/checksum"
	"github.com/starford/modsync/internal/loadorder"
	"github.com/starford/modsync/internal/registry"
)

// BackupReader reads backup fragments by UUID.
type BackupReader interface {
	Read(uuid string) (fragment []byte, ok bool, err error)
}

// Snapshot is the state of both stores at load time. Snapshots are loaded
// fresh for every operation and are never shared between operations.
type Snapshot struct {
	Registry *registry.Registry
	Document *loadorder.Document
	Backups  BackupReader

	base base
}

// base fingerprints the raw store bytes a snapshot was parsed from.
type base struct {
	registry string
	document string
}

// Change returns an empty change planned against s.
func (s *Snapshot) Change() *Change {
	return &Change{base: s.base}
}

// Fragment is a backup fragment to write.
type Fragment struct {
	UUID string
	Data []byte
}

// Change is everything one operation writes. A nil store is left as is.
type Change struct {
	Registry *registry.Registry
	Document *loadorder.Document
	Backups  []Fragment

	base base
}

// Empty reports whether committing c would write nothing.
func (c *Change) Empty() bool {
	return c == nil || (c.Registry == nil && c.Document == nil && len(c.Backups) == 0)
}

// Workspace is implemented by Disk and Memory.
type Workspace interface {
	// Load parses both stores. The registry must exist.
	Load() (*Snapshot, error)
	// Commit writes backup fragments, then replaces the registry and the
	// document together. It fails with apperr.ErrConflict when either
	// store changed since the snapshot c was planned against.
	Commit(c *Change) error
}

func newBase(reg, doc []byte) base {
	return base{registry: checksum.Sum(reg), document: checksum.Sum(doc)}
}
