// Package storage defines the file-system abstraction the stores are built on.
package storage

import "time"

// Entry describes one file returned by List.
type Entry struct {
	Path      string // relative to the provider root
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for rooted file operations. All paths are
// relative to the provider root.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns the files directly under dir whose name ends with suffix.
	List(dir, suffix string) ([]Entry, error)
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Stage writes content next to path without replacing it; the returned
	// Staged file is moved into place by Commit.
	Stage(path string, content []byte) (*Staged, error)
	// Delete removes the file at path.
	Delete(path string) error
	// Mkdir creates dir and any missing parents.
	Mkdir(dir string) error
}
