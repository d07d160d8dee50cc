// Package backup stores the load-order fragments of deactivated mods, one
// file per UUID, so a later activation can restore them verbatim.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/starford/modsync/internal/storage"
)

// Dir is the backup directory relative to the data dir.
const Dir = "inactive"

const ext = ".xml"

// Store reads and writes fragments through a storage provider.
type Store struct {
	fs storage.Provider
}

// NewStore creates a fragment store on top of fs.
func NewStore(fs storage.Provider) *Store {
	return &Store{fs: fs}
}

func path(uuid string) (string, error) {
	if uuid == "" || strings.ContainsAny(uuid, `/\`) || uuid == "." || uuid == ".." {
		return "", fmt.Errorf("backup: invalid uuid %q", uuid)
	}
	return filepath.Join(Dir, uuid+ext), nil
}

// Write creates or overwrites the fragment for uuid.
func (s *Store) Write(uuid string, fragment []byte) error {
	p, err := path(uuid)
	if err != nil {
		return err
	}
	return s.fs.Write(p, fragment)
}

// Read returns the fragment for uuid; ok is false when there is none.
func (s *Store) Read(uuid string) (fragment []byte, ok bool, err error) {
	p, err := path(uuid)
	if err != nil {
		return nil, false, err
	}
	data, err := s.fs.Read(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Delete removes the fragment for uuid.
func (s *Store) Delete(uuid string) error {
	p, err := path(uuid)
	if err != nil {
		return err
	}
	return s.fs.Delete(p)
}

// List returns the UUIDs that have a fragment, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := s.fs.List(Dir, ext)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(filepath.Base(e.Path), ext))
	}
	return out, nil
}
