package modservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/modsync/internal/backup"
	"github.com/starford/modsync/internal/registry"
)

// Data dir layout.
const (
	ModsDir = "mods"
	DumpDir = "dump"
	LogsDir = "logs"
	PakDir  = "Mods"
)

// Layout is where the tool keeps its files and where paks are installed.
type Layout struct {
	DataDir    string
	AppDataDir string
}

// ModsPath is the directory scanned for package archives.
func (l Layout) ModsPath() string { return filepath.Join(l.DataDir, ModsDir) }

// DumpPath is the extraction directory of the named package.
func (l Layout) DumpPath(name string) string { return filepath.Join(l.DataDir, DumpDir, name) }

// PakPath is the game's pak directory.
func (l Layout) PakPath() string { return filepath.Join(l.AppDataDir, PakDir) }

// Init creates the data dir layout and an empty registry. Existing files
// are left alone. It returns the paths it created.
func Init(dataDir string) ([]string, error) {
	var created []string
	for _, dir := range []string{ModsDir, DumpDir, backup.Dir, LogsDir} {
		p := filepath.Join(dataDir, dir)
		if _, err := os.Stat(p); err == nil {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return created, fmt.Errorf("init: %w", err)
		}
		created = append(created, p)
	}

	reg := filepath.Join(dataDir, registry.FileName)
	_, err := os.Stat(reg)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(reg, []byte("{}"), 0o644); err != nil {
			return created, fmt.Errorf("init: %w", err)
		}
		created = append(created, reg)
	default:
		return created, fmt.Errorf("init: %w", err)
	}
	return created, nil
}
