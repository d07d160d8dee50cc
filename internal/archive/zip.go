// Package archive unpacks distributable mod packages.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the zip archive at src into destDir, creating it if
// needed. Existing files are overwritten. It returns the number of files
// written. Entries that would land outside destDir are rejected.
func Extract(src, destDir string) (int, error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return 0, fmt.Errorf("archive: resolve %s: %w", destDir, err)
	}
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("archive: open %s: %w", src, err)
	}
	defer r.Close()

	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return 0, fmt.Errorf("archive: mkdir: %w", err)
	}

	n := 0
	for _, f := range r.File {
		dest := filepath.Join(absDest, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(absDest, dest)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(f.Name) {
			return n, fmt.Errorf("archive: invalid path in %s: %s", filepath.Base(src), f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return n, fmt.Errorf("archive: mkdir: %w", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return n, fmt.Errorf("archive: mkdir: %w", err)
		}
		if err := extractFile(f, dest); err != nil {
			return n, fmt.Errorf("archive: extract %s: %w", f.Name, err)
		}
		n++
	}
	return n, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
