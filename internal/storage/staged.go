package storage

import (
	"errors"
	"fmt"
	"os"
)

// Staged is a fully written temp file waiting to replace its destination.
type Staged struct {
	tmp  string
	dest string
}

// Dest returns the absolute destination path.
func (s *Staged) Dest() string {
	return s.dest
}

// Discard removes the temp file. Safe to call after Commit.
func (s *Staged) Discard() {
	if s == nil || s.tmp == "" {
		return
	}
	_ = os.Remove(s.tmp)
	s.tmp = ""
}

// Commit renames every staged file into place, in order. Staged files may
// belong to different providers. Files after a failed rename are discarded.
func Commit(staged ...*Staged) error {
	var errs []error
	for i, s := range staged {
		if s == nil {
			continue
		}
		if len(errs) > 0 {
			s.Discard()
			continue
		}
		if err := os.Rename(s.tmp, s.dest); err != nil {
			errs = append(errs, fmt.Errorf("storage: rename %s (%d of %d): %w", s.dest, i+1, len(staged), err))
			s.Discard()
			continue
		}
		s.tmp = ""
	}
	return errors.Join(errs...)
}

// DiscardAll discards every staged file.
func DiscardAll(staged ...*Staged) {
	for _, s := range staged {
		s.Discard()
	}
}
