// Package apperr defines the error taxonomy shared by stores, the engine and the CLI.
package apperr

import "errors"

// Preconditions. Fatal for the whole run.
var (
	ErrConfigNotFound = errors.New("config not found")
	ErrNotInitialized = errors.New("workspace not initialized")
)

// Per-item input problems. The affected item is skipped, the run continues.
var (
	ErrInvalidMetadata = errors.New("invalid metadata")
	ErrInvalidInput    = errors.New("invalid input")
)

// Operation aborts. Nothing is written when one of these is returned.
var (
	ErrModNotFound       = errors.New("mod not found")
	ErrEntryNotFound     = errors.New("entry not found in load-order document")
	ErrMissingBackup     = errors.New("backup fragment not found")
	ErrMalformedBackup   = errors.New("malformed backup fragment")
	ErrInvalidTarget     = errors.New("invalid reorder target")
	ErrUnknownUUID       = errors.New("unknown uuid")
	ErrMalformedDocument = errors.New("malformed load-order document")
	ErrConflict          = errors.New("changed on disk since it was read")
)

// IsOperational reports whether err is one of the recoverable operation
// errors that are surfaced to the user as a single message.
func IsOperational(err error) bool {
	for _, target := range []error{
		ErrInvalidMetadata, ErrInvalidInput, ErrModNotFound, ErrEntryNotFound,
		ErrMissingBackup, ErrMalformedBackup, ErrInvalidTarget, ErrUnknownUUID,
		ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
