package sync

import "errors"

// Error definitions for sync package.
var (
	// ErrTrackerQuery wraps fatal gateway failures; the run aborts and the
	// checkpoint is left untouched.
	ErrTrackerQuery = errors.New("tracker query failed")
	// ErrCheckpointSave wraps checkpoint persistence failures at the end of
	// an otherwise successful run.
	ErrCheckpointSave = errors.New("checkpoint save failed")
	// ErrVaultLocked is returned when another sync run holds the vault lock.
	ErrVaultLocked = errors.New("vault is locked by another sync run")
	// ErrVaultMissing is returned when the configured vault path is not an
	// existing directory.
	ErrVaultMissing = errors.New("vault path is not a directory")
)
