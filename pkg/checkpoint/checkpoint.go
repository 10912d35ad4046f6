// Package checkpoint persists the watermark of the last successful sync.
package checkpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/tcharvin/issuevault/pkg/fs"
)

//go:generate mockgen -source=checkpoint.go -destination=mocks/checkpoint.gen.go -package=mocks

// Format is the on-disk timestamp format of the checkpoint file.
const Format = time.RFC3339

// Store interface provides checkpoint persistence.
type Store interface {
	// Load reads the checkpoint. The boolean is false when no checkpoint
	// exists yet (first run).
	Load() (time.Time, bool, error)

	// Save writes the checkpoint atomically. A crash mid-save leaves either
	// the old or the new value readable, never a partial one.
	Save(t time.Time) error
}

type realStore struct {
	fs   fs.FS
	path string
}

// NewStore creates a new Store persisting to the given file path.
func NewStore(fs fs.FS, path string) Store {
	return &realStore{
		fs:   fs,
		path: path,
	}
}

// Load reads the checkpoint file.
func (s *realStore) Load() (time.Time, bool, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if s.fs.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return time.Time{}, false, nil
	}

	t, err := time.Parse(Format, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q: %w", ErrCheckpointCorrupt, raw, err)
	}

	return t, true, nil
}

// Save writes the checkpoint file atomically.
func (s *realStore) Save(t time.Time) error {
	data := []byte(t.UTC().Format(Format) + "\n")
	if err := s.fs.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
