package fs

import (
	"fmt"

	"github.com/gofrs/flock"
)

// FileLock acquires an advisory lock and returns an unlock function.
// The lock is non-blocking: if another process holds it, ErrFileLock is
// returned so overlapping scheduled runs bail out instead of queueing.
func (f *realFS) FileLock(filename string) (func(), error) {
	lock := flock.New(filename)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileLock, filename, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s: held by another process", ErrFileLock, filename)
	}

	unlock := func() {
		_ = lock.Unlock()
	}

	return unlock, nil
}
