package checkpoint

import "errors"

// Error definitions for checkpoint package.
var (
	ErrCheckpointCorrupt = errors.New("checkpoint file is corrupt")
)
