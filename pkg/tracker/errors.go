package tracker

import "errors"

// Error definitions for tracker package.
var (
	ErrUnsupportedTracker = errors.New("unsupported tracker")
)
