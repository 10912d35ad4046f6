// Package issue provides data structures and error types for tracker issues.
package issue

import "errors"

// Tracker error taxonomy. Auth and network failures abort a sync run;
// not-found is surfaced per-reference.
var (
	ErrAuth     = errors.New("tracker authentication failed")
	ErrNetwork  = errors.New("tracker network failure")
	ErrNotFound = errors.New("issue not found")
)
