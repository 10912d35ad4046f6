package digest

import "errors"

// Error definitions for digest package.
var (
	ErrNoFrontmatter = errors.New("digest note has no frontmatter")
)
