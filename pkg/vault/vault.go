// Package vault writes issue notes into the knowledge-base vault while
// preserving user-authored content outside the managed region.
package vault

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tcharvin/issuevault/pkg/fs"
	"github.com/tcharvin/issuevault/pkg/logger"
)

//go:generate mockgen -source=vault.go -destination=mocks/vault.gen.go -package=mocks

// Managed-region sentinel markers. Everything between them belongs to the
// tool; everything outside is the user's.
const (
	BeginMarker = "<!-- issuevault:begin -->"
	EndMarker   = "<!-- issuevault:end -->"
)

// Writer interface provides idempotent note persistence.
type Writer interface {
	// UpsertNote creates the note or replaces its managed region, leaving
	// bytes outside the markers untouched. Returns whether the file was
	// created.
	UpsertNote(path, frontmatter, managed string) (bool, error)

	// WriteWholeNote writes a fully tool-owned note (digests, index) with
	// atomic replace semantics.
	WriteWholeNote(path string, content []byte) error
}

type realWriter struct {
	fs     fs.FS
	logger logger.Logger
}

// NewWriter creates a new vault Writer.
func NewWriter(fs fs.FS, logger logger.Logger) Writer {
	return &realWriter{
		fs:     fs,
		logger: logger,
	}
}

// NotePath returns the note file path for an issue within its project folder.
func NotePath(baseDir, projectKey, filename string) string {
	return filepath.Join(baseDir, projectKey, filename)
}

// UpsertNote creates the note or replaces its managed region.
func (w *realWriter) UpsertNote(path, frontmatter, managed string) (bool, error) {
	exists, err := w.fs.Exists(path)
	if err != nil {
		return false, fmt.Errorf("failed to check note file: %w", err)
	}

	region := BeginMarker + "\n" + managed + EndMarker + "\n"

	if !exists {
		if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, fmt.Errorf("failed to create project directory: %w", err)
		}
		content := frontmatter + "\n" + region
		if err := w.fs.WriteFileAtomic(path, []byte(content), 0644); err != nil {
			return false, fmt.Errorf("failed to create note file: %w", err)
		}
		return true, nil
	}

	current, err := w.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read note file: %w", err)
	}

	updated, ok := replaceManagedRegion(string(current), region)
	if !ok {
		// Markers missing or malformed: never overwrite user content,
		// append a fresh managed region instead.
		w.logger.Logf("Warning: managed-region markers missing in %s, appending instead of overwriting", path)
		updated = appendManagedRegion(string(current), region)
	}

	// Unchanged issues must not churn the file.
	if updated == string(current) {
		return false, nil
	}

	if err := w.fs.WriteFileAtomic(path, []byte(updated), 0644); err != nil {
		return false, fmt.Errorf("failed to update note file: %w", err)
	}

	return false, nil
}

// WriteWholeNote writes a fully tool-owned note with atomic replace semantics.
func (w *realWriter) WriteWholeNote(path string, content []byte) error {
	if err := w.fs.WriteFileAtomic(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write note file: %w", err)
	}
	return nil
}

// replaceManagedRegion swaps the marker-delimited span of content for region.
// Bytes before the begin marker and after the end marker line are preserved
// exactly. Returns false when the markers are absent or out of order.
func replaceManagedRegion(content, region string) (string, bool) {
	begin := strings.Index(content, BeginMarker)
	if begin < 0 {
		return "", false
	}

	end := strings.Index(content[begin:], EndMarker)
	if end < 0 {
		return "", false
	}
	end += begin + len(EndMarker)

	// Swallow the newline terminating the end marker line so the region
	// replacement stays line-aligned.
	if end < len(content) && content[end] == '\n' {
		end++
	}

	return content[:begin] + region + content[end:], true
}

// appendManagedRegion appends a managed region after the existing content.
func appendManagedRegion(content, region string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + region
}
