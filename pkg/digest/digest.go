// Package digest maintains time-bucketed notification digest notes and the
// index note linking them.
package digest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tcharvin/issuevault/pkg/fs"
	"github.com/tcharvin/issuevault/pkg/logger"
	"github.com/tcharvin/issuevault/pkg/vault"
	"gopkg.in/yaml.v3"
)

//go:generate mockgen -source=digest.go -destination=mocks/digest.gen.go -package=mocks

// IndexFilename is the fixed name of the index note.
const IndexFilename = "index.md"

// Aggregator interface maintains digest notes from activity entries.
type Aggregator interface {
	// Aggregate merges the run's activity entries into the daily, weekly and
	// monthly digest notes they fall into, rewrites each touched digest in
	// full, and rebuilds the index note. Returns the touched bucket keys.
	Aggregate(entries []Entry) ([]string, error)
}

type realAggregator struct {
	fs     fs.FS
	writer vault.Writer
	logger logger.Logger
	dir    string // absolute digest directory
	rel    string // vault-relative digest folder, for wikilinks
}

// NewAggregator creates a new digest Aggregator writing under dir. rel is
// the vault-relative digest folder name used in wikilinks.
func NewAggregator(fs fs.FS, writer vault.Writer, logger logger.Logger, dir, rel string) Aggregator {
	return &realAggregator{
		fs:     fs,
		writer: writer,
		logger: logger,
		dir:    dir,
		rel:    rel,
	}
}

// Aggregate merges entries into their buckets and rebuilds the index.
func (a *realAggregator) Aggregate(entries []Entry) ([]string, error) {
	var touched []string

	for _, g := range Granularities {
		buckets := make(map[string][]Entry)
		for _, e := range entries {
			key := g.BucketKey(e.Timestamp)
			buckets[key] = append(buckets[key], e)
		}

		keys := make([]string, 0, len(buckets))
		for key := range buckets {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if err := a.updateBucket(g, key, buckets[key]); err != nil {
				return nil, fmt.Errorf("failed to update %s digest %s: %w", g, key, err)
			}
			touched = append(touched, key)
		}
	}

	if err := a.rebuildIndex(); err != nil {
		return nil, fmt.Errorf("failed to rebuild digest index: %w", err)
	}

	return touched, nil
}

// updateBucket merges incoming entries into one digest note and rewrites it
// in full.
func (a *realAggregator) updateBucket(g Granularity, key string, incoming []Entry) error {
	path := filepath.Join(g.Dir(a.dir), key+".md")

	existing, err := a.loadEntries(path)
	if err != nil {
		// A digest the tool cannot parse back is regenerated from the new
		// entries alone; the old file is replaced, not merged.
		a.logger.Logf("Warning: could not parse digest %s, regenerating: %v", path, err)
		existing = nil
	}

	merged := mergeEntries(existing, incoming)
	content := a.renderDigest(g, key, merged)

	return a.writer.WriteWholeNote(path, []byte(content))
}

// loadEntries reads the persisted entry list back from a digest note's
// frontmatter. A missing file yields no entries.
func (a *realAggregator) loadEntries(path string) ([]Entry, error) {
	exists, err := a.fs.Exists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := a.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := extractFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	var doc digestDoc
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}

	return doc.Entries, nil
}

// digestDoc is the frontmatter schema of a digest note.
type digestDoc struct {
	Kind    string   `yaml:"kind"`
	Bucket  string   `yaml:"bucket"`
	Tags    []string `yaml:"tags"`
	Entries []Entry  `yaml:"entries"`
}

// extractFrontmatter returns the YAML block between the leading "---" fences.
func extractFrontmatter(content string) (string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return "", ErrNoFrontmatter
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", ErrNoFrontmatter
	}
	return rest[:end+1], nil
}
