package digest

import (
	"sort"
	"time"

	"github.com/tcharvin/issuevault/pkg/issue"
)

// excerptLimit bounds the latest-comment excerpt length in digest entries.
const excerptLimit = 150

// Entry is one activity record inside a digest bucket. Entries are persisted
// in the digest note's frontmatter so later runs can merge into them.
type Entry struct {
	IssueKey  string    `yaml:"issue"`
	Project   string    `yaml:"project"`
	Title     string    `yaml:"title"`
	Status    string    `yaml:"status"`
	Reasons   []string  `yaml:"reasons,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
	NotePath  string    `yaml:"note"`
	URL       string    `yaml:"url,omitempty"`
	Excerpt   string    `yaml:"excerpt,omitempty"`
}

// NewEntry builds the digest entry for an issue. notePath is the
// vault-relative link target of the issue's note, without extension.
func NewEntry(iss issue.Issue, notePath string) Entry {
	entry := Entry{
		IssueKey:  iss.Key,
		Project:   iss.ProjectKey,
		Title:     iss.Title,
		Status:    iss.Status,
		Timestamp: iss.Updated,
		NotePath:  notePath,
		URL:       iss.URL,
	}

	for _, r := range iss.Reasons.Sorted() {
		entry.Reasons = append(entry.Reasons, string(r))
	}

	if c := iss.LatestComment(); c != nil {
		entry.Excerpt = truncate(c.Body, excerptLimit)
	}

	return entry
}

// mergeEntries combines existing and new entries, de-duplicating by issue
// key. The entry with the later timestamp wins; ties prefer the newly
// observed state. Result is ordered by timestamp ascending, issue key as
// tiebreak.
func mergeEntries(existing, incoming []Entry) []Entry {
	byKey := make(map[string]Entry, len(existing)+len(incoming))

	for _, e := range existing {
		byKey[e.IssueKey] = e
	}
	for _, e := range incoming {
		prev, seen := byKey[e.IssueKey]
		if !seen || !e.Timestamp.Before(prev.Timestamp) {
			byKey[e.IssueKey] = e
		}
	}

	merged := make([]Entry, 0, len(byKey))
	for _, e := range byKey {
		merged = append(merged, e)
	}

	sort.Slice(merged, func(a, b int) bool {
		if merged[a].Timestamp.Equal(merged[b].Timestamp) {
			return merged[a].IssueKey < merged[b].IssueKey
		}
		return merged[a].Timestamp.Before(merged[b].Timestamp)
	})

	return merged
}

// truncate shortens a string to limit runes, appending an ellipsis. Newlines
// are flattened so excerpts stay single-line.
func truncate(s string, limit int) string {
	flat := make([]rune, 0, limit+1)
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		flat = append(flat, r)
		if len(flat) > limit {
			return string(flat[:limit]) + "..."
		}
	}
	return string(flat)
}
