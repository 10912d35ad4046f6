package digest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/note"
	"gopkg.in/yaml.v3"
)

// renderDigest produces the full content of one digest note: frontmatter
// carrying the canonical entry list, plus a rendered body.
func (a *realAggregator) renderDigest(g Granularity, key string, entries []Entry) string {
	doc := digestDoc{
		Kind:    string(g),
		Bucket:  key,
		Tags:    []string{"issuevault", "digest", string(g)},
		Entries: entries,
	}

	fm, err := yaml.Marshal(doc)
	if err != nil {
		fm = []byte{}
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")

	switch g {
	case Daily:
		a.renderDailyBody(&b, key, entries)
	case Weekly:
		a.renderWeeklyBody(&b, key, entries)
	case Monthly:
		a.renderMonthlyBody(&b, key, entries)
	}

	return b.String()
}

func (a *realAggregator) renderDailyBody(b *strings.Builder, key string, entries []Entry) {
	title := key
	if t, err := time.Parse("2006-01-02", key); err == nil {
		title = fmt.Sprintf("%s (%s)", key, t.Weekday())
	}
	fmt.Fprintf(b, "# Issue activity — %s\n\n", title)
	fmt.Fprintf(b, "%d notification(s) on this day.\n\n", len(entries))
	a.renderEntries(b, entries)
}

func (a *realAggregator) renderWeeklyBody(b *strings.Builder, key string, entries []Entry) {
	start := Weekly.BucketStart(key)
	end := start.AddDate(0, 0, 6)
	fmt.Fprintf(b, "# Weekly issue activity — %s\n\n", key)
	if !start.IsZero() {
		fmt.Fprintf(b, "%s to %s, %d notification(s).\n\n",
			start.Format("2006-01-02"), end.Format("2006-01-02"), len(entries))
	}

	b.WriteString("## Days\n\n")
	for _, day := range subBuckets(Daily, entries) {
		fmt.Fprintf(b, "- [[%s/%s|%s]]\n", Daily.RelDir(a.rel), day, day)
	}
	b.WriteString("\n## Issues\n\n")
	a.renderEntries(b, entries)
}

func (a *realAggregator) renderMonthlyBody(b *strings.Builder, key string, entries []Entry) {
	fmt.Fprintf(b, "# Monthly issue activity — %s\n\n", key)
	fmt.Fprintf(b, "%d notification(s) this month.\n\n", len(entries))

	b.WriteString("## Weeks\n\n")
	for _, week := range subBuckets(Weekly, entries) {
		fmt.Fprintf(b, "- [[%s/%s|%s]]\n", Weekly.RelDir(a.rel), week, week)
	}
	b.WriteString("\n## Issues\n\n")
	a.renderEntries(b, entries)
}

// renderEntries writes the ordered activity list shared by all granularities.
func (a *realAggregator) renderEntries(b *strings.Builder, entries []Entry) {
	for _, e := range entries {
		fmt.Fprintf(b, "- **%s** [[%s|%s]] %s — %s",
			e.Timestamp.Format("2006-01-02 15:04"),
			e.NotePath, e.IssueKey,
			note.EscapeInline(e.Title),
			note.EscapeInline(e.Status))
		if len(e.Reasons) > 0 {
			labels := make([]string, len(e.Reasons))
			for i, r := range e.Reasons {
				labels[i] = issue.Reason(r).Label()
			}
			fmt.Fprintf(b, " (%s)", strings.Join(labels, ", "))
		}
		b.WriteString("\n")
		if e.Excerpt != "" {
			fmt.Fprintf(b, "  > %s\n", note.EscapeInline(e.Excerpt))
		}
	}
}

// subBuckets lists the finer-granularity bucket keys covered by entries,
// sorted ascending.
func subBuckets(g Granularity, entries []Entry) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, e := range entries {
		key := g.BucketKey(e.Timestamp)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// rebuildIndex regenerates the index note from the digest notes currently on
// disk, most recent buckets first.
func (a *realAggregator) rebuildIndex() error {
	var b strings.Builder
	b.WriteString("---\ntags:\n    - issuevault\n    - digest-index\n---\n\n")
	b.WriteString("# Issue activity index\n\n")

	sections := []struct {
		title string
		g     Granularity
	}{
		{"Daily", Daily},
		{"Weekly", Weekly},
		{"Monthly", Monthly},
	}

	for _, section := range sections {
		keys, err := a.listBuckets(section.g)
		if err != nil {
			return err
		}

		fmt.Fprintf(&b, "## %s\n\n", section.title)
		if len(keys) == 0 {
			b.WriteString("No digests yet.\n\n")
			continue
		}
		for _, key := range keys {
			fmt.Fprintf(&b, "- [[%s/%s|%s]]\n", section.g.RelDir(a.rel), key, key)
		}
		b.WriteString("\n")
	}

	path := filepath.Join(a.dir, IndexFilename)
	return a.writer.WriteWholeNote(path, []byte(b.String()))
}

// listBuckets enumerates the bucket keys of a granularity's digest notes,
// sorted by bucket start descending.
func (a *realAggregator) listBuckets(g Granularity) ([]string, error) {
	matches, err := a.fs.Glob(filepath.Join(g.Dir(a.dir), "*.md"))
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, match := range matches {
		name := filepath.Base(match)
		if name == IndexFilename {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".md"))
	}

	sort.Slice(keys, func(x, y int) bool {
		sx, sy := g.BucketStart(keys[x]), g.BucketStart(keys[y])
		if sx.Equal(sy) {
			return keys[x] > keys[y]
		}
		return sx.After(sy)
	})

	return keys, nil
}
