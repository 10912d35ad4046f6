// Package note renders tracker issues to Markdown note content.
// Rendering is pure: identical input produces byte-identical output.
package note

import (
	"fmt"
	"strings"

	"github.com/tcharvin/issuevault/pkg/issue"
	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML metadata block written at note creation. It sits in
// the user's free region, so it only carries fields that never change over an
// issue's lifetime; the live state (status, updated) is rendered inside the
// managed region instead.
type frontmatter struct {
	Issue   string   `yaml:"issue"`
	Project string   `yaml:"project"`
	Created string   `yaml:"created"`
	Tags    []string `yaml:"tags"`
}

// Frontmatter renders the YAML frontmatter block for an issue note.
func Frontmatter(iss issue.Issue) string {
	fm := frontmatter{
		Issue:   iss.Key,
		Project: iss.ProjectKey,
		Created: iss.Created.Format("2006-01-02"),
		Tags:    []string{"issuevault", strings.ToLower(iss.ProjectKey)},
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		// A struct of strings cannot fail to marshal; keep the signature pure.
		data = []byte{}
	}

	return "---\n" + string(data) + "---\n"
}

// Render converts an issue and its comment thread to the managed Markdown
// block of its note.
func Render(iss issue.Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# [%s] %s\n\n", iss.Key, EscapeInline(iss.Title))

	fmt.Fprintf(&b, "**Status**: %s  \n", EscapeInline(iss.Status))
	if iss.Type != "" {
		fmt.Fprintf(&b, "**Type**: %s  \n", EscapeInline(iss.Type))
	}
	if iss.ProjectName != "" {
		fmt.Fprintf(&b, "**Project**: %s (%s)  \n", EscapeInline(iss.ProjectName), iss.ProjectKey)
	} else {
		fmt.Fprintf(&b, "**Project**: %s  \n", iss.ProjectKey)
	}
	if iss.Priority != "" {
		fmt.Fprintf(&b, "**Priority**: %s  \n", EscapeInline(iss.Priority))
	}
	if iss.Assignee != "" {
		fmt.Fprintf(&b, "**Assignee**: %s  \n", EscapeInline(iss.Assignee))
	}
	if iss.Reporter != "" {
		fmt.Fprintf(&b, "**Reporter**: %s  \n", EscapeInline(iss.Reporter))
	}
	if len(iss.Reasons) > 0 {
		labels := make([]string, 0, len(iss.Reasons))
		for _, r := range iss.Reasons.Sorted() {
			labels = append(labels, r.Label())
		}
		fmt.Fprintf(&b, "**Relevance**: %s  \n", strings.Join(labels, ", "))
	}
	fmt.Fprintf(&b, "**Created**: %s  \n", iss.Created.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Updated**: %s  \n", iss.Updated.Format("2006-01-02 15:04"))

	if iss.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", EscapeBlock(iss.Description))
	}

	if len(iss.Comments) > 0 {
		fmt.Fprintf(&b, "\n## Comments (%d)\n", len(iss.Comments))
		for _, c := range iss.Comments {
			fmt.Fprintf(&b, "\n### %s - %s\n\n%s\n",
				EscapeInline(c.Author),
				c.Created.Format("2006-01-02 15:04"),
				EscapeBlock(c.Body))
		}
	}

	if iss.URL != "" {
		fmt.Fprintf(&b, "\n---\n[View in tracker](%s)\n", iss.URL)
	}

	return b.String()
}

// Filename returns the note file name for an issue. Derived from the issue
// key only, so renames of the title never orphan the note.
func Filename(iss issue.Issue) string {
	return iss.Key + ".md"
}
