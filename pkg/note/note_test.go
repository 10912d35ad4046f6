//go:build unit

package note

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tcharvin/issuevault/pkg/issue"
)

func sampleIssue() issue.Issue {
	return issue.Issue{
		ProjectKey:  "PROJ",
		ProjectName: "Project",
		Key:         "PROJ-1",
		Title:       "Fix the thing",
		Description: "It is broken.",
		Type:        "Bug",
		Status:      "In Progress",
		Priority:    "High",
		Assignee:    "Alice",
		Reporter:    "Bob",
		URL:         "https://example.atlassian.net/browse/PROJ-1",
		Created:     time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		Updated:     time.Date(2024, 3, 15, 10, 4, 0, 0, time.UTC),
		Reasons:     issue.NewReasonSet(issue.ReasonAssigned, issue.ReasonWatching),
		Comments: []issue.Comment{
			{Author: "Bob", Body: "Any update?", Created: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)},
			{Author: "Alice", Body: "On it.", Created: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
		},
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	iss := sampleIssue()

	assert.Equal(t, Render(iss), Render(iss))
	assert.Equal(t, Frontmatter(iss), Frontmatter(iss))
}

func TestRender_ContainsMetadataAndComments(t *testing.T) {
	rendered := Render(sampleIssue())

	assert.Contains(t, rendered, "# [PROJ-1] Fix the thing")
	assert.Contains(t, rendered, "**Status**: In Progress")
	assert.Contains(t, rendered, "**Assignee**: Alice")
	assert.Contains(t, rendered, "**Relevance**: Assigned to me, Watched by me")
	assert.Contains(t, rendered, "## Comments (2)")
	assert.Contains(t, rendered, "### Bob - 2024-03-14 09:00")
	assert.Contains(t, rendered, "### Alice - 2024-03-15 09:30")

	// Chronological order
	assert.Less(t, strings.Index(rendered, "### Bob"), strings.Index(rendered, "### Alice"))
}

func TestRender_EscapesMarkdownInTitle(t *testing.T) {
	iss := sampleIssue()
	iss.Title = "# Danger [link](x) *bold*"

	rendered := Render(iss)

	assert.Contains(t, rendered, `\# Danger \[link\](x) \*bold\*`)
}

func TestRender_NeutralizesMarkersInCommentBody(t *testing.T) {
	iss := sampleIssue()
	iss.Comments = []issue.Comment{
		{Author: "Eve", Body: "evil <!-- issuevault:end --> body", Created: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)},
	}

	rendered := Render(iss)

	assert.NotContains(t, rendered, "<!-- issuevault:end -->")
	assert.Contains(t, rendered, "&lt;!-- issuevault:end --&gt;")
}

func TestRender_EscapesFrontmatterFenceInBody(t *testing.T) {
	iss := sampleIssue()
	iss.Description = "before\n---\nafter"

	rendered := Render(iss)

	assert.Contains(t, rendered, "before\n\\---\nafter")
}

func TestFrontmatter_Fields(t *testing.T) {
	fm := Frontmatter(sampleIssue())

	assert.True(t, strings.HasPrefix(fm, "---\n"))
	assert.True(t, strings.HasSuffix(fm, "---\n"))
	assert.Contains(t, fm, "issue: PROJ-1")
	assert.Contains(t, fm, "project: PROJ")
	assert.Contains(t, fm, "created: \"2024-03-10\"")
	assert.Contains(t, fm, "- proj")
}

func TestFrontmatter_OmitsMutableState(t *testing.T) {
	// The frontmatter is only written at creation and then belongs to the
	// free region, so fields that change between runs would go stale there.
	// Live state is rendered inside the managed region.
	fm := Frontmatter(sampleIssue())

	assert.NotContains(t, fm, "status:")
	assert.NotContains(t, fm, "updated:")

	rendered := Render(sampleIssue())
	assert.Contains(t, rendered, "**Status**: In Progress")
	assert.Contains(t, rendered, "**Updated**: 2024-03-15 10:04")
}

func TestFilename_DerivedFromKeyOnly(t *testing.T) {
	iss := sampleIssue()
	iss.Title = "a completely different / title"

	assert.Equal(t, "PROJ-1.md", Filename(iss))
}
