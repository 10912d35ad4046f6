//go:build unit

package tracker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/logger"
)

func jiraIssueJSON(key string) string {
	return fmt.Sprintf(`{
		"key": %q,
		"fields": {
			"summary": "Fix the thing",
			"description": "It is broken.",
			"status": {"name": "In Progress"},
			"issuetype": {"name": "Bug"},
			"priority": {"name": "High"},
			"assignee": {"displayName": "Alice"},
			"reporter": {"displayName": "Bob"},
			"project": {"key": "PROJ", "name": "Project"},
			"created": "2024-03-10T08:00:00.000+0000",
			"updated": "2024-03-15T10:00:00.000+0000",
			"comment": {"comments": [
				{"author": {"displayName": "Alice"}, "body": "On it.", "created": "2024-03-15T09:30:00.000+0000"},
				{"author": {"displayName": "Bob"}, "body": "Any update?", "created": "2024-03-14T09:00:00.000+0000"}
			]}
		}
	}`, key)
}

func jiraPage(total int, issues ...string) string {
	return fmt.Sprintf(`{"startAt": 0, "maxResults": 50, "total": %d, "issues": [%s]}`,
		total, strings.Join(issues, ","))
}

func newJiraForServer(t *testing.T, url string) *Jira {
	t.Helper()
	t.Setenv(config.DefaultTokenEnv, "secret")
	return NewJira(config.TrackerConfig{
		Kind:     JiraName,
		BaseURL:  url,
		Email:    "me@example.com",
		Projects: []string{"PROJ"},
		Timezone: "UTC",
	}, logger.NewNoopLogger())
}

func decodeJQL(t *testing.T, r *http.Request) jiraSearchRequest {
	t.Helper()
	var req jiraSearchRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestJira_FindRelevantIssues_MergesReasonsAcrossQueries(t *testing.T) {
	var jqls []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jiraSearchPath, r.URL.Path)
		assert.Equal(t,
			"Basic "+base64.StdEncoding.EncodeToString([]byte("me@example.com:secret")),
			r.Header.Get("Authorization"))

		req := decodeJQL(t, r)
		jqls = append(jqls, req.JQL)

		switch {
		case strings.HasPrefix(req.JQL, "assignee"), strings.HasPrefix(req.JQL, "watcher"):
			fmt.Fprint(w, jiraPage(1, jiraIssueJSON("PROJ-1")))
		default:
			fmt.Fprint(w, jiraPage(0))
		}
	}))
	defer server.Close()

	jira := newJiraForServer(t, server.URL)
	since := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	issues, err := jira.FindRelevantIssues(context.Background(), since)
	require.NoError(t, err)

	// One search per relevance predicate, each carrying the watermark bound
	// and the project filter.
	require.Len(t, jqls, 5)
	for _, jql := range jqls {
		assert.Contains(t, jql, `updated >= "2024-03-15 09:30"`)
		assert.Contains(t, jql, `project IN ("PROJ")`)
		assert.True(t, strings.HasSuffix(jql, "ORDER BY updated ASC"))
	}

	// The issue matched twice comes back once with both reasons.
	require.Len(t, issues, 1)
	iss := issues[0]
	assert.Equal(t, "PROJ-1", iss.Key)
	assert.Equal(t, "PROJ", iss.ProjectKey)
	assert.Equal(t, "Fix the thing", iss.Title)
	assert.Equal(t, "In Progress", iss.Status)
	assert.Equal(t, "Alice", iss.Assignee)
	assert.Equal(t, server.URL+"/browse/PROJ-1", iss.URL)
	assert.True(t, iss.Reasons.Has(issue.ReasonAssigned))
	assert.True(t, iss.Reasons.Has(issue.ReasonWatching))
	assert.False(t, iss.Reasons.Has(issue.ReasonMentioned))

	// Comments come back sorted chronologically.
	require.Len(t, iss.Comments, 2)
	assert.Equal(t, "Bob", iss.Comments[0].Author)
	assert.Equal(t, "Alice", iss.Comments[1].Author)
}

func TestJira_FindRelevantIssues_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeJQL(t, r)
		if !strings.HasPrefix(req.JQL, "assignee") {
			fmt.Fprint(w, jiraPage(0))
			return
		}

		// Two results served one per page.
		switch req.StartAt {
		case 0:
			fmt.Fprint(w, jiraPage(2, jiraIssueJSON("PROJ-1")))
		default:
			fmt.Fprint(w, jiraPage(2, jiraIssueJSON("PROJ-2")))
		}
	}))
	defer server.Close()

	jira := newJiraForServer(t, server.URL)

	issues, err := jira.FindRelevantIssues(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	require.Len(t, issues, 2)
}

func TestJira_FindRelevantIssues_ToleratesMissingCommentedFunction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeJQL(t, r)
		if strings.HasPrefix(req.JQL, "issueFunction") {
			// ScriptRunner not installed.
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"errorMessages": ["Field 'issueFunction' does not exist"]}`)
			return
		}
		fmt.Fprint(w, jiraPage(1, jiraIssueJSON("PROJ-1")))
	}))
	defer server.Close()

	jira := newJiraForServer(t, server.URL)

	issues, err := jira.FindRelevantIssues(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.False(t, issues[0].Reasons.Has(issue.ReasonCommented))
}

func TestJira_FindRelevantIssues_AuthFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	jira := newJiraForServer(t, server.URL)

	_, err := jira.FindRelevantIssues(context.Background(), time.Now().Add(-time.Hour))

	assert.ErrorIs(t, err, issue.ErrAuth)
}

func TestJira_FindRelevantIssues_ServerErrorIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	jira := newJiraForServer(t, server.URL)

	_, err := jira.FindRelevantIssues(context.Background(), time.Now().Add(-time.Hour))

	assert.ErrorIs(t, err, issue.ErrNetwork)
}

func TestBuildJQL_WithoutProjects(t *testing.T) {
	t.Setenv(config.DefaultTokenEnv, "secret")
	jira := NewJira(config.TrackerConfig{
		Kind:     JiraName,
		BaseURL:  "https://example.atlassian.net",
		Timezone: "UTC",
	}, logger.NewNoopLogger())

	jql := jira.buildJQL("assignee = currentUser()", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	assert.Equal(t,
		`assignee = currentUser() AND updated >= "2024-03-15 09:30" ORDER BY updated ASC`,
		jql)
}

func TestBuildJQL_BoundInProfileTimezone(t *testing.T) {
	t.Setenv(config.DefaultTokenEnv, "secret")
	jira := NewJira(config.TrackerConfig{
		Kind:     JiraName,
		BaseURL:  "https://example.atlassian.net",
		Timezone: "America/New_York",
	}, logger.NewNoopLogger())

	// Jira reads naked JQL datetimes in the profile timezone, so the bound
	// is rendered there: 09:30 UTC is 05:30 EDT.
	jql := jira.buildJQL("assignee = currentUser()", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	assert.Contains(t, jql, `updated >= "2024-03-15 05:30"`)
}

func TestBuildJQL_UnknownTimezonePadsBoundWestward(t *testing.T) {
	t.Setenv(config.DefaultTokenEnv, "secret")
	jira := NewJira(config.TrackerConfig{
		Kind:    JiraName,
		BaseURL: "https://example.atlassian.net",
	}, logger.NewNoopLogger())

	// Without a profile timezone the bound backs off by the westernmost
	// offset so no profile can evaluate it past the checkpoint.
	jql := jira.buildJQL("assignee = currentUser()", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	assert.Contains(t, jql, `updated >= "2024-03-14 21:30"`)
}
