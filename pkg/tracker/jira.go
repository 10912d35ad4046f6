package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/logger"
)

const (
	// JiraName is the name identifier for the Jira tracker.
	JiraName = "jira"

	jiraSearchPath = "/rest/api/2/search"
	jiraPageSize   = 50
	jiraMaxIssues  = 1000

	// jiraTimeLayout is the timestamp format Jira Cloud returns.
	jiraTimeLayout = "2006-01-02T15:04:05.000-0700"
	// jiraJQLTimeLayout is the minute-precision format JQL accepts.
	jiraJQLTimeLayout = "2006-01-02 15:04"

	// jiraTimezoneSlack pads the JQL bound westward when the profile
	// timezone is unknown. Jira evaluates naked JQL datetimes in the
	// searching user's profile timezone; UTC-12 is the westernmost offset,
	// and over-fetching is harmless because note writes are idempotent.
	jiraTimezoneSlack = 12 * time.Hour
)

// jiraRelevanceQueries maps each relevance reason to its JQL predicate.
// The commented predicate needs the ScriptRunner issueFunction and is
// tolerated to fail on instances without it.
var jiraRelevanceQueries = []struct {
	reason issue.Reason
	jql    string
}{
	{issue.ReasonAssigned, "assignee = currentUser()"},
	{issue.ReasonMentioned, "comment ~ currentUser()"},
	{issue.ReasonCommented, `issueFunction in commented("by currentUser()")`},
	{issue.ReasonReported, "reporter = currentUser()"},
	{issue.ReasonWatching, "watcher = currentUser()"},
}

// Jira is the Jira Cloud tracker implementation.
type Jira struct {
	baseURL    string
	email      string
	token      string
	projects   []string
	location   *time.Location
	httpClient *http.Client
	logger     logger.Logger
}

// NewJira creates a new Jira tracker instance.
func NewJira(cfg config.TrackerConfig, logger logger.Logger) *Jira {
	var location *time.Location
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Logf("Warning: unknown timezone %q, padding query bound instead", cfg.Timezone)
		} else {
			location = loc
		}
	}

	return &Jira{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		email:      cfg.Email,
		token:      cfg.Token(),
		projects:   cfg.Projects,
		location:   location,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Name returns the name of the tracker.
func (j *Jira) Name() string {
	return JiraName
}

// FindRelevantIssues runs one JQL search per relevance reason and merges the
// results, unioning reasons on issues matched by several predicates.
func (j *Jira) FindRelevantIssues(ctx context.Context, since time.Time) ([]issue.Issue, error) {
	var all []issue.Issue

	for _, q := range jiraRelevanceQueries {
		jql := j.buildJQL(q.jql, since)

		found, err := j.search(ctx, jql, q.reason)
		if err != nil {
			// The commented predicate is an optional server extension.
			if q.reason == issue.ReasonCommented && !isFatalJiraErr(err) {
				j.logger.Logf("Commented-by-me search not supported by this Jira instance, skipping")
				continue
			}
			return nil, err
		}

		all = append(all, found...)
	}

	merged := issue.MergeByKey(all)
	for i := range merged {
		merged[i].SortComments()
	}

	return merged, nil
}

// buildJQL combines a relevance predicate with the watermark bound and the
// optional project filter.
func (j *Jira) buildJQL(predicate string, since time.Time) string {
	clauses := []string{
		predicate,
		fmt.Sprintf("updated >= %q", j.formatJQLBound(since)),
	}

	if len(j.projects) > 0 {
		quoted := make([]string, len(j.projects))
		for i, p := range j.projects {
			quoted[i] = `"` + p + `"`
		}
		clauses = append(clauses, fmt.Sprintf("project IN (%s)", strings.Join(quoted, ", ")))
	}

	return strings.Join(clauses, " AND ") + " ORDER BY updated ASC"
}

// formatJQLBound renders the watermark in the timezone Jira will evaluate it
// in. Without a configured profile timezone the bound is padded westward so
// no profile offset can push it past the checkpoint.
func (j *Jira) formatJQLBound(since time.Time) string {
	if j.location != nil {
		return since.In(j.location).Format(jiraJQLTimeLayout)
	}
	return since.UTC().Add(-jiraTimezoneSlack).Format(jiraJQLTimeLayout)
}

// jiraSearchRequest is the POST body for the Jira search endpoint.
type jiraSearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// jiraSearchResponse is the relevant subset of the Jira search response.
type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string     `json:"key"`
	Self   string     `json:"self"`
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Status      jiraName          `json:"status"`
	IssueType   jiraName          `json:"issuetype"`
	Priority    jiraName          `json:"priority"`
	Assignee    *jiraUser         `json:"assignee"`
	Reporter    *jiraUser         `json:"reporter"`
	Project     jiraProject       `json:"project"`
	Created     string            `json:"created"`
	Updated     string            `json:"updated"`
	Comment     *jiraCommentBlock `json:"comment"`
}

type jiraName struct {
	Name string `json:"name"`
}

type jiraUser struct {
	DisplayName string `json:"displayName"`
}

type jiraProject struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type jiraCommentBlock struct {
	Comments []jiraComment `json:"comments"`
}

type jiraComment struct {
	Author  jiraUser `json:"author"`
	Body    string   `json:"body"`
	Created string   `json:"created"`
}

// search pages through one JQL query and converts the results.
func (j *Jira) search(ctx context.Context, jql string, reason issue.Reason) ([]issue.Issue, error) {
	var issues []issue.Issue
	startAt := 0

	for {
		reqBody := jiraSearchRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: jiraPageSize,
			Fields: []string{
				"summary", "description", "status", "issuetype", "priority",
				"assignee", "reporter", "project", "created", "updated", "comment",
			},
		}

		resp, err := j.post(ctx, jiraSearchPath, reqBody)
		if err != nil {
			return nil, err
		}

		var searchResp jiraSearchResponse
		if err := json.Unmarshal(resp, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to parse jira response: %w", err)
		}

		for _, ji := range searchResp.Issues {
			converted, err := j.convertIssue(ji, reason)
			if err != nil {
				return nil, err
			}
			issues = append(issues, converted)
		}

		startAt += len(searchResp.Issues)
		if startAt >= searchResp.Total || len(searchResp.Issues) == 0 || startAt >= jiraMaxIssues {
			break
		}
	}

	return issues, nil
}

// post sends an authenticated JSON request and classifies transport and
// status failures into the tracker error taxonomy.
func (j *Jira) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jira request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create jira request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if j.token != "" {
		cred := j.token
		if j.email != "" {
			cred = j.email + ":" + j.token
		}
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(cred)))
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", issue.ErrNetwork, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", issue.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return respBody, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: jira returned status %d", issue.ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: jira returned status 404", issue.ErrNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: jira returned status %d", issue.ErrNetwork, resp.StatusCode)
	default:
		return nil, fmt.Errorf("jira API returned status %d: %s", resp.StatusCode, string(respBody))
	}
}

// convertIssue maps a Jira API issue onto the domain model.
func (j *Jira) convertIssue(ji jiraIssue, reason issue.Reason) (issue.Issue, error) {
	created, err := parseJiraTime(ji.Fields.Created)
	if err != nil {
		return issue.Issue{}, fmt.Errorf("issue %s: invalid created timestamp: %w", ji.Key, err)
	}
	updated, err := parseJiraTime(ji.Fields.Updated)
	if err != nil {
		return issue.Issue{}, fmt.Errorf("issue %s: invalid updated timestamp: %w", ji.Key, err)
	}

	converted := issue.Issue{
		ProjectKey:  ji.Fields.Project.Key,
		ProjectName: ji.Fields.Project.Name,
		Key:         ji.Key,
		Title:       ji.Fields.Summary,
		Description: ji.Fields.Description,
		Type:        ji.Fields.IssueType.Name,
		Status:      ji.Fields.Status.Name,
		Priority:    ji.Fields.Priority.Name,
		URL:         j.baseURL + "/browse/" + ji.Key,
		Created:     created,
		Updated:     updated,
		Reasons:     issue.NewReasonSet(reason),
	}

	if ji.Fields.Assignee != nil {
		converted.Assignee = ji.Fields.Assignee.DisplayName
	}
	if ji.Fields.Reporter != nil {
		converted.Reporter = ji.Fields.Reporter.DisplayName
	}

	if ji.Fields.Comment != nil {
		for _, jc := range ji.Fields.Comment.Comments {
			commentCreated, err := parseJiraTime(jc.Created)
			if err != nil {
				return issue.Issue{}, fmt.Errorf("issue %s: invalid comment timestamp: %w", ji.Key, err)
			}
			converted.Comments = append(converted.Comments, issue.Comment{
				Author:  jc.Author.DisplayName,
				Body:    jc.Body,
				Created: commentCreated,
			})
		}
	}

	return converted, nil
}

// parseJiraTime parses a Jira timestamp, tolerating the RFC3339 variant some
// proxies return.
func parseJiraTime(raw string) (time.Time, error) {
	if t, err := time.Parse(jiraTimeLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// isFatalJiraErr reports whether an error is part of the fatal taxonomy
// rather than a per-query rejection.
func isFatalJiraErr(err error) bool {
	return errors.Is(err, issue.ErrAuth) || errors.Is(err, issue.ErrNetwork)
}
