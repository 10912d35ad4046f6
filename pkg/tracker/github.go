package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/logger"
)

const (
	// GitHubName is the name identifier for the GitHub tracker.
	GitHubName = "github"

	githubPageSize = 100
)

// githubRelevanceFilters maps the GitHub issue list filters onto relevance
// reasons. GitHub has no commented-by-me filter; such issues surface through
// the subscribed filter instead.
var githubRelevanceFilters = []struct {
	filter string
	reason issue.Reason
}{
	{"assigned", issue.ReasonAssigned},
	{"mentioned", issue.ReasonMentioned},
	{"created", issue.ReasonReported},
	{"subscribed", issue.ReasonWatching},
}

// GitHub is the GitHub tracker implementation.
type GitHub struct {
	client   *github.Client
	projects []string
	logger   logger.Logger
}

// NewGitHub creates a new GitHub tracker instance.
func NewGitHub(cfg config.TrackerConfig, logger logger.Logger) *GitHub {
	client := github.NewClient(nil)
	if token := cfg.Token(); token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHub{
		client:   client,
		projects: cfg.Projects,
		logger:   logger,
	}
}

// Name returns the name of the tracker.
func (g *GitHub) Name() string {
	return GitHubName
}

// FindRelevantIssues lists the authenticated user's issues once per
// relevance filter, merges the results and attaches comment threads.
func (g *GitHub) FindRelevantIssues(ctx context.Context, since time.Time) ([]issue.Issue, error) {
	var all []issue.Issue

	for _, f := range githubRelevanceFilters {
		found, err := g.list(ctx, f.filter, f.reason, since)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}

	merged := issue.MergeByKey(all)

	for i := range merged {
		if err := g.attachComments(ctx, &merged[i]); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

// list pages through one relevance filter of the authenticated user's issues.
func (g *GitHub) list(ctx context.Context, filter string, reason issue.Reason, since time.Time) ([]issue.Issue, error) {
	opts := &github.IssueListOptions{
		Filter:    filter,
		State:     "all",
		Since:     since,
		Sort:      "updated",
		Direction: "asc",
		ListOptions: github.ListOptions{
			PerPage: githubPageSize,
		},
	}

	var issues []issue.Issue
	for {
		page, resp, err := g.client.Issues.List(ctx, false, opts)
		if err != nil {
			return nil, classifyGitHubError(err, resp)
		}

		for _, ghi := range page {
			if ghi.GetRepository() == nil {
				continue
			}
			if !g.projectAllowed(ghi.GetRepository().GetName()) {
				continue
			}
			issues = append(issues, convertGitHubIssue(ghi, reason))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// attachComments fetches the full comment thread for one issue.
func (g *GitHub) attachComments(ctx context.Context, iss *issue.Issue) error {
	owner, repo, number, ok := splitGitHubKey(iss)
	if !ok {
		return nil
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}

	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return classifyGitHubError(err, resp)
		}

		for _, c := range comments {
			iss.Comments = append(iss.Comments, issue.Comment{
				Author:  c.GetUser().GetLogin(),
				Body:    c.GetBody(),
				Created: c.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	iss.SortComments()
	return nil
}

// projectAllowed applies the optional repository filter from configuration.
func (g *GitHub) projectAllowed(repoName string) bool {
	if len(g.projects) == 0 {
		return true
	}
	for _, p := range g.projects {
		if strings.EqualFold(p, repoName) {
			return true
		}
	}
	return false
}

// convertGitHubIssue maps a GitHub API issue onto the domain model. The
// repository name acts as the project key and the issue key is derived from
// it, e.g. "myrepo-42".
func convertGitHubIssue(ghi *github.Issue, reason issue.Reason) issue.Issue {
	repo := ghi.GetRepository()

	issueType := "Issue"
	if ghi.IsPullRequest() {
		issueType = "Pull Request"
	}

	return issue.Issue{
		ProjectKey:  repo.GetName(),
		ProjectName: repo.GetFullName(),
		Key:         fmt.Sprintf("%s-%d", repo.GetName(), ghi.GetNumber()),
		Title:       ghi.GetTitle(),
		Description: ghi.GetBody(),
		Type:        issueType,
		Status:      ghi.GetState(),
		Assignee:    ghi.GetAssignee().GetLogin(),
		Reporter:    ghi.GetUser().GetLogin(),
		URL:         ghi.GetHTMLURL(),
		Created:     ghi.GetCreatedAt().Time,
		Updated:     ghi.GetUpdatedAt().Time,
		Reasons:     issue.NewReasonSet(reason),
	}
}

// splitGitHubKey recovers owner, repository and issue number for API calls.
func splitGitHubKey(iss *issue.Issue) (owner, repo string, number int, ok bool) {
	parts := strings.SplitN(iss.ProjectName, "/", 2)
	if len(parts) != 2 {
		return "", "", 0, false
	}
	owner, repo = parts[0], parts[1]

	idx := strings.LastIndex(iss.Key, "-")
	if idx < 0 {
		return "", "", 0, false
	}
	if _, err := fmt.Sscanf(iss.Key[idx+1:], "%d", &number); err != nil {
		return "", "", 0, false
	}

	return owner, repo, number, true
}

// classifyGitHubError maps GitHub API failures onto the tracker error taxonomy.
func classifyGitHubError(err error, resp *github.Response) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: github returned status %d", issue.ErrAuth, resp.StatusCode)
		case http.StatusNotFound:
			return fmt.Errorf("%w: github returned status 404", issue.ErrNotFound)
		}
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return fmt.Errorf("github API error: %w", err)
	}

	return fmt.Errorf("%w: %w", issue.ErrNetwork, err)
}
