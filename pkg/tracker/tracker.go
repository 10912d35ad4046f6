// Package tracker provides gateways to the issue trackers issues are
// mirrored from.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/logger"
)

//go:generate mockgen -source=tracker.go -destination=mocks/tracker.gen.go -package=mocks

// Tracker interface defines the methods that all tracker implementations must provide.
type Tracker interface {
	// Name returns the name of the tracker
	Name() string

	// FindRelevantIssues fetches the issues relevant to the current user
	// updated since the given time, each with its full comment thread
	// attached. Errors are classified as issue.ErrAuth, issue.ErrNetwork
	// or issue.ErrNotFound.
	FindRelevantIssues(ctx context.Context, since time.Time) ([]issue.Issue, error)
}

// Manager manages tracker implementations and provides a unified interface.
type Manager struct {
	trackers map[string]Tracker
	logger   logger.Logger
}

// NewManager creates a new tracker manager with registered tracker implementations.
func NewManager(cfg config.TrackerConfig, logger logger.Logger) *Manager {
	m := &Manager{
		trackers: make(map[string]Tracker),
		logger:   logger,
	}

	// Register tracker implementations
	jira := NewJira(cfg, logger)
	m.trackers[jira.Name()] = jira

	github := NewGitHub(cfg, logger)
	m.trackers[github.Name()] = github

	return m
}

// GetTracker returns the tracker implementation for the given name.
func (m *Manager) GetTracker(name string) (Tracker, error) {
	tracker, exists := m.trackers[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTracker, name)
	}
	return tracker, nil
}
