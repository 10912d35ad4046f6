package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tcharvin/issuevault/pkg/digest"
	"github.com/tcharvin/issuevault/pkg/issue"
	"github.com/tcharvin/issuevault/pkg/note"
	"github.com/tcharvin/issuevault/pkg/vault"
)

// Run executes one sync cycle: lock the vault, load the checkpoint, fetch
// issues updated since it, materialize their notes, update digests, and
// advance the checkpoint.
func (s *realSyncer) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}

	isDir, err := s.fs.IsDir(s.config.VaultPath)
	if err != nil || !isDir {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("%w: %s", ErrVaultMissing, s.config.VaultPath)
	}

	unlock, err := s.fs.FileLock(s.config.LockPath())
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("%w: %w", ErrVaultLocked, err)
	}
	defer unlock()

	prev, hasPrev, err := s.checkpoints.Load()
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	report.Since = s.effectiveSince(prev, hasPrev, report.StartedAt)
	report.FirstRun = !hasPrev
	s.logger.Logf("Syncing issues updated since %s (run %s)", report.Since, report.RunID)

	issues, err := s.tracker.FindRelevantIssues(ctx, report.Since)
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("%w: %w", ErrTrackerQuery, err)
	}

	issue.SortForProcessing(issues)
	s.logger.Logf("Fetched %d relevant issue(s)", len(issues))

	entries, outcomes := s.writeNotes(issues)
	report.Processed = len(entries)
	for _, o := range outcomes {
		if o.err != nil {
			report.Failed = append(report.Failed, o.key)
		}
	}

	touched, err := s.aggregator.Aggregate(entries)
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("failed to aggregate digests: %w", err)
	}
	report.DigestsTouched = touched

	watermark, ok := nextWatermark(outcomes, prev, hasPrev, report.StartedAt)
	if ok {
		if err := s.checkpoints.Save(watermark); err != nil {
			report.FinishedAt = s.now()
			return report, fmt.Errorf("%w: %w", ErrCheckpointSave, err)
		}
		report.Checkpoint = watermark
		report.CheckpointSet = true
	}

	report.FinishedAt = s.now()
	s.logger.Logf("%s", report.Summary())

	return report, nil
}

// outcome records the per-issue result of a run, in processing order.
type outcome struct {
	key     string
	updated time.Time
	err     error
}

// writeNotes renders and upserts one note per issue. A failure on one issue
// is logged and skipped; the issue is retried next run because the
// checkpoint never advances past it.
func (s *realSyncer) writeNotes(issues []issue.Issue) ([]digest.Entry, []outcome) {
	var entries []digest.Entry
	outcomes := make([]outcome, 0, len(issues))

	for _, iss := range issues {
		path := vault.NotePath(s.config.BasePath(), iss.ProjectKey, note.Filename(iss))

		created, err := s.vault.UpsertNote(path, note.Frontmatter(iss), note.Render(iss))
		if err != nil {
			s.logger.Logf("Failed to write note for %s, skipping this run: %v", iss.Key, err)
			outcomes = append(outcomes, outcome{key: iss.Key, updated: iss.Updated, err: err})
			continue
		}

		if created {
			s.logger.Logf("Created note for %s", iss.Key)
		} else {
			s.logger.Logf("Updated note for %s", iss.Key)
		}

		outcomes = append(outcomes, outcome{key: iss.Key, updated: iss.Updated})
		entries = append(entries, digest.NewEntry(iss, s.noteLink(iss)))
	}

	return entries, outcomes
}

// noteLink returns the vault-relative wikilink target of an issue's note.
func (s *realSyncer) noteLink(iss issue.Issue) string {
	return s.config.BaseFolder + "/" + iss.ProjectKey + "/" + iss.Key
}

// effectiveSince bounds the query window: the stored checkpoint when one
// exists, the configured lookback on first run. A stale checkpoint is never
// moved forward; it may sit below a failed issue that has to be re-fetched
// however long the gap since the last run.
func (s *realSyncer) effectiveSince(prev time.Time, hasPrev bool, start time.Time) time.Time {
	if hasPrev {
		return prev
	}

	lookback := s.config.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	return start.AddDate(0, 0, -lookback)
}
