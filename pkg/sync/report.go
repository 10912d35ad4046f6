package sync

import (
	"fmt"
	"strings"
	"time"
)

// Report summarizes one sync run.
type Report struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Since          time.Time
	FirstRun       bool
	Processed      int
	Failed         []string
	DigestsTouched []string
	Checkpoint     time.Time
	CheckpointSet  bool
}

// Summary returns a one-paragraph human-readable account of the run.
func (r Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s: %d issue(s) processed", r.RunID, r.Processed)
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", len(r.Failed), strings.Join(r.Failed, ", "))
	}
	if len(r.DigestsTouched) > 0 {
		fmt.Fprintf(&b, ", %d digest(s) updated", len(r.DigestsTouched))
	}
	if r.CheckpointSet {
		fmt.Fprintf(&b, ", checkpoint advanced to %s", r.Checkpoint.UTC().Format(time.RFC3339))
	} else {
		b.WriteString(", checkpoint unchanged")
	}
	fmt.Fprintf(&b, " in %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	return b.String()
}
