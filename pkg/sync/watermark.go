package sync

import "time"

// nextWatermark computes the checkpoint to save after a run.
//
// On full success the watermark is max(latest update timestamp, run start).
// When some issues failed to write, the watermark is capped strictly below
// the earliest failure so every failed issue is re-fetched next run (the
// query bound is inclusive). The watermark never moves backwards; when no
// safe value above the previous checkpoint exists, ok is false and the
// checkpoint is left untouched.
func nextWatermark(outcomes []outcome, prev time.Time, hasPrev bool, runStart time.Time) (time.Time, bool) {
	var earliestFailure time.Time
	failed := false
	for _, o := range outcomes {
		if o.err != nil && (!failed || o.updated.Before(earliestFailure)) {
			earliestFailure = o.updated
			failed = true
		}
	}

	var watermark time.Time

	if !failed {
		watermark = runStart
		for _, o := range outcomes {
			if o.updated.After(watermark) {
				watermark = o.updated
			}
		}
	} else {
		found := false
		for _, o := range outcomes {
			if o.err != nil || !o.updated.Before(earliestFailure) {
				continue
			}
			if !found || o.updated.After(watermark) {
				watermark = o.updated
				found = true
			}
		}
		if !found {
			return time.Time{}, false
		}
	}

	if hasPrev && !watermark.After(prev) {
		return time.Time{}, false
	}

	return watermark, true
}
