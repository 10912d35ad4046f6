// Package issue provides data structures and error types for tracker issues.
package issue

import (
	"sort"
	"time"
)

// Reason identifies why an issue is relevant to the current user.
type Reason string

// Relevance reasons. One issue may carry several at once.
const (
	ReasonAssigned  Reason = "assigned"
	ReasonMentioned Reason = "mentioned"
	ReasonCommented Reason = "commented"
	ReasonReported  Reason = "reported"
	ReasonWatching  Reason = "watching"
)

// reasonOrder fixes the display order of reasons in notes and digests.
var reasonOrder = []Reason{
	ReasonAssigned,
	ReasonMentioned,
	ReasonCommented,
	ReasonReported,
	ReasonWatching,
}

// Label returns a human-readable label for the reason.
func (r Reason) Label() string {
	switch r {
	case ReasonAssigned:
		return "Assigned to me"
	case ReasonMentioned:
		return "Mentioned in a comment"
	case ReasonCommented:
		return "Commented by me"
	case ReasonReported:
		return "Reported by me"
	case ReasonWatching:
		return "Watched by me"
	default:
		return string(r)
	}
}

// ReasonSet is a set of relevance reasons.
type ReasonSet map[Reason]struct{}

// NewReasonSet creates a set containing the given reasons.
func NewReasonSet(reasons ...Reason) ReasonSet {
	set := make(ReasonSet, len(reasons))
	for _, r := range reasons {
		set[r] = struct{}{}
	}
	return set
}

// Add adds a reason to the set.
func (s ReasonSet) Add(r Reason) {
	s[r] = struct{}{}
}

// Has checks whether the set contains the given reason.
func (s ReasonSet) Has(r Reason) bool {
	_, ok := s[r]
	return ok
}

// Union merges another set into this one.
func (s ReasonSet) Union(other ReasonSet) {
	for r := range other {
		s[r] = struct{}{}
	}
}

// Sorted returns the reasons in fixed display order.
func (s ReasonSet) Sorted() []Reason {
	sorted := make([]Reason, 0, len(s))
	for _, r := range reasonOrder {
		if s.Has(r) {
			sorted = append(sorted, r)
		}
	}
	return sorted
}

// Comment represents a single comment on an issue.
type Comment struct {
	Author  string
	Body    string
	Created time.Time
}

// Issue represents a tracker issue relevant to the current user, with its
// full comment thread attached.
type Issue struct {
	ProjectKey  string
	ProjectName string
	Key         string
	Title       string
	Description string
	Type        string
	Status      string
	Priority    string
	Assignee    string
	Reporter    string
	URL         string
	Created     time.Time
	Updated     time.Time
	Reasons     ReasonSet
	Comments    []Comment
}

// LatestComment returns the most recent comment, or nil if there are none.
func (i *Issue) LatestComment() *Comment {
	if len(i.Comments) == 0 {
		return nil
	}
	latest := &i.Comments[0]
	for idx := range i.Comments {
		if i.Comments[idx].Created.After(latest.Created) {
			latest = &i.Comments[idx]
		}
	}
	return latest
}

// SortComments orders the comment thread chronologically, oldest first.
func (i *Issue) SortComments() {
	sort.SliceStable(i.Comments, func(a, b int) bool {
		return i.Comments[a].Created.Before(i.Comments[b].Created)
	})
}

// SortForProcessing orders issues by update timestamp ascending, with issue
// key as tiebreak, so digest ordering is deterministic across runs.
func SortForProcessing(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].Updated.Equal(issues[b].Updated) {
			return issues[a].Key < issues[b].Key
		}
		return issues[a].Updated.Before(issues[b].Updated)
	})
}

// MergeByKey deduplicates issues by key, unioning relevance reasons and
// keeping the entry with the most recent update timestamp.
func MergeByKey(issues []Issue) []Issue {
	byKey := make(map[string]int)
	var merged []Issue

	for _, iss := range issues {
		idx, seen := byKey[iss.Key]
		if !seen {
			if iss.Reasons == nil {
				iss.Reasons = NewReasonSet()
			}
			byKey[iss.Key] = len(merged)
			merged = append(merged, iss)
			continue
		}

		merged[idx].Reasons.Union(iss.Reasons)
		if iss.Updated.After(merged[idx].Updated) {
			reasons := merged[idx].Reasons
			merged[idx] = iss
			merged[idx].Reasons = reasons
		}
	}

	return merged
}
