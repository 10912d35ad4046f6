//go:build unit

package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeByKey_UnionsReasons(t *testing.T) {
	issues := []Issue{
		{Key: "PROJ-1", Updated: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), Reasons: NewReasonSet(ReasonAssigned)},
		{Key: "PROJ-1", Updated: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), Reasons: NewReasonSet(ReasonWatching)},
	}

	merged := MergeByKey(issues)

	assert.Len(t, merged, 1)
	assert.True(t, merged[0].Reasons.Has(ReasonAssigned))
	assert.True(t, merged[0].Reasons.Has(ReasonWatching))
}

func TestMergeByKey_KeepsLatestState(t *testing.T) {
	issues := []Issue{
		{Key: "PROJ-1", Status: "Open", Updated: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), Reasons: NewReasonSet(ReasonAssigned)},
		{Key: "PROJ-1", Status: "Done", Updated: time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC), Reasons: NewReasonSet(ReasonMentioned)},
	}

	merged := MergeByKey(issues)

	assert.Len(t, merged, 1)
	assert.Equal(t, "Done", merged[0].Status)
	assert.True(t, merged[0].Reasons.Has(ReasonAssigned))
	assert.True(t, merged[0].Reasons.Has(ReasonMentioned))
}

func TestSortForProcessing_OrdersByUpdatedThenKey(t *testing.T) {
	t1 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC)

	issues := []Issue{
		{Key: "B-2", Updated: t2},
		{Key: "A-2", Updated: t1},
		{Key: "A-1", Updated: t1},
	}

	SortForProcessing(issues)

	assert.Equal(t, "A-1", issues[0].Key)
	assert.Equal(t, "A-2", issues[1].Key)
	assert.Equal(t, "B-2", issues[2].Key)
}

func TestLatestComment(t *testing.T) {
	iss := Issue{
		Comments: []Comment{
			{Author: "alice", Created: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)},
			{Author: "bob", Created: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)},
			{Author: "carol", Created: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)},
		},
	}

	latest := iss.LatestComment()

	assert.NotNil(t, latest)
	assert.Equal(t, "bob", latest.Author)
}

func TestLatestComment_Empty(t *testing.T) {
	iss := Issue{}
	assert.Nil(t, iss.LatestComment())
}

func TestReasonSet_SortedIsStable(t *testing.T) {
	set := NewReasonSet(ReasonWatching, ReasonAssigned, ReasonReported)

	sorted := set.Sorted()

	assert.Equal(t, []Reason{ReasonAssigned, ReasonReported, ReasonWatching}, sorted)
}
