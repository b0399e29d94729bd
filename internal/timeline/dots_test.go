package timeline_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldview/eldview/internal/timeline"
)

// utcMinus3 is the zone of the sample day; 09:45Z is 06:45 local.
var utcMinus3 = time.FixedZone("UTC-3", -3*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.July, 3, hour, minute, 0, 0, utcMinus3)
}

// sampleDay is one driver day, already in chronological order.
func sampleDay() []timeline.Entry {
	return []timeline.Entry{
		{ID: 165, Timestamp: at(6, 45), Status: timeline.StatusOffDuty},
		{ID: 166, Timestamp: at(7, 0), Status: timeline.StatusOnDuty},
		{ID: 167, Timestamp: at(7, 15), Status: timeline.StatusDriving},
		{ID: 168, Timestamp: at(9, 30), Status: timeline.StatusOnDuty},
		{ID: 169, Timestamp: at(10, 0), Status: timeline.StatusDriving},
		{ID: 170, Timestamp: at(12, 30), Status: timeline.StatusOffDuty},
	}
}

func shuffled(entries []timeline.Entry) []timeline.Entry {
	return []timeline.Entry{entries[3], entries[0], entries[5], entries[1], entries[4], entries[2]}
}

func TestDotEvents_Empty(t *testing.T) {
	assert.Empty(t, timeline.DotEvents(nil, utcMinus3))
	assert.Empty(t, timeline.DotEvents([]timeline.Entry{}, utcMinus3))
	assert.Empty(t, timeline.GlobalTimeline(nil, utcMinus3))
	assert.Empty(t, timeline.GroupByStatus(nil, utcMinus3))
}

func TestDotEvents_SingleEntry(t *testing.T) {
	entries := []timeline.Entry{
		{ID: 165, Timestamp: time.Date(2025, time.July, 3, 9, 45, 0, 0, time.UTC), Status: timeline.StatusOffDuty},
	}

	events := timeline.DotEvents(entries, utcMinus3)

	assert.Equal(t, []timeline.DotEvent{
		{Kind: timeline.KindMidnight, SourceID: 165, Hour: 0, Percentage: 0, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindRecord, SourceID: 165, Hour: 6, Percentage: 75, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindEndOfDay, SourceID: 165, Hour: 23, Percentage: 100, Status: timeline.StatusOffDuty},
	}, events)
}

func TestDotEvents_CarryToNextChange(t *testing.T) {
	entries := sampleDay()[:2]

	events := timeline.DotEvents(entries, utcMinus3)

	assert.Contains(t, events, timeline.DotEvent{
		Kind: timeline.KindCarry, SourceID: 165, Hour: 7, Percentage: 0, Status: timeline.StatusOffDuty,
	})
	assert.Contains(t, events, timeline.DotEvent{
		Kind: timeline.KindRecord, SourceID: 166, Hour: 7, Percentage: 0, Status: timeline.StatusOnDuty,
	})
	assert.Contains(t, events, timeline.DotEvent{
		Kind: timeline.KindEndOfDay, SourceID: 166, Hour: 23, Percentage: 100, Status: timeline.StatusOnDuty,
	})
	for _, e := range events {
		assert.False(t, e.Kind == timeline.KindCarry && e.SourceID == 166, "last entry must not be carried")
	}
}

func TestDotEvents_FullDay(t *testing.T) {
	events := timeline.DotEvents(sampleDay(), utcMinus3)

	want := []timeline.DotEvent{
		{Kind: timeline.KindMidnight, SourceID: 165, Hour: 0, Percentage: 0, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindRecord, SourceID: 165, Hour: 6, Percentage: 75, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindCarry, SourceID: 165, Hour: 7, Percentage: 0, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindRecord, SourceID: 166, Hour: 7, Percentage: 0, Status: timeline.StatusOnDuty},
		{Kind: timeline.KindCarry, SourceID: 166, Hour: 7, Percentage: 25, Status: timeline.StatusOnDuty},
		{Kind: timeline.KindRecord, SourceID: 167, Hour: 7, Percentage: 25, Status: timeline.StatusDriving},
		{Kind: timeline.KindCarry, SourceID: 167, Hour: 9, Percentage: 50, Status: timeline.StatusDriving},
		{Kind: timeline.KindRecord, SourceID: 168, Hour: 9, Percentage: 50, Status: timeline.StatusOnDuty},
		{Kind: timeline.KindCarry, SourceID: 168, Hour: 10, Percentage: 0, Status: timeline.StatusOnDuty},
		{Kind: timeline.KindRecord, SourceID: 169, Hour: 10, Percentage: 0, Status: timeline.StatusDriving},
		{Kind: timeline.KindCarry, SourceID: 169, Hour: 12, Percentage: 50, Status: timeline.StatusDriving},
		{Kind: timeline.KindRecord, SourceID: 170, Hour: 12, Percentage: 50, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindEndOfDay, SourceID: 170, Hour: 23, Percentage: 100, Status: timeline.StatusOffDuty},
	}
	assert.Equal(t, want, events)
}

func TestDotEvents_UnsortedInputIsSorted(t *testing.T) {
	assert.Equal(t,
		timeline.DotEvents(sampleDay(), utcMinus3),
		timeline.DotEvents(shuffled(sampleDay()), utcMinus3),
	)
}

func TestDotEvents_DoesNotReorderInput(t *testing.T) {
	input := shuffled(sampleDay())
	before := append([]timeline.Entry(nil), input...)

	timeline.DotEvents(input, utcMinus3)

	assert.Equal(t, before, input)
}

func TestDotEvents_Idempotent(t *testing.T) {
	input := shuffled(sampleDay())
	assert.Equal(t, timeline.DotEvents(input, utcMinus3), timeline.DotEvents(input, utcMinus3))
}

func TestDotEvents_DuplicatesCollapse(t *testing.T) {
	entries := []timeline.Entry{
		{ID: 165, Timestamp: at(6, 45), Status: timeline.StatusOffDuty},
		{ID: 166, Timestamp: at(6, 50), Status: timeline.StatusOffDuty},
	}

	events := timeline.DotEvents(entries, utcMinus3)

	require.Len(t, events, 3)
	assert.Equal(t, timeline.KindMidnight, events[0].Kind)
	assert.Equal(t, timeline.DotEvent{
		Kind: timeline.KindRecord, SourceID: 165, Hour: 6, Percentage: 75, Status: timeline.StatusOffDuty,
	}, events[1])
	assert.Equal(t, timeline.KindEndOfDay, events[2].Kind)
	assert.Equal(t, int64(166), events[2].SourceID)
}

func TestDotEvents_MidnightWinsOverRecordAtMidnight(t *testing.T) {
	entries := []timeline.Entry{
		{ID: 7, Timestamp: at(0, 5), Status: timeline.StatusSleeperBerth},
	}

	events := timeline.DotEvents(entries, utcMinus3)

	require.Len(t, events, 2)
	assert.Equal(t, timeline.KindMidnight, events[0].Kind)
	assert.Equal(t, timeline.KindEndOfDay, events[1].Kind)
}

func TestDotEvents_MissingIDsDefaultToZero(t *testing.T) {
	entries := []timeline.Entry{
		{Timestamp: at(8, 0), Status: timeline.StatusDriving},
		{Timestamp: at(9, 0), Status: timeline.StatusOnDuty},
	}

	for _, e := range timeline.DotEvents(entries, utcMinus3) {
		assert.Zero(t, e.SourceID)
	}
}

func TestDotEvents_EqualTimestampsKeepInputOrder(t *testing.T) {
	entries := []timeline.Entry{
		{ID: 1, Timestamp: at(8, 0), Status: timeline.StatusDriving},
		{ID: 2, Timestamp: at(8, 0), Status: timeline.StatusOnDuty},
	}

	events := timeline.DotEvents(entries, utcMinus3)

	assert.Equal(t, []timeline.DotEvent{
		{Kind: timeline.KindMidnight, SourceID: 1, Hour: 0, Percentage: 0, Status: timeline.StatusDriving},
		{Kind: timeline.KindRecord, SourceID: 1, Hour: 8, Percentage: 0, Status: timeline.StatusDriving},
		{Kind: timeline.KindRecord, SourceID: 2, Hour: 8, Percentage: 0, Status: timeline.StatusOnDuty},
		{Kind: timeline.KindEndOfDay, SourceID: 2, Hour: 23, Percentage: 100, Status: timeline.StatusOnDuty},
	}, events)
}

func TestDotEvents_LocationChangesHours(t *testing.T) {
	entries := []timeline.Entry{
		{ID: 1, Timestamp: time.Date(2025, time.July, 3, 9, 45, 0, 0, time.UTC), Status: timeline.StatusDriving},
	}

	utc := timeline.DotEvents(entries, time.UTC)
	local := timeline.DotEvents(entries, utcMinus3)
	nilLoc := timeline.DotEvents(entries, nil)

	assert.Equal(t, 9, utc[1].Hour)
	assert.Equal(t, 6, local[1].Hour)
	assert.Equal(t, utc, nilLoc)
}

func TestQuarter(t *testing.T) {
	tests := []struct {
		minute int
		want   int
	}{
		{0, 0}, {14, 0}, {15, 25}, {29, 25}, {30, 50}, {44, 50}, {45, 75}, {59, 75},
	}
	for _, tt := range tests {
		hour, pct := timeline.Quarter(at(5, tt.minute), utcMinus3)
		assert.Equal(t, 5, hour)
		assert.Equal(t, tt.want, pct, "minute %d", tt.minute)
	}
}

func TestGlobalTimeline_LeftToRight(t *testing.T) {
	events := timeline.GlobalTimeline(shuffled(sampleDay()), utcMinus3)

	require.Len(t, events, 13)
	assert.Equal(t, timeline.KindMidnight, events[0].Kind)
	assert.Equal(t, timeline.KindEndOfDay, events[len(events)-1].Kind)

	// ties keep construction order: the carry before the new status
	assert.Equal(t, timeline.StatusOffDuty, events[2].Status)
	assert.Equal(t, timeline.StatusOnDuty, events[3].Status)
	assert.Equal(t, 7, events[3].Hour)
}

func TestGroupByStatus(t *testing.T) {
	grouped := timeline.GroupByStatus(sampleDay(), utcMinus3)

	assert.Equal(t, map[int][]int{0: {0}, 6: {75}, 7: {0}, 12: {50}, 23: {100}}, grouped[timeline.StatusOffDuty])
	assert.Equal(t, map[int][]int{7: {0, 25}, 9: {50}, 10: {0}}, grouped[timeline.StatusOnDuty])
	assert.Equal(t, map[int][]int{7: {25}, 9: {50}, 10: {0}, 12: {50}}, grouped[timeline.StatusDriving])
	assert.NotContains(t, grouped, timeline.StatusSleeperBerth)
}

func TestHasDotAndDotPosition(t *testing.T) {
	events := timeline.DotEvents(sampleDay(), utcMinus3)

	assert.True(t, timeline.HasDot(events, 0, timeline.StatusOffDuty))
	assert.True(t, timeline.HasDot(events, 7, timeline.StatusOnDuty))
	assert.False(t, timeline.HasDot(events, 6, timeline.StatusDriving))

	assert.Equal(t, 75, timeline.DotPosition(events, 6, timeline.StatusOffDuty))
	assert.Equal(t, 0, timeline.DotPosition(events, 7, timeline.StatusOnDuty))
	assert.Equal(t, 50, timeline.DotPosition(events, 12, timeline.StatusOffDuty))
	assert.Equal(t, 0, timeline.DotPosition(events, 15, timeline.StatusSleeperBerth))
	assert.Equal(t, 0, timeline.DotPosition(nil, 10, timeline.StatusOffDuty))
}

func TestDotEvents_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	day := time.Date(2025, time.July, 3, 0, 0, 0, 0, utcMinus3)

	for run := 0; run < 200; run++ {
		n := rng.IntN(12)
		entries := make([]timeline.Entry, n)
		for i := range entries {
			entries[i] = timeline.Entry{
				ID:        int64(rng.IntN(5)),
				Timestamp: day.Add(time.Duration(rng.IntN(24*60)) * time.Minute),
				Status:    timeline.Statuses[rng.IntN(len(timeline.Statuses))],
			}
		}

		events := timeline.DotEvents(entries, utcMinus3)
		seen := make(map[[3]any]bool)
		for _, e := range events {
			k := [3]any{e.Hour, e.Percentage, e.Status}
			require.False(t, seen[k], "duplicate dot %+v", e)
			seen[k] = true
		}

		global := timeline.GlobalTimeline(entries, utcMinus3)
		require.Len(t, global, len(events))
		for i := 1; i < len(global); i++ {
			prev, cur := global[i-1], global[i]
			require.True(t, prev.Hour < cur.Hour || (prev.Hour == cur.Hour && prev.Percentage <= cur.Percentage))
		}

		totals := timeline.HourTotals(entries, day, utcMinus3)
		require.Len(t, totals, 4)
		require.Equal(t, 24, totals.Sum())
	}
}
