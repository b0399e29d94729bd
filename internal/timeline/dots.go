package timeline

import (
	"slices"
	"time"
)

// Kind tells where a dot event came from.
type Kind string

const (
	// KindRecord is the dot of a status change itself.
	KindRecord Kind = "record"
	// KindMidnight carries the first status back to 00:00.
	KindMidnight Kind = "midnight"
	// KindCarry repeats a status at the time of the following change.
	KindCarry Kind = "carry"
	// KindEndOfDay carries the last status to the right edge of the grid.
	KindEndOfDay Kind = "end_of_day"
)

// EndOfHour is the percentage of the end-of-day marker.
const EndOfHour = 100

// DotEvent is a marker on the 24-hour grid. SourceID is the id of the entry
// it was derived from, whatever its Kind.
type DotEvent struct {
	Kind       Kind   `json:"kind"`
	SourceID   int64  `json:"sourceId"`
	Hour       int    `json:"hour"`
	Percentage int    `json:"percentage"`
	Status     Status `json:"status"`
}

// Synthetic reports whether the event does not stand for a status change of
// its own.
func (e DotEvent) Synthetic() bool {
	return e.Kind != KindRecord
}

type dotKey struct {
	hour       int
	percentage int
	status     Status
}

func (e DotEvent) key() dotKey {
	return dotKey{hour: e.Hour, percentage: e.Percentage, status: e.Status}
}

// Quarter returns the local hour of t and the start of its 15-minute bucket
// as a percentage of the hour.
func Quarter(t time.Time, loc *time.Location) (hour, percentage int) {
	local := t.In(location(loc))
	return local.Hour(), local.Minute() / 15 * 25
}

// Sorted returns a copy of entries ordered by timestamp. Entries with equal
// timestamps keep their input order.
func Sorted(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// DotEvents derives the deduplicated dot events for entries, in construction
// order: the midnight marker, then each entry followed by its carry to the
// next entry, then the end-of-day marker. Only the first event of each
// (hour, percentage, status) is kept.
func DotEvents(entries []Entry, loc *time.Location) []DotEvent {
	if len(entries) == 0 {
		return []DotEvent{}
	}

	sorted := Sorted(entries)
	first, last := sorted[0], sorted[len(sorted)-1]

	events := make([]DotEvent, 0, 2*len(sorted)+1)
	events = append(events, DotEvent{Kind: KindMidnight, SourceID: first.ID, Status: first.Status})

	for i, entry := range sorted {
		hour, pct := Quarter(entry.Timestamp, loc)
		events = append(events, DotEvent{
			Kind:       KindRecord,
			SourceID:   entry.ID,
			Hour:       hour,
			Percentage: pct,
			Status:     entry.Status,
		})

		if i+1 < len(sorted) {
			nextHour, nextPct := Quarter(sorted[i+1].Timestamp, loc)
			events = append(events, DotEvent{
				Kind:       KindCarry,
				SourceID:   entry.ID,
				Hour:       nextHour,
				Percentage: nextPct,
				Status:     entry.Status,
			})
		}
	}

	events = append(events, DotEvent{
		Kind:       KindEndOfDay,
		SourceID:   last.ID,
		Hour:       23,
		Percentage: EndOfHour,
		Status:     last.Status,
	})

	return dedupe(events)
}

func dedupe(events []DotEvent) []DotEvent {
	seen := make(map[dotKey]struct{}, len(events))
	unique := events[:0]
	for _, e := range events {
		k := e.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}

// GlobalTimeline returns the dot events ordered left to right across the grid.
func GlobalTimeline(entries []Entry, loc *time.Location) []DotEvent {
	events := DotEvents(entries, loc)
	slices.SortStableFunc(events, func(a, b DotEvent) int {
		if a.Hour != b.Hour {
			return a.Hour - b.Hour
		}
		return a.Percentage - b.Percentage
	})
	return events
}

// ByStatus maps a status to the percentages that carry a dot in each hour.
type ByStatus map[Status]map[int][]int

// GroupByStatus regroups the dot events by status and hour.
func GroupByStatus(entries []Entry, loc *time.Location) ByStatus {
	grouped := make(ByStatus)
	for _, e := range DotEvents(entries, loc) {
		hours, ok := grouped[e.Status]
		if !ok {
			hours = make(map[int][]int)
			grouped[e.Status] = hours
		}
		hours[e.Hour] = append(hours[e.Hour], e.Percentage)
	}
	return grouped
}

// HasDot reports whether any event puts a dot for status in the given hour.
func HasDot(events []DotEvent, hour int, status Status) bool {
	return slices.ContainsFunc(events, func(e DotEvent) bool {
		return e.Hour == hour && e.Status == status
	})
}

// DotPosition returns the percentage of the first dot for status in hour,
// or 0 when there is none.
func DotPosition(events []DotEvent, hour int, status Status) int {
	i := slices.IndexFunc(events, func(e DotEvent) bool {
		return e.Hour == hour && e.Status == status
	})
	if i < 0 {
		return 0
	}
	return events[i].Percentage
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
