package timeline

import "time"

// Totals counts, per status, the hours of a day during which it was active.
type Totals map[Status]int

// Sum returns the total number of counted hours.
func (t Totals) Sum() int {
	sum := 0
	for _, h := range t {
		sum += h
	}
	return sum
}

// HourBoundary returns hour:00 on the calendar date of dayStart in loc.
func HourBoundary(dayStart time.Time, hour int, loc *time.Location) time.Time {
	local := dayStart.In(location(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, local.Location())
}

// ActiveStatusAt returns the status of the latest entry at or before the
// given hour of dayStart's date. Before the first entry, and for entries with
// an unknown status, the driver is off duty.
func ActiveStatusAt(hour int, entries []Entry, dayStart time.Time, loc *time.Location) Status {
	boundary := HourBoundary(dayStart, hour, loc)

	var (
		active Entry
		found  bool
	)
	for _, e := range entries {
		if e.Timestamp.After(boundary) {
			continue
		}
		if !found || e.Timestamp.After(active.Timestamp) {
			active, found = e, true
		}
	}

	if !found || !active.Status.Valid() {
		return StatusOffDuty
	}
	return active.Status
}

// HourTotals samples the active status at each of the 24 hour boundaries of
// dayStart's date. The result always has all four statuses and sums to 24.
func HourTotals(entries []Entry, dayStart time.Time, loc *time.Location) Totals {
	totals := make(Totals, len(Statuses))
	for _, s := range Statuses {
		totals[s] = 0
	}
	for hour := 0; hour < 24; hour++ {
		totals[ActiveStatusAt(hour, entries, dayStart, loc)]++
	}
	return totals
}

// StatusDuration sums the time spent in status between from and to. Each
// entry lasts until the next one; the latest lasts until to.
func StatusDuration(entries []Entry, status Status, from, to time.Time) time.Duration {
	if !to.After(from) {
		return 0
	}

	sorted := Sorted(entries)
	var total time.Duration
	for i, e := range sorted {
		if e.Status != status {
			continue
		}
		start := e.Timestamp
		end := to
		if i+1 < len(sorted) {
			end = sorted[i+1].Timestamp
		}
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}
