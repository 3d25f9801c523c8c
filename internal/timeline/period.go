package timeline

import "time"

// Period is a reporting window with day-aligned boundaries: Start at 00:00:00
// and End at 23:59:59 local time.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DefaultPeriodDays is the width of the fallback trailing window.
const DefaultPeriodDays = 30

// NewPeriod builds a period from raw boundaries, snapping them to day edges.
// Unusable input (zero times, end before start) degrades to the default
// trailing window anchored at now.
func NewPeriod(start, end, now time.Time) Period {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return DefaultPeriod(now)
	}
	return Period{Start: SnapToDayStart(start), End: SnapToDayEnd(end)}
}

// DefaultPeriod returns the trailing 30-day window ending today.
func DefaultPeriod(now time.Time) Period {
	return Period{
		Start: SnapToDayStart(now.AddDate(0, 0, -DefaultPeriodDays)),
		End:   SnapToDayEnd(now),
	}
}

// SnapToDayStart normalizes a timestamp to 00:00:00 of its calendar day.
func SnapToDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SnapToDayEnd normalizes a timestamp to 23:59:59 of its calendar day.
func SnapToDayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Contains reports whether t falls inside the period boundaries.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days returns the number of calendar days the period spans.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
