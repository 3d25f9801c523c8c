package timeline

import (
	"sort"
	"time"
)

// ChangeEvent is a single "field changed from A to B at time T" record,
// pre-filtered to one field and sorted ascending by time.
type ChangeEvent struct {
	Field string    `json:"field"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	At    time.Time `json:"at"`
}

// Segment is a maximal interval during which the tracked field held one value.
// Segments of one item are contiguous, non-overlapping and cover the item's
// lifetime from creation to its effective end.
type Segment struct {
	Value string    `json:"value"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterEvents extracts the events for one field, sorted ascending by time.
// The sort is stable: same-instant events keep their source order.
func FilterEvents(events []ChangeEvent, field string) []ChangeEvent {
	filtered := make([]ChangeEvent, 0)
	for _, e := range events {
		if e.Field == field {
			filtered = append(filtered, e)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].At.Before(filtered[j].At)
	})
	return filtered
}

// Build replays single-field change events into a contiguous segment list.
//
// The initial value falls back to the first event's From (then To) side when
// none is supplied; the starting instant falls back to the first event time
// when the creation time is unknown. Segments that would end before they
// start are dropped.
func Build(initial string, events []ChangeEvent, created, effectiveEnd time.Time) []Segment {
	value := initial
	if value == "" && len(events) > 0 {
		value = events[0].From
		if value == "" {
			value = events[0].To
		}
	}

	start := created
	if start.IsZero() && len(events) > 0 {
		start = events[0].At
	}

	var segments []Segment
	for _, e := range events {
		if !start.IsZero() && !e.At.Before(start) {
			segments = append(segments, Segment{Value: value, Start: start, End: e.At})
		}
		value = e.To
		start = e.At
	}

	if !start.IsZero() && !effectiveEnd.Before(start) {
		segments = append(segments, Segment{Value: value, Start: start, End: effectiveEnd})
	}

	return segments
}

// EffectiveEnd resolves the closing instant of an item's timeline:
// resolution time, else last-updated time, else now.
func EffectiveEnd(resolved *time.Time, updated, now time.Time) time.Time {
	if resolved != nil && !resolved.IsZero() {
		return *resolved
	}
	if !updated.IsZero() {
		return updated
	}
	return now
}
