package timeline

import (
	"time"

	"sprintlens/internal/workflow"
)

// Aggregate holds clipped residency sums for one period.
// A value may credit several categories, so category totals can exceed the
// sum of value totals.
type Aggregate struct {
	ByValue    map[string]float64            `json:"byValue"`
	ByCategory map[workflow.Category]float64 `json:"byCategory"`
}

// OverlapSeconds returns the number of seconds of [segStart, segEnd] that fall
// inside the period. Disjoint intervals yield 0.
func OverlapSeconds(segStart, segEnd time.Time, p Period) float64 {
	start := segStart
	if p.Start.After(start) {
		start = p.Start
	}
	end := segEnd
	if p.End.Before(end) {
		end = p.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Seconds()
}

// AggregateByCategory clips every segment against the period and sums overlap
// seconds per raw value and per semantic category.
func AggregateByCategory(segments []Segment, p Period, cls workflow.Classifier) Aggregate {
	agg := Aggregate{
		ByValue:    make(map[string]float64),
		ByCategory: make(map[workflow.Category]float64),
	}

	for _, seg := range segments {
		overlap := OverlapSeconds(seg.Start, seg.End, p)
		if overlap <= 0 {
			continue
		}
		agg.ByValue[seg.Value] += overlap
		for category := range cls.Categories(seg.Value) {
			agg.ByCategory[category] += overlap
		}
	}

	return agg
}
