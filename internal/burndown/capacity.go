package burndown

import (
	"sort"
	"time"
)

// WorkRateInterval is a time range tagged with a work-rate multiplier.
// Rate 0 marks a non-working interval (weekend, holiday).
type WorkRateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rate  float64   `json:"rate"`
}

// Capacity is the working-day-aware throughput budget for one period.
type Capacity struct {
	WorkingDays     float64 `json:"workingDays"`
	CapacitySeconds float64 `json:"capacitySeconds"`
}

// Calculate sums the clipped duration of every working interval and converts
// it to a day count and a capacity figure. Without rate data it falls back to
// counting weekdays in the period.
func Calculate(intervals []WorkRateInterval, periodStart, periodEnd time.Time, hoursPerDay float64) Capacity {
	var workingDays float64

	if len(intervals) == 0 {
		workingDays = float64(countWeekdays(periodStart, periodEnd))
	} else {
		var totalMs int64
		startMs := periodStart.UnixMilli()
		endMs := periodEnd.UnixMilli()
		for _, iv := range intervals {
			if iv.Rate <= 0 {
				continue
			}
			s := iv.Start.UnixMilli()
			e := iv.End.UnixMilli()
			if s < startMs {
				s = startMs
			}
			if e > endMs {
				e = endMs
			}
			if e > s {
				totalMs += e - s
			}
		}
		workingDays = float64(totalMs) / 86400000.0
	}

	return Capacity{
		WorkingDays:     workingDays,
		CapacitySeconds: workingDays * hoursPerDay * 3600,
	}
}

func countWeekdays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

type msInterval struct {
	start, end int64
}

// clippedIdleIntervals returns the zero-rate intervals clipped to
// [startMs, endMs], sorted and merged.
func clippedIdleIntervals(startMs, endMs int64, rates []WorkRateInterval) []msInterval {
	var idle []msInterval
	for _, iv := range rates {
		if iv.Rate != 0 {
			continue
		}
		s := iv.Start.UnixMilli()
		e := iv.End.UnixMilli()
		if s < startMs {
			s = startMs
		}
		if e > endMs {
			e = endMs
		}
		if e > s {
			idle = append(idle, msInterval{start: s, end: e})
		}
	}
	sort.Slice(idle, func(i, j int) bool {
		return idle[i].start < idle[j].start
	})

	merged := idle[:0]
	for _, iv := range idle {
		if n := len(merged); n > 0 && iv.start <= merged[n-1].end {
			if iv.end > merged[n-1].end {
				merged[n-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// workingMillis is the span length minus the merged zero-rate overlap,
// used for the guideline slope.
func workingMillis(startMs, endMs int64, rates []WorkRateInterval) int64 {
	working := endMs - startMs
	for _, iv := range clippedIdleIntervals(startMs, endMs, rates) {
		working -= iv.end - iv.start
	}
	return working
}
