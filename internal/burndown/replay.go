package burndown

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"sprintlens/internal/replay"
)

// ColumnChange is a board-column move attached to a scope event.
type ColumnChange struct {
	Done      bool   `json:"done,omitempty"`
	NotDone   bool   `json:"notDone,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
}

// ScopeEvent is one sparse change-log entry for one item. Multiple events may
// share a timestamp bucket.
type ScopeEvent struct {
	Key     string        `json:"key"`
	Added   bool          `json:"added,omitempty"`
	Removed bool          `json:"removed,omitempty"`
	Deleted bool          `json:"deleted,omitempty"`
	Done    bool          `json:"done,omitempty"`
	NotDone bool          `json:"notDone,omitempty"`
	Column  *ColumnChange `json:"column,omitempty"`
}

// Marker is a discrete, renderable change of an aggregate counter.
// It is emitted only when a replay step actually moved the observed value.
type Marker struct {
	TS      int64   `json:"ts"`
	Key     string  `json:"key"`
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Op      string  `json:"op"`
	Summary string  `json:"summary,omitempty"`
}

// MarkerSet groups markers by the counter they belong to.
type MarkerSet struct {
	Scope []Marker `json:"scope"`
	Done  []Marker `json:"done"`
}

// Input is one complete scope-change log plus its sprint frame.
type Input struct {
	// Changes is keyed by millisecond timestamp string, as delivered by the
	// source system. Unparsable keys are skipped.
	Changes    map[string][]ScopeEvent
	FinalItems []string
	Summaries  map[string]string

	Start time.Time
	End   time.Time
	Now   time.Time

	Rates []WorkRateInterval
}

// Result carries the four burndown series plus discrete change markers,
// all plain serializable data.
type Result struct {
	Scope      replay.Series `json:"scope"`
	Completed  replay.Series `json:"completed"`
	Guideline  replay.Series `json:"guideline"`
	Projection replay.Series `json:"projection"`
	Markers    MarkerSet     `json:"markers"`
}

// Replay folds the scope-change log into cumulative scope and completed-count
// step series. Events before the sprint start seed state silently; from the
// start onward every actual counter change is recorded as a marker. Points
// are forced at the sprint boundaries.
func Replay(in Input) Result {
	startMs := in.Start.UnixMilli()
	endMs := in.End.UnixMilli()
	nowMs := in.Now.UnixMilli()

	buckets := parseBuckets(in.Changes)

	// Starting scope: items known at sprint start, i.e. the final item set
	// minus items whose first add-to-scope event happens at or after start.
	firstAdd := make(map[string]int64)
	for _, bucket := range buckets {
		for _, e := range bucket.events {
			if e.Added {
				if _, seen := firstAdd[e.Key]; !seen {
					firstAdd[e.Key] = bucket.ts
				}
			}
		}
	}

	b := newBoard()
	for _, key := range in.FinalItems {
		if ts, added := firstAdd[key]; !added || ts < startMs {
			b.setInScope(key, true)
		}
	}

	// Silent pre-start replay seeds removals and done-markings that happened
	// before the sprint.
	idx := 0
	for idx < len(buckets) && buckets[idx].ts < startMs {
		for _, e := range buckets[idx].events {
			b.apply(e)
		}
		idx++
	}

	var scopeSteps, doneSteps replay.Stepper
	scopeSteps.Observe(startMs, float64(b.scope))
	doneSteps.Observe(startMs, float64(b.completed))

	markers := MarkerSet{Scope: []Marker{}, Done: []Marker{}}

	for ; idx < len(buckets); idx++ {
		bucket := buckets[idx]
		if bucket.ts > endMs {
			break
		}
		// Changes at the exact start instant collapse into the forced start
		// point; a marker there would duplicate the series' first value.
		silent := bucket.ts == startMs
		for _, e := range bucket.events {
			prevScope, prevDone := b.scope, b.completed
			scopeChanged, doneChanged := b.apply(e)

			if scopeChanged {
				scopeSteps.Observe(bucket.ts, float64(b.scope))
				if !silent {
					markers.Scope = append(markers.Scope, Marker{
						TS:      bucket.ts,
						Key:     e.Key,
						From:    float64(prevScope),
						To:      float64(b.scope),
						Op:      scopeOp(e, b.scope > prevScope),
						Summary: in.summary(e.Key),
					})
				}
			}
			if doneChanged {
				doneSteps.Observe(bucket.ts, float64(b.completed))
				if !silent {
					op := "done"
					if b.completed < prevDone {
						op = "undone"
					}
					markers.Done = append(markers.Done, Marker{
						TS:      bucket.ts,
						Key:     e.Key,
						From:    float64(prevDone),
						To:      float64(b.completed),
						Op:      op,
						Summary: in.summary(e.Key),
					})
				}
			}
		}
	}

	scopeSteps.Force(endMs)
	doneSteps.Force(endMs)

	result := Result{
		Scope:     scopeSteps.Series(),
		Completed: doneSteps.Series(),
		Markers:   markers,
	}

	if nowMs >= startMs && nowMs <= endMs {
		result.Guideline = buildGuideline(startMs, endMs, scopeSteps.Value(), in.Rates)
		current := result.Scope.ValueAtOrBefore(nowMs)
		result.Projection = replay.Series{{X: nowMs, Y: current}, {X: endMs, Y: current}}
	}

	return result
}

// apply executes one event against the board in a fixed order: scope flags
// first, then done flags, with column moves treated like their explicit
// counterparts.
func (b *board) apply(e ScopeEvent) (scopeChanged, doneChanged bool) {
	if e.Added {
		sc, dc := b.setInScope(e.Key, true)
		scopeChanged, doneChanged = scopeChanged || sc, doneChanged || dc
	}
	if e.Removed || e.Deleted {
		sc, dc := b.setInScope(e.Key, false)
		scopeChanged, doneChanged = scopeChanged || sc, doneChanged || dc
	}
	if e.Done || (e.Column != nil && e.Column.Done) {
		sc, dc := b.setDone(e.Key, true)
		scopeChanged, doneChanged = scopeChanged || sc, doneChanged || dc
	}
	if e.NotDone || (e.Column != nil && e.Column.NotDone) {
		sc, dc := b.setDone(e.Key, false)
		scopeChanged, doneChanged = scopeChanged || sc, doneChanged || dc
	}
	return scopeChanged, doneChanged
}

func scopeOp(e ScopeEvent, increased bool) string {
	switch {
	case e.Added && increased:
		return "added"
	case e.Removed || e.Deleted:
		return "removed"
	default:
		// Implicit scope change, e.g. a done-marking promoting an unknown item.
		return "scope"
	}
}

func (in Input) summary(key string) string {
	if s, ok := in.Summaries[key]; ok && s != "" {
		return fmt.Sprintf("%s %s", key, s)
	}
	return key
}

type bucket struct {
	ts     int64
	events []ScopeEvent
}

func parseBuckets(changes map[string][]ScopeEvent) []bucket {
	buckets := make([]bucket, 0, len(changes))
	for tsStr, events := range changes {
		ts, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			log.Warn().Str("timestamp", tsStr).Msg("Skipping scope-change bucket with unparsable timestamp")
			continue
		}
		buckets = append(buckets, bucket{ts: ts, events: events})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].ts < buckets[j].ts
	})
	return buckets
}

// buildGuideline renders the ideal completion ramp from 0 at sprint start to
// the final scope at sprint end, held flat across non-working intervals.
func buildGuideline(startMs, endMs int64, finalScope float64, rates []WorkRateInterval) replay.Series {
	if endMs <= startMs {
		return nil
	}

	if len(rates) == 0 {
		return replay.Series{{X: startMs, Y: 0}, {X: endMs, Y: finalScope}}
	}

	totalWorkingMs := workingMillis(startMs, endMs, rates)
	if totalWorkingMs <= 0 {
		return replay.Series{{X: startMs, Y: 0}, {X: endMs, Y: finalScope}}
	}

	ramp := func(workedMs int64) float64 {
		return finalScope * float64(workedMs) / float64(totalWorkingMs)
	}

	series := replay.Series{{X: startMs, Y: 0}}
	cursor := startMs
	var workedMs int64
	for _, iv := range clippedIdleIntervals(startMs, endMs, rates) {
		if iv.start > cursor {
			workedMs += iv.start - cursor
			series = append(series, replay.Point{X: iv.start, Y: ramp(workedMs)})
		}
		// Flat across the non-working interval.
		series = append(series, replay.Point{X: iv.end, Y: ramp(workedMs)})
		cursor = iv.end
	}
	if cursor < endMs {
		series = append(series, replay.Point{X: endMs, Y: finalScope})
	}
	return series
}
