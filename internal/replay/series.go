package replay

// Point is a single step of a step-function series. The value Y holds from
// X (Unix milliseconds) until the X of the next point.
type Point struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// Series is an ordered, monotonic-in-x sequence of step points.
type Series []Point

// ValueAtOrBefore returns the value of the latest point with X <= x.
// If x precedes all points, the first point's value is returned.
// An empty series yields 0.
func (s Series) ValueAtOrBefore(x int64) float64 {
	if len(s) == 0 {
		return 0
	}
	value := s[0].Y
	for _, p := range s {
		if p.X > x {
			break
		}
		value = p.Y
	}
	return value
}

// Last returns the final point of the series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Stepper folds a stream of observations into a step series.
// Observations that do not change the value are absorbed; observations at an
// already-recorded X overwrite that point so that same-instant mutations
// collapse into one step.
type Stepper struct {
	series Series
	value  float64
	primed bool
}

// Observe records the value at x, emitting a point only if the value changed.
func (st *Stepper) Observe(x int64, y float64) {
	if st.primed && y == st.value {
		return
	}
	st.set(x, y)
}

// Force records a point at x carrying the current value, even without a change.
// It anchors the series at window boundaries.
func (st *Stepper) Force(x int64) {
	st.set(x, st.value)
}

func (st *Stepper) set(x int64, y float64) {
	if n := len(st.series); n > 0 && st.series[n-1].X == x {
		st.series[n-1].Y = y
	} else {
		st.series = append(st.series, Point{X: x, Y: y})
	}
	st.value = y
	st.primed = true
}

// Value returns the current value of the fold.
func (st *Stepper) Value() float64 {
	return st.value
}

// Series returns the accumulated step series.
func (st *Stepper) Series() Series {
	return st.series
}
