package mcp

import (
	"fmt"
	"strconv"
	"time"

	"sprintlens/internal/timeline"
)

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// asInt coerces JSON numbers and numeric strings. Anything else yields 0.
func asInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}

// parsePeriod turns optional YYYY-MM-DD bounds into an analysis period.
// Invalid or missing bounds degrade to the default trailing window.
func parsePeriod(startArg, endArg string, now time.Time) timeline.Period {
	var start, end time.Time
	if startArg != "" {
		if t, err := time.Parse("2006-01-02", startArg); err == nil {
			start = t
		}
	}
	if endArg != "" {
		if t, err := time.Parse("2006-01-02", endArg); err == nil {
			end = t
		}
	}
	return timeline.NewPeriod(start, end, now)
}
