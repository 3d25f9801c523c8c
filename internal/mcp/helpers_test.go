package mcp

import (
	"testing"
	"time"
)

func TestParsePeriodValidBounds(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := parsePeriod("2024-01-01", "2024-01-10", now)

	if p.Start.Day() != 1 || p.Start.Hour() != 0 {
		t.Errorf("start = %v, want snapped 2024-01-01 00:00:00", p.Start)
	}
	if p.End.Day() != 10 || p.End.Hour() != 23 || p.End.Second() != 59 {
		t.Errorf("end = %v, want snapped 2024-01-10 23:59:59", p.End)
	}
}

func TestParsePeriodFallsBackToTrailingWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name       string
		start, end string
	}{
		{"empty", "", ""},
		{"garbage", "yesterday", "tomorrow"},
		{"inverted", "2024-02-01", "2024-01-01"},
		{"only start", "2024-01-01", ""},
	} {
		p := parsePeriod(tc.start, tc.end, now)
		if p.Days() != 31 {
			t.Errorf("%s: Days = %d, want 31-day trailing window", tc.name, p.Days())
		}
		if p.End.Day() != 1 || p.End.Month() != 3 {
			t.Errorf("%s: end = %v, want anchored at now", tc.name, p.End)
		}
	}
}

func TestAsIntCoercions(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{float64(42), 42}, // JSON numbers arrive as float64
		{17, 17},
		{"7", 7},
		{"seven", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tt := range tests {
		if got := asInt(tt.in); got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAsFloatCoercions(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{6.5, 6.5},
		{8, 8},
		{"7.5", 7.5},
		{"", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := asFloat(tt.in); got != tt.want {
			t.Errorf("asFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAsString(t *testing.T) {
	if got := asString(nil); got != "" {
		t.Errorf("asString(nil) = %q", got)
	}
	if got := asString("x"); got != "x" {
		t.Errorf("asString(x) = %q", got)
	}
	if got := asString(float64(3)); got != "3" {
		t.Errorf("asString(3.0) = %q", got)
	}
}
