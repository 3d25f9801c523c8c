package timeline

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildCoversLifetime(t *testing.T) {
	created := day(1)
	events := []ChangeEvent{
		{Field: "status", From: "Open", To: "In Progress", At: day(3)},
		{Field: "status", From: "In Progress", To: "Done", At: day(8)},
	}
	end := day(10)

	segments := Build("Open", events, created, end)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(segments), segments)
	}

	// Contiguous, non-overlapping, spanning [created, end].
	if !segments[0].Start.Equal(created) {
		t.Errorf("first segment must start at creation, got %v", segments[0].Start)
	}
	if !segments[len(segments)-1].End.Equal(end) {
		t.Errorf("last segment must end at effective end, got %v", segments[len(segments)-1].End)
	}
	for i := 1; i < len(segments); i++ {
		if !segments[i].Start.Equal(segments[i-1].End) {
			t.Errorf("segment %d not contiguous: %v after %v", i, segments[i].Start, segments[i-1].End)
		}
	}

	want := []string{"Open", "In Progress", "Done"}
	for i, v := range want {
		if segments[i].Value != v {
			t.Errorf("segment %d value = %q, want %q", i, segments[i].Value, v)
		}
	}
}

func TestBuildNoEvents(t *testing.T) {
	segments := Build("Open", nil, day(1), day(6))
	if len(segments) != 1 {
		t.Fatalf("expected single full-span segment, got %v", segments)
	}
	if segments[0].Value != "Open" || !segments[0].Start.Equal(day(1)) || !segments[0].End.Equal(day(6)) {
		t.Errorf("unexpected degenerate segment: %+v", segments[0])
	}
}

func TestBuildInitialValueFallback(t *testing.T) {
	events := []ChangeEvent{
		{Field: "status", From: "To Do", To: "In Progress", At: day(2)},
	}
	segments := Build("", events, day(1), day(4))
	if segments[0].Value != "To Do" {
		t.Errorf("initial value should fall back to first event's From, got %q", segments[0].Value)
	}
}

func TestBuildUnknownCreationFallsBackToFirstEvent(t *testing.T) {
	events := []ChangeEvent{
		{Field: "status", From: "Open", To: "Done", At: day(2)},
	}
	segments := Build("", events, time.Time{}, day(5))
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %v", segments)
	}
	if !segments[0].Start.Equal(day(2)) || !segments[0].End.Equal(day(2)) {
		t.Errorf("head segment should collapse to the first event instant: %+v", segments[0])
	}
	if segments[1].Value != "Done" || !segments[1].End.Equal(day(5)) {
		t.Errorf("unexpected final segment: %+v", segments[1])
	}
}

func TestBuildDropsNegativeFinalSegment(t *testing.T) {
	events := []ChangeEvent{
		{Field: "status", From: "Open", To: "Done", At: day(8)},
	}
	// Effective end before the last event: the trailing segment is dropped.
	segments := Build("Open", events, day(1), day(5))
	if len(segments) != 1 {
		t.Fatalf("expected only the leading segment, got %v", segments)
	}
	if segments[0].Value != "Open" {
		t.Errorf("unexpected segment: %+v", segments[0])
	}
}

func TestFilterEventsStableOrder(t *testing.T) {
	at := day(3)
	events := []ChangeEvent{
		{Field: "status", From: "A", To: "B", At: at},
		{Field: "assignee", From: "x", To: "y", At: day(2)},
		{Field: "status", From: "B", To: "C", At: at},
		{Field: "status", From: "Z", To: "A", At: day(1)},
	}

	filtered := FilterEvents(events, "status")
	if len(filtered) != 3 {
		t.Fatalf("expected 3 status events, got %d", len(filtered))
	}
	if filtered[0].To != "A" {
		t.Errorf("expected ascending order, got %v first", filtered[0])
	}
	// Tie at day 3 keeps source order: A->B before B->C.
	if filtered[1].To != "B" || filtered[2].To != "C" {
		t.Errorf("tie must keep source order, got %v then %v", filtered[1], filtered[2])
	}
}

func TestEffectiveEndFallbackChain(t *testing.T) {
	resolved := day(5)
	now := day(20)

	if got := EffectiveEnd(&resolved, day(7), now); !got.Equal(resolved) {
		t.Errorf("resolution wins, got %v", got)
	}
	if got := EffectiveEnd(nil, day(7), now); !got.Equal(day(7)) {
		t.Errorf("updated is the second fallback, got %v", got)
	}
	if got := EffectiveEnd(nil, time.Time{}, now); !got.Equal(now) {
		t.Errorf("now is the last fallback, got %v", got)
	}
}
