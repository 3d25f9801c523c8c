package metrics

import (
	"testing"
	"time"

	"sprintlens/internal/timeline"
	"sprintlens/internal/workflow"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testClassifier() workflow.Classifier {
	return workflow.NewClassifier(workflow.Config{StatusCategories: map[string][]workflow.Category{
		"Open":        {workflow.CategoryQueue},
		"In Progress": {workflow.CategoryWork},
		"Review":      {workflow.CategoryReview},
		"Testing":     {workflow.CategoryTesting},
		"Done":        {workflow.CategoryDone},
	}})
}

func statusEvent(from, to string, at time.Time) timeline.ChangeEvent {
	return timeline.ChangeEvent{Field: "status", From: from, To: to, At: at}
}

func TestLeadCycleWait(t *testing.T) {
	in := Input{
		Created: day(1),
		Now:     day(30),
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("Open", "In Progress", day(3)),
			statusEvent("In Progress", "Done", day(10)),
		},
	}

	facts := Compute(in, testClassifier())

	if !facts.DoneAt.Equal(day(10)) {
		t.Fatalf("DoneAt = %v, want %v", facts.DoneAt, day(10))
	}
	if want := 9 * 86400.0; facts.LeadTimeSeconds != want {
		t.Errorf("lead = %v, want %v", facts.LeadTimeSeconds, want)
	}
	if want := 7 * 86400.0; facts.CycleTimeSeconds != want {
		t.Errorf("cycle = %v, want %v", facts.CycleTimeSeconds, want)
	}
	if want := 2 * 86400.0; facts.WaitTimeSeconds != want {
		t.Errorf("wait = %v, want %v", facts.WaitTimeSeconds, want)
	}
}

func TestResolutionFallbackGivesLeadWithoutCycle(t *testing.T) {
	// Item created with no status events; resolution five days later.
	resolved := day(6)
	in := Input{
		Created:  day(1),
		Resolved: &resolved,
		Now:      day(30),
	}

	facts := Compute(in, testClassifier())

	if want := 5 * 86400.0; facts.LeadTimeSeconds != want {
		t.Errorf("lead = %v, want %v", facts.LeadTimeSeconds, want)
	}
	if facts.CycleTimeSeconds != 0 {
		t.Errorf("no work entry observed, cycle must be 0, got %v", facts.CycleTimeSeconds)
	}
}

func TestCycleClampedToLead(t *testing.T) {
	// Work started before creation (imported history): cycle may not exceed lead.
	in := Input{
		Created: day(5),
		Now:     day(30),
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("Open", "In Progress", day(2)),
			statusEvent("In Progress", "Done", day(10)),
		},
	}

	facts := Compute(in, testClassifier())

	if facts.CycleTimeSeconds > facts.LeadTimeSeconds {
		t.Errorf("cycle %v exceeds lead %v", facts.CycleTimeSeconds, facts.LeadTimeSeconds)
	}
	if facts.WaitTimeSeconds < 0 {
		t.Errorf("wait went negative: %v", facts.WaitTimeSeconds)
	}
}

func TestTookWorkPriority(t *testing.T) {
	worklogStart := day(4)
	in := Input{
		Created:   day(1),
		Now:       day(30),
		Developer: "alice",
		Worklogs: []Worklog{
			{Author: "bob", Started: day(2), TimeSpentSeconds: 600},
			{Author: "Alice", Started: worklogStart, TimeSpentSeconds: 1200},
		},
		AssigneeEvents: []timeline.ChangeEvent{
			{Field: "assignee", From: "", To: "alice", At: day(3)},
		},
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("Open", "In Progress", day(2)),
		},
	}

	facts := Compute(in, testClassifier())
	if facts.TookWorkAt == nil || !facts.TookWorkAt.Equal(worklogStart) {
		t.Errorf("worklog by developer must win (case-insensitive), got %v", facts.TookWorkAt)
	}

	// Without worklogs the assignment event wins.
	in.Worklogs = nil
	facts = Compute(in, testClassifier())
	if facts.TookWorkAt == nil || !facts.TookWorkAt.Equal(day(3)) {
		t.Errorf("assignee event must be the second priority, got %v", facts.TookWorkAt)
	}

	// Without either, the first work transition wins.
	in.AssigneeEvents = nil
	facts = Compute(in, testClassifier())
	if facts.TookWorkAt == nil || !facts.TookWorkAt.Equal(day(2)) {
		t.Errorf("work transition is the last resort, got %v", facts.TookWorkAt)
	}
}

func TestDaysToFirstCommit(t *testing.T) {
	in := Input{
		Created:   day(1),
		Now:       day(30),
		Developer: "alice",
		Worklogs:  []Worklog{{Author: "alice", Started: day(2)}},
		Commits:   []time.Time{day(5), day(7)},
	}

	facts := Compute(in, testClassifier())

	if facts.DaysToFirstCommit == nil {
		t.Fatal("expected DaysToFirstCommit to be set")
	}
	if *facts.DaysToFirstCommit != 3 {
		t.Errorf("DaysToFirstCommit = %v, want 3", *facts.DaysToFirstCommit)
	}

	// Missing commit data short-circuits the metric.
	in.Commits = nil
	facts = Compute(in, testClassifier())
	if facts.DaysToFirstCommit != nil {
		t.Errorf("expected nil without commits, got %v", *facts.DaysToFirstCommit)
	}
}

func TestCommitsPerDayFlag(t *testing.T) {
	cls := testClassifier()

	in := Input{Created: day(1), Now: day(30), Commits: []time.Time{day(5), day(6), day(7)}}
	if !Compute(in, cls).CommitsPerDay {
		t.Error("distinct days should set the flag")
	}

	in.Commits = []time.Time{day(5), day(5).Add(4 * time.Hour)}
	if Compute(in, cls).CommitsPerDay {
		t.Error("two commits on one day must not set the flag")
	}

	in.Commits = []time.Time{day(5)}
	if Compute(in, cls).CommitsPerDay {
		t.Error("a single commit must not set the flag")
	}
}

func TestPostCommitScan(t *testing.T) {
	in := Input{
		Created: day(1),
		Now:     day(30),
		Commits: []time.Time{day(5)},
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("Open", "In Progress", day(2)),
			statusEvent("In Progress", "Review", day(6)),
			statusEvent("Review", "In Progress", day(7)), // returned to work
			statusEvent("In Progress", "Done", day(9)),
		},
	}

	facts := Compute(in, testClassifier())

	if !facts.WentToDone {
		t.Error("expected WentToDone")
	}
	if facts.DaysToClose == nil || *facts.DaysToClose != 4 {
		t.Errorf("DaysToClose = %v, want 4", facts.DaysToClose)
	}
	if !facts.ReturnedToWork {
		t.Error("review -> work after the last commit must set ReturnedToWork")
	}
	if !facts.WentToWorkAfterCommit {
		t.Error("expected WentToWorkAfterCommit")
	}
	if !facts.StableClose {
		t.Error("item ended done with no unstable exit, expected StableClose")
	}
}

func TestStableCloseVetoedByReopen(t *testing.T) {
	in := Input{
		Created: day(1),
		Now:     day(30),
		Commits: []time.Time{day(5)},
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("In Progress", "Done", day(6)),
			statusEvent("Done", "In Progress", day(8)), // reopen after close
			statusEvent("In Progress", "Done", day(10)),
		},
	}

	facts := Compute(in, testClassifier())

	if facts.StableClose {
		t.Error("an exit from done must veto StableClose")
	}
	if facts.ReopenCount != 1 {
		t.Errorf("ReopenCount = %d, want 1", facts.ReopenCount)
	}
}

func TestScanWindowedToLastCommit(t *testing.T) {
	// The reopen happened before the last commit; the stability scan must not
	// see it, reopen counting must.
	in := Input{
		Created: day(1),
		Now:     day(30),
		Commits: []time.Time{day(9)},
		StatusEvents: []timeline.ChangeEvent{
			statusEvent("In Progress", "Done", day(4)),
			statusEvent("Done", "In Progress", day(6)),
			statusEvent("In Progress", "Done", day(10)),
		},
	}

	facts := Compute(in, testClassifier())

	if !facts.StableClose {
		t.Error("pre-commit reopen must not veto StableClose")
	}
	if facts.ReopenCount != 1 {
		t.Errorf("ReopenCount = %d, want 1", facts.ReopenCount)
	}
}

func TestMissingDatesNeverPanic(t *testing.T) {
	facts := Compute(Input{}, testClassifier())
	if facts.LeadTimeSeconds != 0 || facts.CycleTimeSeconds != 0 {
		t.Errorf("empty input must produce zero durations: %+v", facts)
	}
	if facts.TookWorkAt != nil || facts.DaysToFirstCommit != nil || facts.DaysToClose != nil {
		t.Errorf("optional facts must stay nil on empty input: %+v", facts)
	}
}
