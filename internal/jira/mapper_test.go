package jira

import (
	"testing"
	"time"

	"sprintlens/internal/timeline"
)

func TestMapIssueParsesFields(t *testing.T) {
	dto := IssueDTO{
		Key: "PROJ-42",
		Fields: FieldsDTO{
			Created:        "2024-01-10T09:00:00.000+0000",
			Updated:        "2024-01-20T17:30:00.000+0000",
			ResolutionDate: "2024-01-19T12:00:00.000+0000",
		},
	}
	dto.Fields.IssueType.Name = "Bug"
	dto.Fields.Status.Name = "Done"
	dto.Fields.Priority.Name = "Critical"
	dto.Fields.Assignee.Name = "jdoe"
	dto.Fields.Assignee.DisplayName = "John Doe"
	dto.Fields.Resolution.Name = "Fixed"

	issue := MapIssue(dto)

	if issue.Key != "PROJ-42" || issue.IssueType != "Bug" || issue.Status != "Done" {
		t.Fatalf("unexpected identity fields: %+v", issue)
	}
	if issue.Priority != "Critical" || issue.Assignee != "John Doe" {
		t.Errorf("priority/assignee = %q/%q", issue.Priority, issue.Assignee)
	}
	if issue.Created.IsZero() || issue.Updated.IsZero() {
		t.Errorf("created/updated not parsed: %v / %v", issue.Created, issue.Updated)
	}
	if issue.Resolved == nil {
		t.Fatal("resolution date not parsed")
	}
	if issue.Resolved.Day() != 19 {
		t.Errorf("resolved = %v, want day 19", issue.Resolved)
	}
}

func TestMapIssueMissingResolution(t *testing.T) {
	dto := IssueDTO{
		Key: "PROJ-1",
		Fields: FieldsDTO{
			Created: "2024-01-10T09:00:00.000+0000",
			Updated: "2024-01-11T09:00:00.000+0000",
		},
	}

	issue := MapIssue(dto)
	if issue.Resolved != nil {
		t.Errorf("expected nil Resolved for unresolved issue, got %v", issue.Resolved)
	}
}

func TestMapIssueAssigneeFallsBackToName(t *testing.T) {
	dto := IssueDTO{Key: "PROJ-2"}
	dto.Fields.Assignee.Name = "jdoe"

	if got := MapIssue(dto).Assignee; got != "jdoe" {
		t.Errorf("assignee = %q, want fallback to login name", got)
	}
}

func TestMapChangelogFlattensAndSorts(t *testing.T) {
	changelog := &ChangelogDTO{
		Histories: []HistoryDTO{
			{
				Created: "2024-01-15T10:00:00.000+0000",
				Items: []ItemDTO{
					{Field: "status", FromString: "In Progress", ToString: "Done"},
				},
			},
			{
				Created: "2024-01-12T10:00:00.000+0000",
				Items: []ItemDTO{
					{Field: "status", FromString: "To Do", ToString: "In Progress"},
					{Field: "assignee", FromString: "", ToString: "John Doe"},
				},
			},
			{
				Created: "not-a-timestamp",
				Items: []ItemDTO{
					{Field: "status", FromString: "X", ToString: "Y"},
				},
			},
		},
	}

	events := MapChangelog(changelog)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (bad timestamp skipped)", len(events))
	}
	if !events[0].At.Before(events[2].At) {
		t.Error("events not sorted ascending")
	}

	statuses := timeline.FilterEvents(events, "status")
	if len(statuses) != 2 {
		t.Fatalf("got %d status events, want 2", len(statuses))
	}
	if statuses[0].To != "In Progress" || statuses[1].To != "Done" {
		t.Errorf("status order wrong: %v", statuses)
	}
}

func TestInitialStatus(t *testing.T) {
	withHistory := Issue{
		Status: "Done",
		Events: []timeline.ChangeEvent{
			{Field: "status", From: "Open", To: "In Progress", At: time.Now()},
		},
	}
	if got := withHistory.InitialStatus(); got != "Open" {
		t.Errorf("InitialStatus with history = %q, want Open", got)
	}

	noHistory := Issue{Status: "Backlog"}
	if got := noHistory.InitialStatus(); got != "Backlog" {
		t.Errorf("InitialStatus without history = %q, want current status", got)
	}
}

func TestMapWorklogsSkipsBadTimestamps(t *testing.T) {
	logs := []WorklogDTO{
		{Started: "2024-01-10T09:00:00.000+0000", TimeSpentSeconds: 3600},
		{Started: "garbage", TimeSpentSeconds: 1800},
	}
	logs[0].Author.DisplayName = "John Doe"
	logs[1].Author.DisplayName = "Jane Roe"

	result := MapWorklogs(logs)
	if len(result) != 1 {
		t.Fatalf("got %d worklogs, want 1", len(result))
	}
	if result[0].Author != "John Doe" || result[0].TimeSpentSeconds != 3600 {
		t.Errorf("unexpected worklog: %+v", result[0])
	}
}

func TestMapBurndown(t *testing.T) {
	resp := &BurndownResponse{
		StartTime: 1704067200000,
		EndTime:   1705276800000,
		Now:       1704672000000,
		Changes: map[string][]ScopeChangeDTO{
			"1704067200000": {
				{Key: "PROJ-1", Added: true},
				{Key: "PROJ-2", Added: true, Column: &ColumnChangeDTO{Done: true, NewStatus: "Done"}},
			},
		},
		IssueToSummary: map[string]string{
			"PROJ-2": "Second",
			"PROJ-1": "First",
		},
	}
	resp.WorkRates.Rates = []WorkRateDTO{
		{Start: 1704067200000, End: 1704153600000, Rate: 1},
	}

	input := MapBurndown(resp)

	if !input.Start.Equal(time.UnixMilli(1704067200000)) {
		t.Errorf("start = %v", input.Start)
	}
	events := input.Changes["1704067200000"]
	if len(events) != 2 {
		t.Fatalf("got %d events in bucket, want 2", len(events))
	}
	if events[1].Column == nil || !events[1].Column.Done {
		t.Errorf("column change not mapped: %+v", events[1])
	}
	if len(input.FinalItems) != 2 || input.FinalItems[0] != "PROJ-1" {
		t.Errorf("final items not sorted: %v", input.FinalItems)
	}
	if len(input.Rates) != 1 || input.Rates[0].Rate != 1 {
		t.Errorf("rates not mapped: %v", input.Rates)
	}
	if input.Summaries["PROJ-1"] != "First" {
		t.Errorf("summaries not carried over")
	}
}
