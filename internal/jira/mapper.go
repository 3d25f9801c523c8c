package jira

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"sprintlens/internal/burndown"
	"sprintlens/internal/metrics"
	"sprintlens/internal/timeline"
)

// Issue is the domain view of a Jira issue with its parsed change history.
type Issue struct {
	Key        string
	IssueType  string
	Status     string
	Priority   string
	Assignee   string
	Resolution string
	IsSubtask  bool

	Created  time.Time
	Updated  time.Time
	Resolved *time.Time

	// Events holds all parsed changelog entries across fields, ascending.
	// Use timeline.FilterEvents to slice out one field's history.
	Events []timeline.ChangeEvent
}

// MapIssue transforms a Jira DTO into a domain Issue.
func MapIssue(item IssueDTO) Issue {
	issue := Issue{
		Key:        item.Key,
		IssueType:  item.Fields.IssueType.Name,
		Status:     item.Fields.Status.Name,
		Priority:   item.Fields.Priority.Name,
		Assignee:   item.Fields.Assignee.DisplayName,
		Resolution: item.Fields.Resolution.Name,
		IsSubtask:  item.Fields.IssueType.Subtask,
	}
	if issue.Assignee == "" {
		issue.Assignee = item.Fields.Assignee.Name
	}

	if t, err := ParseTime(item.Fields.Created); err == nil {
		issue.Created = t
	}

	if t, err := ParseTime(item.Fields.Updated); err == nil {
		issue.Updated = t
	}

	if item.Fields.ResolutionDate != "" {
		if t, err := ParseTime(item.Fields.ResolutionDate); err == nil {
			issue.Resolved = &t
		}
	}

	if item.Changelog != nil {
		issue.Events = MapChangelog(item.Changelog)
	}

	return issue
}

// MapChangelog flattens a Jira changelog into field change events sorted by
// time. History entries with unparsable timestamps are skipped.
func MapChangelog(changelog *ChangelogDTO) []timeline.ChangeEvent {
	var events []timeline.ChangeEvent
	for _, h := range changelog.Histories {
		at, err := ParseTime(h.Created)
		if err != nil {
			log.Warn().Str("created", h.Created).Msg("Skipping changelog entry with unparsable timestamp")
			continue
		}
		for _, item := range h.Items {
			events = append(events, timeline.ChangeEvent{
				Field: item.Field,
				From:  item.FromString,
				To:    item.ToString,
				At:    at,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events
}

// InitialStatus recovers the status the issue was created in. The earliest
// recorded status transition tells us what the value was before any change;
// without transitions the current status is the original one.
func (i Issue) InitialStatus() string {
	statusEvents := timeline.FilterEvents(i.Events, "status")
	if len(statusEvents) > 0 {
		return statusEvents[0].From
	}
	return i.Status
}

// MapWorklogs transforms raw worklog entries into metric inputs. Entries with
// unparsable start times are skipped.
func MapWorklogs(logs []WorklogDTO) []metrics.Worklog {
	result := make([]metrics.Worklog, 0, len(logs))
	for _, w := range logs {
		started, err := ParseTime(w.Started)
		if err != nil {
			log.Warn().Str("started", w.Started).Msg("Skipping worklog with unparsable timestamp")
			continue
		}
		author := w.Author.DisplayName
		if author == "" {
			author = w.Author.Name
		}
		result = append(result, metrics.Worklog{
			Author:           author,
			Started:          started,
			TimeSpentSeconds: w.TimeSpentSeconds,
			Comment:          w.Comment,
		})
	}
	return result
}

// MapBurndown transforms the scope-change chart payload into a replayable
// burndown input.
func MapBurndown(resp *BurndownResponse) burndown.Input {
	changes := make(map[string][]burndown.ScopeEvent, len(resp.Changes))
	for ts, entries := range resp.Changes {
		mapped := make([]burndown.ScopeEvent, 0, len(entries))
		for _, e := range entries {
			event := burndown.ScopeEvent{
				Key:     e.Key,
				Added:   e.Added,
				Removed: e.Removed,
				Deleted: e.Deleted,
				Done:    e.Done,
				NotDone: e.NotDone,
			}
			if e.Column != nil {
				event.Column = &burndown.ColumnChange{
					Done:      e.Column.Done,
					NotDone:   e.Column.NotDone,
					NewStatus: e.Column.NewStatus,
				}
			}
			mapped = append(mapped, event)
		}
		changes[ts] = mapped
	}

	finalItems := make([]string, 0, len(resp.IssueToSummary))
	for key := range resp.IssueToSummary {
		finalItems = append(finalItems, key)
	}
	sort.Strings(finalItems)

	rates := make([]burndown.WorkRateInterval, 0, len(resp.WorkRates.Rates))
	for _, r := range resp.WorkRates.Rates {
		rates = append(rates, burndown.WorkRateInterval{
			Start: time.UnixMilli(r.Start).UTC(),
			End:   time.UnixMilli(r.End).UTC(),
			Rate:  r.Rate,
		})
	}

	return burndown.Input{
		Changes:    changes,
		FinalItems: finalItems,
		Summaries:  resp.IssueToSummary,
		Start:      time.UnixMilli(resp.StartTime).UTC(),
		End:        time.UnixMilli(resp.EndTime).UTC(),
		Now:        time.UnixMilli(resp.Now).UTC(),
		Rates:      rates,
	}
}
