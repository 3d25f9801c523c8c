package mcp

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sprintlens/internal/burndown"
	"sprintlens/internal/eventlog"
	"sprintlens/internal/jira"
	"sprintlens/internal/metrics"
	"sprintlens/internal/risk"
	"sprintlens/internal/timeline"
	"sprintlens/internal/workflow"
)

// TimeInStatusResult is the response payload of the time-in-status tool.
type TimeInStatusResult struct {
	Key         string             `json:"key"`
	PeriodStart time.Time          `json:"periodStart"`
	PeriodEnd   time.Time          `json:"periodEnd"`
	PeriodDays  int                `json:"periodDays"`
	Residency   timeline.Aggregate `json:"residency"`
}

// IssueMetricsResult pairs one issue with its derived lifecycle facts.
type IssueMetricsResult struct {
	Key   string        `json:"key"`
	Facts metrics.Facts `json:"facts"`
}

// IssueRiskResult carries the observed signals together with the verdict.
type IssueRiskResult struct {
	Key     string       `json:"key"`
	Signals risk.Signals `json:"signals"`
	Risk    risk.Score   `json:"risk"`
}

// SprintBurndownResult frames the replayed series with the sprint window.
type SprintBurndownResult struct {
	BoardID    int             `json:"boardId"`
	SprintID   int             `json:"sprintId"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Burndown   burndown.Result `json:"burndown"`
	EventCount int             `json:"eventCount"`
}

// CapacityResult is the response payload of the capacity tool.
type CapacityResult struct {
	BoardID         int     `json:"boardId"`
	SprintID        int     `json:"sprintId"`
	HoursPerDay     float64 `json:"hoursPerDay"`
	WorkingDays     float64 `json:"workingDays"`
	CapacitySeconds float64 `json:"capacitySeconds"`
	RateIntervals   int     `json:"rateIntervals"`
}

func (s *Server) handleFindBoards(projectKey, nameFilter string) (interface{}, error) {
	boards, err := s.jira.FindBoards(projectKey, nameFilter)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"boards": boards}, nil
}

func (s *Server) handleFindSprints(boardID int, state string) (interface{}, error) {
	if boardID <= 0 {
		return nil, fmt.Errorf("board_id is required")
	}
	sprints, err := s.jira.GetSprints(boardID, state)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"sprints": sprints}, nil
}

func (s *Server) handleSprintBurndown(boardID, sprintID int) (interface{}, error) {
	if boardID <= 0 || sprintID <= 0 {
		return nil, fmt.Errorf("board_id and sprint_id are required")
	}

	resp, err := s.jira.GetScopeChangeBurndown(boardID, sprintID)
	if err != nil {
		return nil, err
	}
	input := jira.MapBurndown(resp)

	// Merge the fresh chart data into the persistent sprint event log and
	// replay the union. Re-fetching is idempotent thanks to dedup.
	sourceID := eventlog.SourceID(boardID, sprintID)
	if err := s.store.Load(s.cfg.CacheDir, sourceID); err != nil {
		log.Warn().Err(err).Str("source", sourceID).Msg("Could not load sprint event cache")
	}
	s.store.Append(sourceID, eventlog.Flatten(input.Changes))
	if err := s.store.Save(s.cfg.CacheDir, sourceID); err != nil {
		log.Warn().Err(err).Str("source", sourceID).Msg("Could not persist sprint event cache")
	}
	input.Changes = eventlog.Rebucket(s.store.Records(sourceID))

	result := burndown.Replay(input)

	return &SprintBurndownResult{
		BoardID:    boardID,
		SprintID:   sprintID,
		Start:      input.Start,
		End:        input.End,
		Burndown:   result,
		EventCount: s.store.Count(sourceID),
	}, nil
}

func (s *Server) handleTimeInStatus(issueKey, startArg, endArg string) (interface{}, error) {
	if issueKey == "" {
		return nil, fmt.Errorf("issue_key is required")
	}

	issue, err := s.fetchIssue(issueKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statusEvents := timeline.FilterEvents(issue.Events, "status")
	end := timeline.EffectiveEnd(issue.Resolved, issue.Updated, now)
	segments := timeline.Build(issue.InitialStatus(), statusEvents, issue.Created, end)

	period := parsePeriod(startArg, endArg, now)
	residency := timeline.AggregateByCategory(segments, period, s.classifier)

	return &TimeInStatusResult{
		Key:         issue.Key,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		PeriodDays:  period.Days(),
		Residency:   residency,
	}, nil
}

func (s *Server) handleIssueMetrics(issueKey, jql, developer string) (interface{}, error) {
	query := jql
	if query == "" {
		if issueKey == "" {
			return nil, fmt.Errorf("either issue_key or jql is required")
		}
		query = fmt.Sprintf("key = %s", issueKey)
	}
	if developer == "" {
		developer = s.cfg.Developer
	}

	resp, err := s.jira.SearchIssuesWithHistory(query, 0, 50)
	if err != nil {
		return nil, err
	}
	if len(resp.Issues) == 0 {
		return nil, fmt.Errorf("no issues matched %q", query)
	}

	worklogs := s.hydrateWorklogs(resp.Issues)

	now := s.now()
	results := make([]IssueMetricsResult, 0, len(resp.Issues))
	for _, dto := range resp.Issues {
		issue := jira.MapIssue(dto)
		facts := metrics.Compute(metrics.Input{
			Created:        issue.Created,
			Updated:        issue.Updated,
			Resolved:       issue.Resolved,
			Now:            now,
			InitialStatus:  issue.InitialStatus(),
			StatusEvents:   timeline.FilterEvents(issue.Events, "status"),
			AssigneeEvents: timeline.FilterEvents(issue.Events, "assignee"),
			Worklogs:       worklogs[issue.Key],
			Developer:      developer,
		}, s.classifier)
		results = append(results, IssueMetricsResult{Key: issue.Key, Facts: facts})
	}

	return map[string]interface{}{"issues": results}, nil
}

func (s *Server) handleIssueRisk(issueKey string) (interface{}, error) {
	if issueKey == "" {
		return nil, fmt.Errorf("issue_key is required")
	}

	issue, err := s.fetchIssue(issueKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statusEvents := timeline.FilterEvents(issue.Events, "status")
	facts := metrics.Compute(metrics.Input{
		Created:        issue.Created,
		Updated:        issue.Updated,
		Resolved:       issue.Resolved,
		Now:            now,
		InitialStatus:  issue.InitialStatus(),
		StatusEvents:   statusEvents,
		AssigneeEvents: timeline.FilterEvents(issue.Events, "assignee"),
		Developer:      s.cfg.Developer,
	}, s.classifier)

	// Residency over the whole lifetime, not a trailing window.
	end := timeline.EffectiveEnd(issue.Resolved, issue.Updated, now)
	segments := timeline.Build(issue.InitialStatus(), statusEvents, issue.Created, end)
	lifetime := timeline.Period{Start: issue.Created, End: end}
	residency := timeline.AggregateByCategory(segments, lifetime, s.classifier)

	signals := risk.Signals{
		AgeDays:           now.Sub(issue.Created).Hours() / 24,
		SprintChanges:     len(timeline.FilterEvents(issue.Events, "Sprint")),
		AssigneeChanges:   len(timeline.FilterEvents(issue.Events, "assignee")),
		DaysSinceActivity: now.Sub(issue.Updated).Hours() / 24,
		Reopens:           facts.ReopenCount,
		ReviewDays:        residency.ByCategory[workflow.CategoryReview] / 86400,
		TestingDays:       residency.ByCategory[workflow.CategoryTesting] / 86400,
		Priority:          issue.Priority,
	}

	return &IssueRiskResult{
		Key:     issue.Key,
		Signals: signals,
		Risk:    risk.Evaluate(signals, s.thresholds, s.weights),
	}, nil
}

func (s *Server) handleCapacity(boardID, sprintID int, hoursPerDay float64) (interface{}, error) {
	if boardID <= 0 || sprintID <= 0 {
		return nil, fmt.Errorf("board_id and sprint_id are required")
	}
	if hoursPerDay <= 0 {
		hoursPerDay = s.cfg.HoursPerDay
	}

	resp, err := s.jira.GetScopeChangeBurndown(boardID, sprintID)
	if err != nil {
		return nil, err
	}
	input := jira.MapBurndown(resp)

	capacity := burndown.Calculate(input.Rates, input.Start, input.End, hoursPerDay)

	return &CapacityResult{
		BoardID:         boardID,
		SprintID:        sprintID,
		HoursPerDay:     hoursPerDay,
		WorkingDays:     capacity.WorkingDays,
		CapacitySeconds: capacity.CapacitySeconds,
		RateIntervals:   len(input.Rates),
	}, nil
}

// fetchIssue resolves one issue with its full changelog.
func (s *Server) fetchIssue(issueKey string) (jira.Issue, error) {
	resp, err := s.jira.SearchIssuesWithHistory(fmt.Sprintf("key = %s", issueKey), 0, 1)
	if err != nil {
		return jira.Issue{}, err
	}
	if len(resp.Issues) == 0 {
		return jira.Issue{}, fmt.Errorf("issue %s not found", issueKey)
	}
	return jira.MapIssue(resp.Issues[0]), nil
}
