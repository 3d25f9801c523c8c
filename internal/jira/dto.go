package jira

import "time"

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	Total  int        `json:"total"`
	Issues []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Fields    FieldsDTO     `json:"fields"`
	Changelog *ChangelogDTO `json:"changelog,omitempty"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	IssueType struct {
		Name    string `json:"name"`
		Subtask bool   `json:"subtask"`
	} `json:"issuetype"`
	Status struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"status"`
	Priority struct {
		Name string `json:"name"`
	} `json:"priority"`
	Assignee struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"assignee"`
	Resolution struct {
		Name string `json:"name"`
	} `json:"resolution"`
	ResolutionDate string `json:"resolutiondate"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
}

// ChangelogDTO contains historical field changes.
type ChangelogDTO struct {
	Histories []HistoryDTO `json:"histories"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
}

// WorklogListDTO is the response of the per-issue worklog endpoint.
type WorklogListDTO struct {
	Total    int          `json:"total"`
	Worklogs []WorklogDTO `json:"worklogs"`
}

// WorklogDTO is one time-tracking entry.
type WorklogDTO struct {
	Author struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Started          string `json:"started"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
	Comment          string `json:"comment"`
}

// ColumnChangeDTO carries a status transition inside a scope-change entry.
type ColumnChangeDTO struct {
	Done      bool   `json:"done,omitempty"`
	NotDone   bool   `json:"notDone,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
}

// ScopeChangeDTO is one raw scope-change entry.
type ScopeChangeDTO struct {
	Key     string           `json:"key"`
	Added   bool             `json:"added,omitempty"`
	Removed bool             `json:"removed,omitempty"`
	Deleted bool             `json:"deleted,omitempty"`
	Done    bool             `json:"done,omitempty"`
	NotDone bool             `json:"notDone,omitempty"`
	Column  *ColumnChangeDTO `json:"column,omitempty"`
}

// WorkRateDTO is a raw work-rate interval in millisecond timestamps.
type WorkRateDTO struct {
	Start int64   `json:"start"`
	End   int64   `json:"end"`
	Rate  float64 `json:"rate"`
}

// BurndownResponse is the scope-change burndown chart payload. Changes is
// keyed by a millisecond timestamp string; one key may carry several item
// mutations that happened in the same instant.
type BurndownResponse struct {
	StartTime int64                       `json:"startTime"`
	EndTime   int64                       `json:"endTime"`
	Now       int64                       `json:"now"`
	Changes   map[string][]ScopeChangeDTO `json:"changes"`
	WorkRates struct {
		Rates []WorkRateDTO `json:"rates"`
	} `json:"workRateData"`
	IssueToSummary map[string]string `json:"issueToSummary"`
}

// BoardsResponse is the paginated board search payload.
type BoardsResponse struct {
	IsLast bool       `json:"isLast"`
	Values []BoardDTO `json:"values"`
}

// BoardDTO is a single Agile board.
type BoardDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SprintsResponse is the paginated board sprint listing payload.
type SprintsResponse struct {
	IsLast bool        `json:"isLast"`
	Values []SprintDTO `json:"values"`
}

// SprintDTO is a single sprint of a board.
type SprintDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}
