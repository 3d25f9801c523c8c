package jira

import (
	"time"
)

// Client is the interface for interacting with Jira Data Center.
type Client interface {
	SearchIssues(jql string, startAt int, maxResults int) (*SearchResponse, error)
	SearchIssuesWithHistory(jql string, startAt int, maxResults int) (*SearchResponse, error)
	GetIssueWorklogs(issueKey string) ([]WorklogDTO, error)
	GetScopeChangeBurndown(boardID int, sprintID int) (*BurndownResponse, error)
	FindBoards(projectKey string, nameFilter string) ([]BoardDTO, error)
	GetSprints(boardID int, state string) ([]SprintDTO, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Personal Access Token (preferred)
	Token string

	// Data Center Cookies
	XsrfToken  string
	SessionID  string
	RememberMe string

	// Load Balancer Cookies
	GCILB string
	GCLB  string

	// Performance Settings
	RequestDelay time.Duration
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewDataCenterClient(cfg)
}
