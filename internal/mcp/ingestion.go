package mcp

import (
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sprintlens/internal/jira"
	"sprintlens/internal/metrics"
)

// worklogFetchLimit bounds parallel worklog requests per batch.
const worklogFetchLimit = 4

// hydrateWorklogs fetches worklogs for a batch of issues in parallel. A failed
// fetch degrades that issue to an empty worklog list instead of failing the
// whole batch.
func (s *Server) hydrateWorklogs(issues []jira.IssueDTO) map[string][]metrics.Worklog {
	var mu sync.Mutex
	result := make(map[string][]metrics.Worklog, len(issues))

	g := new(errgroup.Group)
	g.SetLimit(worklogFetchLimit)

	for _, dto := range issues {
		key := dto.Key
		g.Go(func() error {
			logs, err := s.jira.GetIssueWorklogs(key)
			if err != nil {
				log.Warn().Err(err).Str("issue", key).Msg("Worklog fetch failed, metrics will omit logged time")
				return nil
			}
			mapped := jira.MapWorklogs(logs)
			mu.Lock()
			result[key] = mapped
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return result
}
