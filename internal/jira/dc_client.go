package jira

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type dcClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex

	// Internal Inventory (Sliding Window)
	boardInventory []BoardDTO
	inventoryMutex sync.RWMutex
}

type cacheEntry struct {
	Value       interface{}
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

func NewDataCenterClient(cfg Config) Client {
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 10 * time.Second
	}
	return &dcClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *dcClient) getFromCache(key string) (interface{}, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}

	// Sliding window extension
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
		log.Trace().Str("key", key).Int("count", entry.AccessCount).Msg("Extended cache TTL")
	}

	return entry.Value, true
}

func (c *dcClient) addToCache(key string, value interface{}, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(ttl),
		OriginalTTL: ttl,
		AccessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

func (c *dcClient) throttle(isMetadata bool) {
	// Metadata requests (boards, sprints) are allowed to "burst" sequentially
	// to avoid artificial delay during the setup phase.
	if isMetadata {
		c.lastRequest = time.Now()
		return
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *dcClient) authenticateRequest(req *http.Request) {
	// 1. Prioritize Personal Access Token (PAT)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
		return
	}

	// 2. Fallback to session cookies
	cookies := []struct {
		name  string
		value string
	}{
		{"atlassian.xsrf.token", c.cfg.XsrfToken},
		{"JSESSIONID", c.cfg.SessionID},
		{"seraph.rememberme.cookie", c.cfg.RememberMe},
		{"GCILB", c.cfg.GCILB},
		{"GCLB", c.cfg.GCLB},
	}

	var cookiePairs []string
	for _, cookie := range cookies {
		if cookie.value != "" {
			// We build the string manually to avoid net/http's strict RFC 6265 validation
			// which would drop valid Jira/GCLB cookies containing double quotes.
			cookiePairs = append(cookiePairs, fmt.Sprintf("%s=%s", cookie.name, cookie.value))
		}
	}

	if len(cookiePairs) > 0 {
		req.Header.Set("Cookie", strings.Join(cookiePairs, "; "))
	}
}

// getJSON performs an authenticated GET and decodes the body into out.
// subject names the resource for error messages.
func (c *dcClient) getJSON(requestURL string, subject string, out interface{}) error {
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return err
	}

	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s not found", subject)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("Jira authentication failed (401/403). Please check your token or session cookies.")
		case http.StatusTooManyRequests:
			retryAfter := resp.Header.Get("Retry-After")
			if retryAfter != "" {
				return fmt.Errorf("Jira rate limit exceeded (429). Retry after %s seconds.", retryAfter)
			}
			return fmt.Errorf("Jira rate limit exceeded (429).")
		default:
			return fmt.Errorf("Jira API returned status %d for %s", resp.StatusCode, subject)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", subject, err)
	}
	return nil
}

func (c *dcClient) SearchIssues(jql string, startAt int, maxResults int) (*SearchResponse, error) {
	return c.searchInternal(jql, startAt, maxResults, "")
}

func (c *dcClient) SearchIssuesWithHistory(jql string, startAt int, maxResults int) (*SearchResponse, error) {
	return c.searchInternal(jql, startAt, maxResults, "changelog")
}

func (c *dcClient) searchInternal(jql string, startAt int, maxResults int, expand string) (*SearchResponse, error) {
	cacheKey := fmt.Sprintf("search:%s:%d:%d:%s", jql, startAt, maxResults, expand)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.(*SearchResponse), nil
	}

	c.throttle(false)

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", fmt.Sprintf("%d", startAt))
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("fields", "issuetype,status,priority,assignee,resolution,resolutiondate,created,updated")
	if expand != "" {
		params.Set("expand", expand)
	}

	searchURL := fmt.Sprintf("%s/rest/api/2/search?%s", c.cfg.BaseURL, params.Encode())
	log.Info().Msg("Requesting issues from Jira")
	log.Debug().Str("url", searchURL).Str("jql", jql).Msg("Jira search details")

	var result SearchResponse
	if err := c.getJSON(searchURL, "issue search", &result); err != nil {
		return nil, err
	}

	c.addToCache(cacheKey, &result, 10*time.Minute)

	return &result, nil
}

func (c *dcClient) GetIssueWorklogs(issueKey string) ([]WorklogDTO, error) {
	cacheKey := "worklog:" + issueKey
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]WorklogDTO), nil
	}

	c.throttle(false)

	requestURL := fmt.Sprintf("%s/rest/api/2/issue/%s/worklog", c.cfg.BaseURL, url.PathEscape(issueKey))
	log.Debug().Str("issue", issueKey).Msg("Requesting worklogs from Jira")

	var result WorklogListDTO
	if err := c.getJSON(requestURL, fmt.Sprintf("worklogs of %s", issueKey), &result); err != nil {
		return nil, err
	}

	c.addToCache(cacheKey, result.Worklogs, 10*time.Minute)

	return result.Worklogs, nil
}

func (c *dcClient) GetScopeChangeBurndown(boardID int, sprintID int) (*BurndownResponse, error) {
	cacheKey := fmt.Sprintf("burndown:%d:%d", boardID, sprintID)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.(*BurndownResponse), nil
	}

	c.throttle(false)

	params := url.Values{}
	params.Set("rapidViewId", fmt.Sprintf("%d", boardID))
	params.Set("sprintId", fmt.Sprintf("%d", sprintID))

	requestURL := fmt.Sprintf("%s/rest/greenhopper/1.0/rapid/charts/scopechangeburndownchart?%s", c.cfg.BaseURL, params.Encode())
	log.Info().Int("board", boardID).Int("sprint", sprintID).Msg("Requesting scope-change burndown from Jira")

	var result BurndownResponse
	if err := c.getJSON(requestURL, fmt.Sprintf("burndown of sprint %d", sprintID), &result); err != nil {
		return nil, err
	}

	c.addToCache(cacheKey, &result, 10*time.Minute)

	return &result, nil
}

func (c *dcClient) FindBoards(projectKey string, nameFilter string) ([]BoardDTO, error) {
	cacheKey := fmt.Sprintf("find_boards:%s:%s", projectKey, nameFilter)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]BoardDTO), nil
	}

	c.throttle(true)

	params := url.Values{}
	if projectKey != "" {
		params.Set("projectKeyOrId", projectKey)
	}
	if nameFilter != "" {
		params.Set("name", nameFilter)
	}
	params.Set("maxResults", "30")

	searchURL := fmt.Sprintf("%s/rest/agile/1.0/board?%s", c.cfg.BaseURL, params.Encode())

	var result BoardsResponse
	if err := c.getJSON(searchURL, "board search", &result); err != nil {
		return nil, err
	}

	c.updateInventory(result.Values)
	c.addToCache(cacheKey, result.Values, 5*time.Minute)

	// Recall from inventory (merged perspective)
	return c.filterInventory(nameFilter, 30), nil
}

func (c *dcClient) GetSprints(boardID int, state string) ([]SprintDTO, error) {
	cacheKey := fmt.Sprintf("sprints:%d:%s", boardID, state)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]SprintDTO), nil
	}

	c.throttle(true)

	var sprints []SprintDTO
	startAt := 0
	for {
		params := url.Values{}
		params.Set("startAt", fmt.Sprintf("%d", startAt))
		params.Set("maxResults", "50")
		if state != "" {
			params.Set("state", state)
		}

		requestURL := fmt.Sprintf("%s/rest/agile/1.0/board/%d/sprint?%s", c.cfg.BaseURL, boardID, params.Encode())

		var page SprintsResponse
		if err := c.getJSON(requestURL, fmt.Sprintf("sprints of board %d", boardID), &page); err != nil {
			return nil, err
		}

		sprints = append(sprints, page.Values...)
		if page.IsLast || len(page.Values) == 0 {
			break
		}
		startAt += len(page.Values)
	}

	c.addToCache(cacheKey, sprints, 5*time.Minute)

	return sprints, nil
}

func (c *dcClient) updateInventory(newItems []BoardDTO) {
	c.inventoryMutex.Lock()
	defer c.inventoryMutex.Unlock()

	const limit = 1000

	for _, newItem := range newItems {
		foundIdx := -1

		// Find if it already exists to move it to the end
		for i, existing := range c.boardInventory {
			if existing.ID == newItem.ID {
				foundIdx = i
				break
			}
		}

		if foundIdx != -1 {
			// Remove from current position
			c.boardInventory = append(c.boardInventory[:foundIdx], c.boardInventory[foundIdx+1:]...)
		}

		// Push to end
		c.boardInventory = append(c.boardInventory, newItem)
	}

	// Enforce cap
	if len(c.boardInventory) > limit {
		c.boardInventory = c.boardInventory[len(c.boardInventory)-limit:]
	}

	log.Debug().Int("size", len(c.boardInventory)).Msg("Board inventory updated")
}

func (c *dcClient) filterInventory(query string, limit int) []BoardDTO {
	c.inventoryMutex.RLock()
	defer c.inventoryMutex.RUnlock()

	var matches []BoardDTO
	q := strings.ToLower(query)

	// Iterate backwards to prioritize most recent discoveries
	for i := len(c.boardInventory) - 1; i >= 0; i-- {
		item := c.boardInventory[i]
		match := q == "" ||
			strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(fmt.Sprintf("%d", item.ID), q)

		if match {
			matches = append(matches, item)
		}
		if len(matches) >= limit {
			break
		}
	}

	return matches
}
