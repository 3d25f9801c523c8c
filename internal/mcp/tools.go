package mcp

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []interface{}{
			map[string]interface{}{
				"name":        "find_boards",
				"description": "Search for Agile boards, optionally filtering by project key or name. Guidance: Call 'find_sprints' next to pick the sprint to analyze.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project_key": map[string]interface{}{"type": "string", "description": "Optional project key"},
						"name_filter": map[string]interface{}{"type": "string", "description": "Filter by board name"},
					},
				},
			},
			map[string]interface{}{
				"name":        "find_sprints",
				"description": "List sprints of a board, optionally filtered by state (active, closed, future).",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"board_id": map[string]interface{}{"type": "integer", "description": "The board ID"},
						"state":    map[string]interface{}{"type": "string", "enum": []string{"active", "closed", "future"}},
					},
					"required": []string{"board_id"},
				},
			},
			map[string]interface{}{
				"name": "get_sprint_burndown",
				"description": "Replay the scope-change log of a sprint into burndown series: remaining scope, completed work, ideal guideline and a flat projection. " +
					"Markers list every discrete scope and completion change with the item key and summary. " +
					"All series are step functions over millisecond timestamps.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"board_id":  map[string]interface{}{"type": "integer", "description": "The board ID"},
						"sprint_id": map[string]interface{}{"type": "integer", "description": "The sprint ID"},
					},
					"required": []string{"board_id", "sprint_id"},
				},
			},
			map[string]interface{}{
				"name": "get_time_in_status",
				"description": "Reconstruct the status timeline of one issue and sum the seconds spent in each status within a period, " +
					"plus totals per semantic category (queue, work, review, testing, waiting, done). " +
					"Omitting the period falls back to the last 30 days.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"issue_key":    map[string]interface{}{"type": "string", "description": "The issue key (e.g., PROJ-123)"},
						"period_start": map[string]interface{}{"type": "string", "description": "Period start, YYYY-MM-DD"},
						"period_end":   map[string]interface{}{"type": "string", "description": "Period end, YYYY-MM-DD"},
					},
					"required": []string{"issue_key"},
				},
			},
			map[string]interface{}{
				"name": "get_issue_metrics",
				"description": "Derive lifecycle metrics for issues: lead/cycle/wait time, when work was taken up, " +
					"worklog anchors, reopen count and post-last-commit closure behavior. " +
					"Pass either a single issue_key or a JQL query for a batch.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"issue_key": map[string]interface{}{"type": "string", "description": "A single issue key"},
						"jql":       map[string]interface{}{"type": "string", "description": "JQL selecting a batch of issues"},
						"developer": map[string]interface{}{"type": "string", "description": "Developer name anchoring 'took work' detection"},
					},
				},
			},
			map[string]interface{}{
				"name": "get_issue_risk",
				"description": "Score the delivery risk of one issue (0-100) from weighted signals: age, sprint churn, assignee churn, " +
					"inactivity, reopens, review and testing residency, and priority. Each triggered factor is explained.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"issue_key": map[string]interface{}{"type": "string", "description": "The issue key (e.g., PROJ-123)"},
					},
					"required": []string{"issue_key"},
				},
			},
			map[string]interface{}{
				"name": "get_capacity",
				"description": "Compute the working-day capacity of a sprint from its work-rate intervals. " +
					"Falls back to weekday counting when the board has no rate data.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"board_id":      map[string]interface{}{"type": "integer", "description": "The board ID"},
						"sprint_id":     map[string]interface{}{"type": "integer", "description": "The sprint ID"},
						"hours_per_day": map[string]interface{}{"type": "number", "description": "Working hours per day, defaults to configuration"},
					},
					"required": []string{"board_id", "sprint_id"},
				},
			},
		},
	}
}
