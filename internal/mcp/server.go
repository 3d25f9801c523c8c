package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"sprintlens/internal/config"
	"sprintlens/internal/eventlog"
	"sprintlens/internal/jira"
	"sprintlens/internal/risk"
	"sprintlens/internal/workflow"
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server holds the state for the MCP server.
type Server struct {
	jira       jira.Client
	store      *eventlog.Store
	cfg        *config.AppConfig
	classifier workflow.Classifier
	thresholds risk.Thresholds
	weights    risk.Weights

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewServer creates a new MCP server.
func NewServer(client jira.Client, store *eventlog.Store, cfg *config.AppConfig) *Server {
	return &Server{
		jira:       client,
		store:      store,
		cfg:        cfg,
		classifier: workflow.NewClassifier(cfg.Workflow),
		thresholds: risk.DefaultThresholds(),
		weights:    risk.DefaultWeights(),
		now:        time.Now,
	}
}

// Serve starts the JSON-RPC loop over Stdio.
func (s *Server) Serve() error {
	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"serverInfo": map[string]interface{}{
				"name":    "sprintlens",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = map[string]interface{}{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(os.Stdout, "%s\n", out)
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	args := call.Arguments
	var data interface{}
	var err error

	switch call.Name {
	case "find_boards":
		data, err = s.handleFindBoards(asString(args["project_key"]), asString(args["name_filter"]))
	case "find_sprints":
		data, err = s.handleFindSprints(asInt(args["board_id"]), asString(args["state"]))
	case "get_sprint_burndown":
		data, err = s.handleSprintBurndown(asInt(args["board_id"]), asInt(args["sprint_id"]))
	case "get_time_in_status":
		data, err = s.handleTimeInStatus(asString(args["issue_key"]), asString(args["period_start"]), asString(args["period_end"]))
	case "get_issue_metrics":
		data, err = s.handleIssueMetrics(asString(args["issue_key"]), asString(args["jql"]), asString(args["developer"]))
	case "get_issue_risk":
		data, err = s.handleIssueRisk(asString(args["issue_key"]))
	case "get_capacity":
		data, err = s.handleCapacity(asInt(args["board_id"]), asInt(args["sprint_id"]), asFloat(args["hours_per_day"]))
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}
