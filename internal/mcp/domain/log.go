package domain

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/game/analytics"
	"github.com/louisbranch/synthesis.garden/internal/game/export"
	"github.com/louisbranch/synthesis.garden/internal/game/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func summaryResult(summary analytics.SessionSummary) SummaryResult {
	result := SummaryResult{
		SessionID:            summary.SessionID,
		Mode:                 summary.Mode.String(),
		TotalAttempts:        summary.TotalAttempts,
		SuccessfulAttempts:   summary.SuccessfulAttempts,
		ElementsDiscovered:   summary.ElementsDiscovered,
		FinalInventorySize:   summary.FinalInventorySize,
		DiscoveryRate:        summary.DiscoveryRate,
		LongestSuccessStreak: summary.LongestSuccessStreak,
		LongestFailureStreak: summary.LongestFailureStreak,
		PlateauCount:         summary.PlateauCount,
		TargetReached:        summary.TargetReached,
		StartTime:            summary.StartTime.Format(time.RFC3339),
	}
	if summary.EndTime != nil {
		result.EndTime = summary.EndTime.Format(time.RFC3339)
	}
	return result
}

// ListSessionsInput represents the MCP tool input for listing sessions.
type ListSessionsInput struct{}

// SessionEntry is one row in a session listing.
type SessionEntry struct {
	SessionID  string `json:"session_id" jsonschema:"session identifier"`
	Mode       string `json:"mode" jsonschema:"game mode"`
	Status     string `json:"status" jsonschema:"session status (active, ended)"`
	RoundsUsed int    `json:"rounds_used" jsonschema:"attempts consumed so far"`
	RoundsMax  int    `json:"rounds_max" jsonschema:"maximum attempts allowed"`
}

// ListSessionsResult represents the MCP tool output for listing sessions.
type ListSessionsResult struct {
	Sessions []SessionEntry `json:"sessions" jsonschema:"sessions in creation order"`
}

// ListSessionsTool defines the MCP tool schema for listing sessions.
func ListSessionsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_sessions",
		Description: "Lists all game sessions with their status and round counters.",
	}
}

// ListSessionsHandler executes a session listing request.
func ListSessionsHandler(game *service.GameService) mcp.ToolHandlerFor[ListSessionsInput, ListSessionsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListSessionsInput) (*mcp.CallToolResult, ListSessionsResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		infos, err := game.ListSessions(runCtx)
		if err != nil {
			return nil, ListSessionsResult{}, toolError(err)
		}

		result := ListSessionsResult{Sessions: make([]SessionEntry, 0, len(infos))}
		for _, info := range infos {
			result.Sessions = append(result.Sessions, SessionEntry{
				SessionID:  info.SessionID,
				Mode:       info.Mode.String(),
				Status:     info.Status.String(),
				RoundsUsed: info.RoundsUsed,
				RoundsMax:  info.RoundsMax,
			})
		}
		return nil, result, nil
	}
}

// AttemptLogInput represents the MCP tool input for reading an attempt log.
type AttemptLogInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Format    string `json:"format,omitempty" jsonschema:"output format: json (default), csv, or digest"`
}

// AttemptLogResult represents the MCP tool output for reading an attempt log.
type AttemptLogResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Format    string `json:"format" jsonschema:"format of the rendered log"`
	Rendered  string `json:"rendered" jsonschema:"attempt log rendered in the requested format"`
}

// AttemptLogTool defines the MCP tool schema for reading an attempt log.
func AttemptLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_attempt_log",
		Description: "Returns the full attempt log of a session rendered as JSON, CSV, or a human-readable digest.",
	}
}

// AttemptLogHandler executes an attempt log request.
func AttemptLogHandler(game *service.GameService) mcp.ToolHandlerFor[AttemptLogInput, AttemptLogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AttemptLogInput) (*mcp.CallToolResult, AttemptLogResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		format := input.Format
		if format == "" {
			format = "json"
		}

		records, err := game.AttemptLog(runCtx, input.SessionID)
		if err != nil {
			return nil, AttemptLogResult{}, toolError(err)
		}

		var buf bytes.Buffer
		switch format {
		case "json":
			summary, err := game.SessionSummary(runCtx, input.SessionID)
			if err != nil {
				return nil, AttemptLogResult{}, toolError(err)
			}
			if err := export.JSON(&buf, summary, records); err != nil {
				return nil, AttemptLogResult{}, fmt.Errorf("render attempt log: %w", err)
			}
		case "csv":
			if err := export.CSV(&buf, records); err != nil {
				return nil, AttemptLogResult{}, fmt.Errorf("render attempt log: %w", err)
			}
		case "digest":
			summary, err := game.SessionSummary(runCtx, input.SessionID)
			if err != nil {
				return nil, AttemptLogResult{}, toolError(err)
			}
			if err := export.Digest(&buf, summary, records); err != nil {
				return nil, AttemptLogResult{}, fmt.Errorf("render attempt log: %w", err)
			}
		default:
			return nil, AttemptLogResult{}, fmt.Errorf("format must be json, csv, or digest, got %q", input.Format)
		}

		return nil, AttemptLogResult{
			SessionID: input.SessionID,
			Format:    format,
			Rendered:  buf.String(),
		}, nil
	}
}

// SessionLogInput represents the MCP tool input for on-demand summaries.
type SessionLogInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier, or 'all' for every session"`
	Format    string `json:"format,omitempty" jsonschema:"output format: json (default, structured summaries) or digest (human-readable text)"`
}

// SessionLogResult represents the MCP tool output for on-demand summaries.
type SessionLogResult struct {
	Summaries []SummaryResult `json:"summaries" jsonschema:"session summaries in creation order"`
	Rendered  string          `json:"rendered,omitempty" jsonschema:"digest rendering, present when format is digest"`
}

// SessionLogTool defines the MCP tool schema for on-demand summaries.
func SessionLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_session_log",
		Description: "Returns the current summary of one session, or of every session when session_id is 'all', without ending anything.",
	}
}

// SessionLogHandler executes an on-demand summary request.
func SessionLogHandler(game *service.GameService) mcp.ToolHandlerFor[SessionLogInput, SessionLogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionLogInput) (*mcp.CallToolResult, SessionLogResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		if input.Format != "" && input.Format != "json" && input.Format != "digest" {
			return nil, SessionLogResult{}, fmt.Errorf("format must be json or digest, got %q", input.Format)
		}

		var summaries []analytics.SessionSummary
		if input.SessionID == "all" {
			all, err := game.SessionSummaries(runCtx)
			if err != nil {
				return nil, SessionLogResult{}, toolError(err)
			}
			summaries = all
		} else {
			summary, err := game.SessionSummary(runCtx, input.SessionID)
			if err != nil {
				return nil, SessionLogResult{}, toolError(err)
			}
			summaries = []analytics.SessionSummary{summary}
		}

		result := SessionLogResult{Summaries: make([]SummaryResult, 0, len(summaries))}
		for _, summary := range summaries {
			result.Summaries = append(result.Summaries, summaryResult(summary))
		}

		if input.Format == "digest" {
			var buf bytes.Buffer
			for _, summary := range summaries {
				records, err := game.AttemptLog(runCtx, summary.SessionID)
				if err != nil {
					return nil, SessionLogResult{}, toolError(err)
				}
				if err := export.Digest(&buf, summary, records); err != nil {
					return nil, SessionLogResult{}, fmt.Errorf("render session log: %w", err)
				}
			}
			result.Rendered = buf.String()
		}

		return nil, result, nil
	}
}
