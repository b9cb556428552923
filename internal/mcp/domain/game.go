// Package domain defines the MCP tools and resources for the crafting
// game. Each tool pairs a typed input/output schema with a handler that
// delegates to the game service; handlers render game-rule failures as
// user-facing messages through the error catalog.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	gamedomain "github.com/louisbranch/synthesis.garden/internal/game/domain"
	"github.com/louisbranch/synthesis.garden/internal/game/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/synthesis.garden/internal/platform/errors"
)

// toolTimeout bounds a single tool invocation.
const toolTimeout = 5 * time.Second

// toolError renders a service error as a user-facing tool failure.
func toolError(err error) error {
	return errors.New(apperrors.UserMessage(err, apperrors.DefaultLocale))
}

func elementsToStrings(elements []recipe.Element) []string {
	out := make([]string, len(elements))
	for i, element := range elements {
		out[i] = string(element)
	}
	return out
}

// StartGameInput represents the MCP tool input for starting a game session.
type StartGameInput struct {
	SessionID         string   `json:"session_id,omitempty" jsonschema:"optional caller-supplied session identifier; generated when empty"`
	Mode              string   `json:"mode,omitempty" jsonschema:"game mode: open-ended (default) or targeted"`
	MaxRounds         int      `json:"max_rounds" jsonschema:"maximum number of combination attempts, must be positive"`
	Target            string   `json:"target,omitempty" jsonschema:"target element to craft (targeted mode only)"`
	StartingInventory []string `json:"starting_inventory,omitempty" jsonschema:"optional starting inventory override; defaults to the four base elements"`
}

// StartGameResult represents the MCP tool output for starting a game session.
type StartGameResult struct {
	SessionID  string   `json:"session_id" jsonschema:"session identifier"`
	Mode       string   `json:"mode" jsonschema:"game mode"`
	Target     string   `json:"target,omitempty" jsonschema:"target element (targeted mode)"`
	Status     string   `json:"status" jsonschema:"session status (active, ended)"`
	Inventory  []string `json:"inventory" jsonschema:"starting inventory in discovery order"`
	RoundsUsed int      `json:"rounds_used" jsonschema:"attempts consumed so far"`
	RoundsMax  int      `json:"rounds_max" jsonschema:"maximum attempts allowed"`
	StartedAt  string   `json:"started_at" jsonschema:"RFC3339 timestamp when the session started"`
}

// StartGameTool defines the MCP tool schema for starting a game session.
func StartGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "start_game",
		Description: "Starts a new crafting session seeded with the base elements. Combine inventory items to discover new elements.",
	}
}

// StartGameHandler executes a start game request.
func StartGameHandler(game *service.GameService) mcp.ToolHandlerFor[StartGameInput, StartGameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StartGameInput) (*mcp.CallToolResult, StartGameResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		mode, err := gamedomain.ParseMode(input.Mode)
		if err != nil {
			return nil, StartGameResult{}, fmt.Errorf("mode must be open-ended or targeted, got %q", input.Mode)
		}

		starting := make([]recipe.Element, 0, len(input.StartingInventory))
		for _, name := range input.StartingInventory {
			starting = append(starting, recipe.Element(name))
		}

		state, err := game.CreateSession(runCtx, gamedomain.CreateSessionInput{
			ID:                input.SessionID,
			Mode:              mode,
			MaxRounds:         input.MaxRounds,
			Target:            recipe.Element(input.Target),
			StartingInventory: starting,
		})
		if err != nil {
			return nil, StartGameResult{}, toolError(err)
		}

		return nil, StartGameResult{
			SessionID:  state.SessionID,
			Mode:       state.Mode.String(),
			Target:     string(state.Target),
			Status:     state.Status.String(),
			Inventory:  elementsToStrings(state.Inventory),
			RoundsUsed: state.RoundsUsed,
			RoundsMax:  state.RoundsMax,
			StartedAt:  state.StartedAt.Format(time.RFC3339),
		}, nil
	}
}

// CombineInput represents the MCP tool input for a combination attempt.
type CombineInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Item1     string `json:"item1" jsonschema:"first inventory item"`
	Item2     string `json:"item2" jsonschema:"second inventory item"`
	Reasoning string `json:"reasoning,omitempty" jsonschema:"optional free-form note on why this pair was chosen"`
}

// CombineResult represents the MCP tool output for a combination attempt.
type CombineResult struct {
	SessionID     string          `json:"session_id" jsonschema:"session identifier"`
	AttemptNumber int             `json:"attempt_number" jsonschema:"1-based attempt number"`
	Success       bool            `json:"success" jsonschema:"whether the pair matched a recipe"`
	Novel         bool            `json:"is_novel" jsonschema:"whether this pair was attempted for the first time in this session"`
	Created       []string        `json:"created" jsonschema:"newly discovered elements, empty on a miss"`
	AlreadyKnown  []string        `json:"already_known" jsonschema:"recipe results already in the inventory"`
	FinalFlags    map[string]bool `json:"final_flags" jsonschema:"per result element, whether it can never be used as an ingredient"`
	RoundsUsed    int             `json:"rounds_used" jsonschema:"attempts consumed so far"`
	RoundsMax     int             `json:"rounds_max" jsonschema:"maximum attempts allowed"`
	TargetReached bool            `json:"target_reached" jsonschema:"whether the target element is in the inventory (targeted mode)"`
}

// CombineTool defines the MCP tool schema for a combination attempt.
func CombineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combine",
		Description: "Combines two inventory items. A miss still consumes a round; repeating a known pair consumes a round too.",
	}
}

// CombineHandler executes a combination attempt.
func CombineHandler(game *service.GameService) mcp.ToolHandlerFor[CombineInput, CombineResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombineInput) (*mcp.CallToolResult, CombineResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		move, err := game.Attempt(runCtx, input.SessionID, input.Item1, input.Item2, input.Reasoning)
		if err != nil {
			return nil, CombineResult{}, toolError(err)
		}

		finalFlags := make(map[string]bool, len(move.FinalFlags))
		for element, final := range move.FinalFlags {
			finalFlags[string(element)] = final
		}

		return nil, CombineResult{
			SessionID:     move.SessionID,
			AttemptNumber: move.AttemptNumber,
			Success:       move.Success,
			Novel:         move.Novel,
			Created:       elementsToStrings(move.Created),
			AlreadyKnown:  elementsToStrings(move.AlreadyKnown),
			FinalFlags:    finalFlags,
			RoundsUsed:    move.RoundsUsed,
			RoundsMax:     move.RoundsMax,
			TargetReached: move.TargetReached,
		}, nil
	}
}

// GameStateInput represents the MCP tool input for reading session state.
type GameStateInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// GameStateResult represents the MCP tool output for reading session state.
type GameStateResult struct {
	SessionID     string   `json:"session_id" jsonschema:"session identifier"`
	Mode          string   `json:"mode" jsonschema:"game mode"`
	Target        string   `json:"target,omitempty" jsonschema:"target element (targeted mode)"`
	TargetReached bool     `json:"target_reached" jsonschema:"whether the target element has been crafted"`
	Status        string   `json:"status" jsonschema:"session status (active, ended)"`
	Inventory     []string `json:"inventory" jsonschema:"current inventory in discovery order"`
	RoundsUsed    int      `json:"rounds_used" jsonschema:"attempts consumed so far"`
	RoundsMax     int      `json:"rounds_max" jsonschema:"maximum attempts allowed"`
	StartedAt     string   `json:"started_at" jsonschema:"RFC3339 timestamp when the session started"`
	EndedAt       string   `json:"ended_at,omitempty" jsonschema:"RFC3339 timestamp when the session ended, if applicable"`
}

// GameStateTool defines the MCP tool schema for reading session state.
func GameStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_game_state",
		Description: "Returns the current inventory, round counters, and status of a session.",
	}
}

// GameStateHandler executes a state read request.
func GameStateHandler(game *service.GameService) mcp.ToolHandlerFor[GameStateInput, GameStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameStateInput) (*mcp.CallToolResult, GameStateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		state, err := game.GetState(runCtx, input.SessionID)
		if err != nil {
			return nil, GameStateResult{}, toolError(err)
		}

		result := GameStateResult{
			SessionID:     state.SessionID,
			Mode:          state.Mode.String(),
			Target:        string(state.Target),
			TargetReached: state.TargetReached,
			Status:        state.Status.String(),
			Inventory:     elementsToStrings(state.Inventory),
			RoundsUsed:    state.RoundsUsed,
			RoundsMax:     state.RoundsMax,
			StartedAt:     state.StartedAt.Format(time.RFC3339),
		}
		if state.EndedAt != nil {
			result.EndedAt = state.EndedAt.Format(time.RFC3339)
		}
		return nil, result, nil
	}
}

// SummaryResult represents a session summary in MCP tool output.
type SummaryResult struct {
	SessionID            string  `json:"session_id" jsonschema:"session identifier"`
	Mode                 string  `json:"mode" jsonschema:"game mode"`
	TotalAttempts        int     `json:"total_attempts" jsonschema:"total combination attempts"`
	SuccessfulAttempts   int     `json:"successful_attempts" jsonschema:"attempts that matched a recipe"`
	ElementsDiscovered   int     `json:"elements_discovered" jsonschema:"elements added to the inventory"`
	FinalInventorySize   int     `json:"final_inventory_size" jsonschema:"inventory size at summary time"`
	DiscoveryRate        float64 `json:"discovery_rate" jsonschema:"successful_attempts / total_attempts"`
	LongestSuccessStreak int     `json:"longest_success_streak" jsonschema:"longest run of consecutive successes"`
	LongestFailureStreak int     `json:"longest_failure_streak" jsonschema:"longest run of consecutive failures"`
	PlateauCount         int     `json:"plateau_count" jsonschema:"number of completed no-discovery windows"`
	TargetReached        bool    `json:"target_reached" jsonschema:"whether the target element was crafted (targeted mode)"`
	StartTime            string  `json:"start_time" jsonschema:"RFC3339 timestamp when the session started"`
	EndTime              string  `json:"end_time,omitempty" jsonschema:"RFC3339 timestamp when the session ended, if applicable"`
}

// EndGameInput represents the MCP tool input for ending a session.
type EndGameInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// EndGameTool defines the MCP tool schema for ending a session.
func EndGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "end_game",
		Description: "Ends a session and returns its final summary. The session is frozen; no further attempts are accepted.",
	}
}

// EndGameHandler executes an end game request.
func EndGameHandler(game *service.GameService) mcp.ToolHandlerFor[EndGameInput, SummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EndGameInput) (*mcp.CallToolResult, SummaryResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		summary, err := game.EndSession(runCtx, input.SessionID)
		if err != nil {
			return nil, SummaryResult{}, toolError(err)
		}
		return nil, summaryResult(summary), nil
	}
}
