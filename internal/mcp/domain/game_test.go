package domain

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/louisbranch/synthesis.garden/internal/game/service"
	"github.com/louisbranch/synthesis.garden/internal/storage/memory"
)

func newTestGame(t *testing.T) *service.GameService {
	t.Helper()
	book, err := recipe.New(map[recipe.Pair][]recipe.Element{
		recipe.NewPair("air", "fire"):      {"energy"},
		recipe.NewPair("water", "fire"):    {"steam"},
		recipe.NewPair("earth", "fire"):    {"lava"},
		recipe.NewPair("air", "air"):       {"pressure"},
		recipe.NewPair("pressure", "lava"): {"granite", "eruption"},
	})
	if err != nil {
		t.Fatalf("new book: %v", err)
	}
	return service.New(book, memory.New(), service.Options{})
}

func startTestGame(t *testing.T, game *service.GameService, input StartGameInput) StartGameResult {
	t.Helper()
	_, result, err := StartGameHandler(game)(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return result
}

func TestStartGameHandler(t *testing.T) {
	game := newTestGame(t)

	result := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	if result.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if result.Mode != "open-ended" || result.Status != "active" {
		t.Fatalf("expected active open-ended session, got %+v", result)
	}
	if len(result.Inventory) != 4 {
		t.Fatalf("expected base inventory, got %v", result.Inventory)
	}
	if result.RoundsMax != 10 || result.RoundsUsed != 0 {
		t.Fatalf("expected fresh round counters, got %+v", result)
	}
	if result.StartedAt == "" {
		t.Fatal("expected started_at timestamp")
	}
}

func TestStartGameHandlerInvalidMode(t *testing.T) {
	game := newTestGame(t)

	_, _, err := StartGameHandler(game)(context.Background(), nil, StartGameInput{
		Mode: "versus", MaxRounds: 10,
	})
	if err == nil || !strings.Contains(err.Error(), "versus") {
		t.Fatalf("expected mode error naming the input, got %v", err)
	}
}

func TestStartGameHandlerTargeted(t *testing.T) {
	game := newTestGame(t)

	result := startTestGame(t, game, StartGameInput{
		Mode: "targeted", MaxRounds: 5, Target: "Steam",
	})
	if result.Mode != "targeted" || result.Target != "steam" {
		t.Fatalf("expected normalized targeted session, got %+v", result)
	}
}

func TestCombineHandler(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	_, result, err := CombineHandler(game)(context.Background(), nil, CombineInput{
		SessionID: started.SessionID,
		Item1:     "Air", Item2: "FIRE",
		Reasoning: "base pair",
	})
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if !result.Success || result.AttemptNumber != 1 {
		t.Fatalf("expected successful first attempt, got %+v", result)
	}
	if len(result.Created) != 1 || result.Created[0] != "energy" {
		t.Fatalf("expected created [energy], got %v", result.Created)
	}
	if !result.FinalFlags["energy"] {
		t.Fatal("expected energy flagged final")
	}
	if result.RoundsUsed != 1 || result.RoundsMax != 10 {
		t.Fatalf("expected rounds 1/10, got %+v", result)
	}
}

func TestCombineHandlerItemNotInInventory(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	_, _, err := CombineHandler(game)(context.Background(), nil, CombineInput{
		SessionID: started.SessionID,
		Item1:     "air", Item2: "steam",
	})
	if err == nil || !strings.Contains(err.Error(), "'steam' is not in your inventory") {
		t.Fatalf("expected user-facing inventory message, got %v", err)
	}
}

func TestGameStateHandlerUnknownSession(t *testing.T) {
	game := newTestGame(t)

	_, _, err := GameStateHandler(game)(context.Background(), nil, GameStateInput{SessionID: "missing"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found message, got %v", err)
	}
}

func TestGameStateHandler(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	if _, _, err := CombineHandler(game)(context.Background(), nil, CombineInput{
		SessionID: started.SessionID, Item1: "water", Item2: "fire",
	}); err != nil {
		t.Fatalf("combine: %v", err)
	}

	_, state, err := GameStateHandler(game)(context.Background(), nil, GameStateInput{
		SessionID: started.SessionID,
	})
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.RoundsUsed != 1 || len(state.Inventory) != 5 {
		t.Fatalf("expected updated state, got %+v", state)
	}
	if state.Inventory[4] != "steam" {
		t.Fatalf("expected steam appended last, got %v", state.Inventory)
	}
	if state.EndedAt != "" {
		t.Fatal("expected no ended_at on active session")
	}
}

func TestEndGameHandler(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	combine := CombineHandler(game)
	moves := [][2]string{{"air", "fire"}, {"air", "water"}}
	for _, move := range moves {
		if _, _, err := combine(context.Background(), nil, CombineInput{
			SessionID: started.SessionID, Item1: move[0], Item2: move[1],
		}); err != nil {
			t.Fatalf("combine %v: %v", move, err)
		}
	}

	_, summary, err := EndGameHandler(game)(context.Background(), nil, EndGameInput{
		SessionID: started.SessionID,
	})
	if err != nil {
		t.Fatalf("end game: %v", err)
	}
	if summary.TotalAttempts != 2 || summary.SuccessfulAttempts != 1 {
		t.Fatalf("expected 2 attempts with 1 success, got %+v", summary)
	}
	if summary.EndTime == "" {
		t.Fatal("expected end_time on ended session")
	}

	_, _, err = EndGameHandler(game)(context.Background(), nil, EndGameInput{
		SessionID: started.SessionID,
	})
	if err == nil || !strings.Contains(err.Error(), "ended") {
		t.Fatalf("expected ended message on second end, got %v", err)
	}
}

func TestSessionLogHandlerLeavesSessionActive(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	_, result, err := SessionLogHandler(game)(context.Background(), nil, SessionLogInput{
		SessionID: started.SessionID,
	})
	if err != nil {
		t.Fatalf("session log: %v", err)
	}
	if len(result.Summaries) != 1 {
		t.Fatalf("expected one summary, got %v", result.Summaries)
	}
	if result.Summaries[0].TotalAttempts != 0 || result.Summaries[0].EndTime != "" {
		t.Fatalf("expected empty active summary, got %+v", result.Summaries[0])
	}

	_, state, err := GameStateHandler(game)(context.Background(), nil, GameStateInput{
		SessionID: started.SessionID,
	})
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Status != "active" {
		t.Fatalf("expected session still active, got %+v", state)
	}
}

func TestSessionLogHandlerAllSessions(t *testing.T) {
	game := newTestGame(t)
	startTestGame(t, game, StartGameInput{SessionID: "one", MaxRounds: 5})
	startTestGame(t, game, StartGameInput{SessionID: "two", MaxRounds: 5})

	if _, _, err := CombineHandler(game)(context.Background(), nil, CombineInput{
		SessionID: "two", Item1: "air", Item2: "fire",
	}); err != nil {
		t.Fatalf("combine: %v", err)
	}

	_, result, err := SessionLogHandler(game)(context.Background(), nil, SessionLogInput{
		SessionID: "all",
	})
	if err != nil {
		t.Fatalf("session log all: %v", err)
	}
	if len(result.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %v", result.Summaries)
	}
	if result.Summaries[0].SessionID != "one" || result.Summaries[1].SessionID != "two" {
		t.Fatalf("expected creation order, got %+v", result.Summaries)
	}
	if result.Summaries[1].TotalAttempts != 1 {
		t.Fatalf("expected one attempt on second session, got %+v", result.Summaries[1])
	}

	_, rendered, err := SessionLogHandler(game)(context.Background(), nil, SessionLogInput{
		SessionID: "all", Format: "digest",
	})
	if err != nil {
		t.Fatalf("session log digest: %v", err)
	}
	if !strings.Contains(rendered.Rendered, "Session one") || !strings.Contains(rendered.Rendered, "Session two") {
		t.Fatalf("expected digest for both sessions, got %q", rendered.Rendered)
	}
}

func TestListSessionsHandler(t *testing.T) {
	game := newTestGame(t)
	first := startTestGame(t, game, StartGameInput{SessionID: "one", MaxRounds: 5})
	startTestGame(t, game, StartGameInput{SessionID: "two", MaxRounds: 8})

	if _, _, err := EndGameHandler(game)(context.Background(), nil, EndGameInput{
		SessionID: first.SessionID,
	}); err != nil {
		t.Fatalf("end game: %v", err)
	}

	_, result, err := ListSessionsHandler(game)(context.Background(), nil, ListSessionsInput{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(result.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %v", result.Sessions)
	}
	if result.Sessions[0].SessionID != "one" || result.Sessions[0].Status != "ended" {
		t.Fatalf("unexpected first entry: %+v", result.Sessions[0])
	}
	if result.Sessions[1].SessionID != "two" || result.Sessions[1].Status != "active" {
		t.Fatalf("unexpected second entry: %+v", result.Sessions[1])
	}
}

func TestAttemptLogHandlerFormats(t *testing.T) {
	game := newTestGame(t)
	started := startTestGame(t, game, StartGameInput{MaxRounds: 10})

	if _, _, err := CombineHandler(game)(context.Background(), nil, CombineInput{
		SessionID: started.SessionID, Item1: "air", Item2: "fire",
	}); err != nil {
		t.Fatalf("combine: %v", err)
	}

	handler := AttemptLogHandler(game)

	_, jsonResult, err := handler(context.Background(), nil, AttemptLogInput{
		SessionID: started.SessionID,
	})
	if err != nil {
		t.Fatalf("attempt log json: %v", err)
	}
	if jsonResult.Format != "json" {
		t.Fatalf("expected default json format, got %q", jsonResult.Format)
	}
	var decoded struct {
		Attempts []map[string]any `json:"attempts"`
	}
	if err := json.Unmarshal([]byte(jsonResult.Rendered), &decoded); err != nil {
		t.Fatalf("unmarshal rendered log: %v", err)
	}
	if len(decoded.Attempts) != 1 {
		t.Fatalf("expected 1 attempt in rendered log, got %d", len(decoded.Attempts))
	}

	_, csvResult, err := handler(context.Background(), nil, AttemptLogInput{
		SessionID: started.SessionID, Format: "csv",
	})
	if err != nil {
		t.Fatalf("attempt log csv: %v", err)
	}
	if !strings.HasPrefix(csvResult.Rendered, "session_id,attempt_number") {
		t.Fatalf("expected csv header, got %q", csvResult.Rendered)
	}

	_, digestResult, err := handler(context.Background(), nil, AttemptLogInput{
		SessionID: started.SessionID, Format: "digest",
	})
	if err != nil {
		t.Fatalf("attempt log digest: %v", err)
	}
	if !strings.Contains(digestResult.Rendered, "#1 air + fire -> energy") {
		t.Fatalf("expected digest line, got %q", digestResult.Rendered)
	}

	if _, _, err := handler(context.Background(), nil, AttemptLogInput{
		SessionID: started.SessionID, Format: "xml",
	}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
