package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
)

func testBook(t *testing.T) *recipe.Book {
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
	return book
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, input CreateSessionInput) Session {
	t.Helper()
	session, err := CreateSession(input, testBook(t), fixedClock(testStart), nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestCreateSessionDefaults(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{Mode: ModeOpenEnded, MaxRounds: 10})

	if session.ID == "" {
		t.Fatal("expected generated session id")
	}
	if session.Status != StatusActive {
		t.Fatalf("expected active status, got %v", session.Status)
	}
	if len(session.Inventory) != 4 {
		t.Fatalf("expected base inventory of 4, got %v", session.Inventory)
	}
	if session.InitialSize != 4 {
		t.Fatalf("expected initial size 4, got %d", session.InitialSize)
	}
	if session.RoundsLeft() != 10 {
		t.Fatalf("expected 10 rounds left, got %d", session.RoundsLeft())
	}
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateSessionInput
		wantErr error
	}{
		{
			name:    "invalid mode",
			input:   CreateSessionInput{MaxRounds: 10},
			wantErr: ErrInvalidMode,
		},
		{
			name:    "zero rounds",
			input:   CreateSessionInput{Mode: ModeOpenEnded},
			wantErr: ErrInvalidMaxRounds,
		},
		{
			name:    "negative rounds",
			input:   CreateSessionInput{Mode: ModeOpenEnded, MaxRounds: -1},
			wantErr: ErrInvalidMaxRounds,
		},
		{
			name:    "targeted without target",
			input:   CreateSessionInput{Mode: ModeTargeted, MaxRounds: 10},
			wantErr: ErrMissingTarget,
		},
		{
			name:    "targeted with unknown target",
			input:   CreateSessionInput{Mode: ModeTargeted, MaxRounds: 10, Target: "phlogiston"},
			wantErr: recipe.ErrUnknownElement,
		},
		{
			name: "unknown starting element",
			input: CreateSessionInput{
				Mode: ModeOpenEnded, MaxRounds: 10,
				StartingInventory: []recipe.Element{"air", "phlogiston"},
			},
			wantErr: recipe.ErrUnknownElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateSession(tt.input, testBook(t), fixedClock(testStart), nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSessionNormalizesStartingInventory(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{
		Mode:      ModeOpenEnded,
		MaxRounds: 5,
		StartingInventory: []recipe.Element{
			"Air", "FIRE", "air", " water ",
		},
	})

	want := []recipe.Element{"air", "fire", "water"}
	if len(session.Inventory) != len(want) {
		t.Fatalf("expected inventory %v, got %v", want, session.Inventory)
	}
	for i := range want {
		if session.Inventory[i] != want[i] {
			t.Fatalf("expected inventory %v, got %v", want, session.Inventory)
		}
	}
}

func TestCreateSessionTargetedDistractors(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{
		Mode:      ModeTargeted,
		MaxRounds: 5,
		Target:    "Steam",
		StartingInventory: []recipe.Element{
			"air", "earth", "fire", "water", "lava", "pressure",
		},
	})

	if session.Target != "steam" {
		t.Fatalf("expected normalized target steam, got %q", session.Target)
	}
	if len(session.Inventory) != 6 {
		t.Fatalf("expected 6 starting elements, got %v", session.Inventory)
	}
	if session.TargetReached {
		t.Fatal("expected target not reached at start")
	}
}

func TestCreateSessionKeepsCallerID(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{
		ID: "  player-one  ", Mode: ModeOpenEnded, MaxRounds: 3,
	})
	if session.ID != "player-one" {
		t.Fatalf("expected trimmed caller id, got %q", session.ID)
	}
}

func TestEndTransitionsOnce(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{Mode: ModeOpenEnded, MaxRounds: 3})

	endedAt := testStart.Add(time.Minute)
	if err := session.End(endedAt); err != nil {
		t.Fatalf("end: %v", err)
	}
	if session.Status != StatusEnded {
		t.Fatalf("expected ended status, got %v", session.Status)
	}
	if session.EndedAt == nil || !session.EndedAt.Equal(endedAt) {
		t.Fatalf("expected ended at %v, got %v", endedAt, session.EndedAt)
	}

	if err := session.End(endedAt.Add(time.Minute)); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded on second end, got %v", err)
	}
	if !session.EndedAt.Equal(endedAt) {
		t.Fatal("expected EndedAt to be unchanged by failed end")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeOpenEnded, false},
		{"open-ended", ModeOpenEnded, false},
		{"Targeted", ModeTargeted, false},
		{"versus", ModeUnspecified, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Fatalf("ParseMode(%q): expected ErrInvalidMode, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCloneIsolation(t *testing.T) {
	session := newTestSession(t, CreateSessionInput{Mode: ModeOpenEnded, MaxRounds: 5})
	clone := session.Clone()

	clone.Inventory = append(clone.Inventory, "steam")
	clone.TriedPairs[recipe.NewPair("air", "fire")] = struct{}{}

	if len(session.Inventory) != 4 {
		t.Fatalf("clone mutation leaked into inventory: %v", session.Inventory)
	}
	if len(session.TriedPairs) != 0 {
		t.Fatal("clone mutation leaked into tried pairs")
	}
}
