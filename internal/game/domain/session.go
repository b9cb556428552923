package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/louisbranch/synthesis.garden/internal/platform/id"
)

// Mode selects the session objective.
type Mode int

const (
	// ModeUnspecified represents an invalid mode value.
	ModeUnspecified Mode = iota
	// ModeOpenEnded plays for as many discoveries as the round budget allows.
	ModeOpenEnded
	// ModeTargeted plays toward one specific target element.
	ModeTargeted
)

// String renders the mode for logs and exports.
func (m Mode) String() string {
	switch m {
	case ModeOpenEnded:
		return "open-ended"
	case ModeTargeted:
		return "targeted"
	default:
		return "unspecified"
	}
}

// ParseMode converts a mode name into a Mode. An empty name defaults to
// open-ended, matching the original tool contract.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "open-ended", "open_ended", "open":
		return ModeOpenEnded, nil
	case "targeted":
		return ModeTargeted, nil
	default:
		return ModeUnspecified, fmt.Errorf("mode %q: %w", name, ErrInvalidMode)
	}
}

// Status describes the lifecycle state of a session.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusActive indicates the session accepts attempts.
	StatusActive
	// StatusEnded indicates the session has been frozen.
	StatusEnded
)

// String renders the status for logs and exports.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unspecified"
	}
}

// BaseElements is the default starting inventory.
var BaseElements = []recipe.Element{"air", "earth", "fire", "water"}

var (
	// ErrInvalidMode indicates an unsupported session mode.
	ErrInvalidMode = errors.New("mode must be open-ended or targeted")
	// ErrInvalidMaxRounds indicates a non-positive round budget.
	ErrInvalidMaxRounds = errors.New("max rounds must be positive")
	// ErrMissingTarget indicates a targeted session without a target.
	ErrMissingTarget = errors.New("target is required in targeted mode")
	// ErrSessionEnded indicates an operation on a frozen session.
	ErrSessionEnded = errors.New("session has already ended")
	// ErrRoundsExhausted indicates the round budget is spent.
	ErrRoundsExhausted = errors.New("no rounds remaining")
)

// ItemNotInInventoryError reports an attempt ingredient missing from the
// session inventory, naming the offending item.
type ItemNotInInventoryError struct {
	Item recipe.Element
}

// Error implements the error interface.
func (e *ItemNotInInventoryError) Error() string {
	return fmt.Sprintf("item %q is not in the inventory", e.Item)
}

// Session is one player's independent game instance.
//
// Invariants: RoundsUsed never exceeds MaxRounds, Inventory only grows
// and never reorders existing entries, and Status transitions
// active to ended exactly once.
type Session struct {
	ID            string
	Mode          Mode
	Target        recipe.Element // targeted mode only
	MaxRounds     int
	RoundsUsed    int
	Inventory     []recipe.Element // insertion order is discovery order
	InitialSize   int              // inventory size at creation
	TriedPairs    map[recipe.Pair]struct{}
	Status        Status
	TargetReached bool
	StartedAt     time.Time
	UpdatedAt     time.Time
	EndedAt       *time.Time // nil while the session is active
	Log           Log
}

// CreateSessionInput describes the parameters needed to create a session.
type CreateSessionInput struct {
	ID        string // optional; generated when empty
	Mode      Mode
	MaxRounds int
	Target    recipe.Element // targeted mode only
	// StartingInventory overrides the default base elements. Targeted
	// callers use it to seed distractors alongside the base elements.
	StartingInventory []recipe.Element
}

// NormalizeCreateSessionInput trims and validates session parameters
// against the recipe book vocabulary.
func NormalizeCreateSessionInput(input CreateSessionInput, book *recipe.Book) (CreateSessionInput, error) {
	input.ID = strings.TrimSpace(input.ID)

	switch input.Mode {
	case ModeOpenEnded, ModeTargeted:
	default:
		return CreateSessionInput{}, ErrInvalidMode
	}
	if input.MaxRounds <= 0 {
		return CreateSessionInput{}, ErrInvalidMaxRounds
	}

	if input.Mode == ModeTargeted {
		input.Target = recipe.Normalize(string(input.Target))
		if input.Target == "" {
			return CreateSessionInput{}, ErrMissingTarget
		}
		if !book.Contains(input.Target) {
			return CreateSessionInput{}, &recipe.UnknownElementError{Element: input.Target}
		}
	} else {
		input.Target = ""
	}

	starting := input.StartingInventory
	if len(starting) == 0 {
		starting = BaseElements
	}
	seen := make(map[recipe.Element]struct{}, len(starting))
	normalized := make([]recipe.Element, 0, len(starting))
	for _, element := range starting {
		element = recipe.Normalize(string(element))
		if element == "" {
			continue
		}
		if !book.Contains(element) {
			return CreateSessionInput{}, &recipe.UnknownElementError{Element: element}
		}
		if _, dup := seen[element]; dup {
			continue
		}
		seen[element] = struct{}{}
		normalized = append(normalized, element)
	}
	input.StartingInventory = normalized

	return input, nil
}

// CreateSession creates an active session seeded with its starting
// inventory. The ID is generated when the input leaves it empty.
func CreateSession(input CreateSessionInput, book *recipe.Book, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateSessionInput(input, book)
	if err != nil {
		return Session{}, err
	}

	sessionID := normalized.ID
	if sessionID == "" {
		sessionID, err = idGenerator()
		if err != nil {
			return Session{}, fmt.Errorf("generate session id: %w", err)
		}
	}

	inventory := make([]recipe.Element, len(normalized.StartingInventory))
	copy(inventory, normalized.StartingInventory)

	createdAt := now().UTC()
	session := Session{
		ID:          sessionID,
		Mode:        normalized.Mode,
		Target:      normalized.Target,
		MaxRounds:   normalized.MaxRounds,
		Inventory:   inventory,
		InitialSize: len(inventory),
		TriedPairs:  make(map[recipe.Pair]struct{}),
		Status:      StatusActive,
		StartedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if session.Mode == ModeTargeted && session.hasItem(session.Target) {
		session.TargetReached = true
	}
	return session, nil
}

// End freezes the session. Ending an ended session fails with
// ErrSessionEnded; the transition happens exactly once.
func (s *Session) End(now time.Time) error {
	if s.Status != StatusActive {
		return ErrSessionEnded
	}
	endedAt := now.UTC()
	s.Status = StatusEnded
	s.EndedAt = &endedAt
	s.UpdatedAt = endedAt
	return nil
}

// RoundsLeft returns the remaining round budget.
func (s *Session) RoundsLeft() int {
	return s.MaxRounds - s.RoundsUsed
}

// hasItem reports inventory membership.
func (s *Session) hasItem(element recipe.Element) bool {
	for _, item := range s.Inventory {
		if item == element {
			return true
		}
	}
	return false
}

// Clone deep-copies the session so stores can hand out snapshots.
func (s Session) Clone() Session {
	clone := s
	clone.Inventory = make([]recipe.Element, len(s.Inventory))
	copy(clone.Inventory, s.Inventory)
	clone.TriedPairs = make(map[recipe.Pair]struct{}, len(s.TriedPairs))
	for pair := range s.TriedPairs {
		clone.TriedPairs[pair] = struct{}{}
	}
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		clone.EndedAt = &endedAt
	}
	clone.Log = s.Log.clone()
	return clone
}
