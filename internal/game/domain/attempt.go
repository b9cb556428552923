package domain

import (
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
)

// StreakType labels a run of consecutive attempts with the same outcome.
type StreakType string

const (
	// StreakSuccess labels a run of successful attempts.
	StreakSuccess StreakType = "success"
	// StreakFailure labels a run of failed attempts.
	StreakFailure StreakType = "failure"
)

// AttemptRecord captures one combination attempt. Records are immutable
// once appended.
type AttemptRecord struct {
	SessionID string
	Number    int // 1-based, monotonic per session
	First     recipe.Element
	Second    recipe.Element
	Success   bool
	// Created holds newly discovered elements in lexicographic order;
	// empty on failure or when every result was already known.
	Created []recipe.Element
	// AlreadyKnown holds hit results that were already in the inventory.
	AlreadyKnown         []recipe.Element
	InventorySizeBefore  int
	Reasoning            string // opaque caller-supplied text
	Novel                bool   // first time this unordered pair was attempted
	StreakType           StreakType
	StreakLength         int
	TimeSinceLastSuccess *time.Duration // nil until a prior success exists
	Timestamp            time.Time
}

// Log carries the rolling per-session state that lets every derived
// attempt field be computed in O(1), without rescanning history.
type Log struct {
	LastNumber    int
	HasOutcome    bool
	LastSuccess   bool
	CurrentStreak int
	LastSuccessAt *time.Time
}

// next advances the rolling state for an attempt with the given outcome
// and returns the derived streak and time-since-success fields.
func (l *Log) next(success bool, timestamp time.Time) (number int, streakType StreakType, streakLength int, sinceSuccess *time.Duration) {
	l.LastNumber++
	number = l.LastNumber

	if l.HasOutcome && l.LastSuccess == success {
		l.CurrentStreak++
	} else {
		l.CurrentStreak = 1
	}
	l.HasOutcome = true
	l.LastSuccess = success
	streakLength = l.CurrentStreak

	streakType = StreakFailure
	if success {
		streakType = StreakSuccess
	}

	if l.LastSuccessAt != nil {
		elapsed := timestamp.Sub(*l.LastSuccessAt)
		sinceSuccess = &elapsed
	}
	if success {
		at := timestamp
		l.LastSuccessAt = &at
	}

	return number, streakType, streakLength, sinceSuccess
}

// clone deep-copies the rolling state.
func (l Log) clone() Log {
	copied := l
	if l.LastSuccessAt != nil {
		at := *l.LastSuccessAt
		copied.LastSuccessAt = &at
	}
	return copied
}

// Attempt combines two inventory items against the recipe book.
//
// Precondition checks run in order (active session, round budget, both
// items in inventory) and report failures without mutating any state or
// consuming a round. A recipe miss is not an error: the round is
// consumed and a failed attempt record is returned.
func (s *Session) Attempt(book *recipe.Book, first, second recipe.Element, reasoning string, now time.Time) (AttemptRecord, error) {
	if s.Status != StatusActive {
		return AttemptRecord{}, ErrSessionEnded
	}
	if s.RoundsUsed >= s.MaxRounds {
		return AttemptRecord{}, ErrRoundsExhausted
	}
	if !s.hasItem(first) {
		return AttemptRecord{}, &ItemNotInInventoryError{Item: first}
	}
	if !s.hasItem(second) {
		return AttemptRecord{}, &ItemNotInInventoryError{Item: second}
	}

	result, err := book.Lookup(first, second)
	if err != nil {
		return AttemptRecord{}, err
	}

	// Validation passed: the attempt consumes a round regardless of outcome.
	timestamp := now.UTC()
	s.RoundsUsed++

	inventorySizeBefore := len(s.Inventory)
	success := result.Hit()

	var created, alreadyKnown []recipe.Element
	for _, element := range result.Elements {
		if s.hasItem(element) {
			alreadyKnown = append(alreadyKnown, element)
			continue
		}
		created = append(created, element)
	}
	// Book results arrive sorted, so multi-result discoveries land in the
	// inventory in a deterministic order.
	s.Inventory = append(s.Inventory, created...)

	pair := recipe.NewPair(first, second)
	_, tried := s.TriedPairs[pair]
	s.TriedPairs[pair] = struct{}{}

	number, streakType, streakLength, sinceSuccess := s.Log.next(success, timestamp)

	if s.Mode == ModeTargeted && !s.TargetReached && s.hasItem(s.Target) {
		s.TargetReached = true
	}
	s.UpdatedAt = timestamp

	return AttemptRecord{
		SessionID:            s.ID,
		Number:               number,
		First:                first,
		Second:               second,
		Success:              success,
		Created:              created,
		AlreadyKnown:         alreadyKnown,
		InventorySizeBefore:  inventorySizeBefore,
		Reasoning:            reasoning,
		Novel:                !tried,
		StreakType:           streakType,
		StreakLength:         streakLength,
		TimeSinceLastSuccess: sinceSuccess,
		Timestamp:            timestamp,
	}, nil
}
