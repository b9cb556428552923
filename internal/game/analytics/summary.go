// Package analytics aggregates attempt records into session summaries.
//
// Summarize is a pure fold over the (typically short) record list: it may
// be called at any time, repeatedly, and always produces the same summary
// for the same inputs. Incremental per-attempt state lives in the game
// domain instead.
package analytics

import (
	"time"

	"github.com/louisbranch/synthesis.garden/internal/game/domain"
)

// DefaultPlateauWindow is the number of consecutive no-discovery attempts
// that counts as one plateau.
const DefaultPlateauWindow = 5

// SessionSummary is derived from a session and its records. It is
// recomputable on demand and never independently mutated.
type SessionSummary struct {
	SessionID            string
	Mode                 domain.Mode
	TotalAttempts        int
	SuccessfulAttempts   int
	ElementsDiscovered   int
	FinalInventorySize   int
	DiscoveryRate        float64
	LongestSuccessStreak int
	LongestFailureStreak int
	PlateauCount         int
	TargetReached        bool
	StartTime            time.Time
	EndTime              *time.Time // nil while the session is active
}

// Summarize computes a summary over a session snapshot and its attempt
// records. A window of zero or less selects DefaultPlateauWindow.
//
// A plateau is counted each time `window` consecutive attempts pass with
// no discovery since the last discovery, the last counted plateau, or the
// session start, whichever is most recent.
func Summarize(session domain.Session, records []domain.AttemptRecord, window int) SessionSummary {
	if window <= 0 {
		window = DefaultPlateauWindow
	}

	summary := SessionSummary{
		SessionID:          session.ID,
		Mode:               session.Mode,
		TotalAttempts:      len(records),
		FinalInventorySize: len(session.Inventory),
		ElementsDiscovered: len(session.Inventory) - session.InitialSize,
		TargetReached:      session.TargetReached,
		StartTime:          session.StartedAt,
	}
	if session.EndedAt != nil {
		endedAt := *session.EndedAt
		summary.EndTime = &endedAt
	}

	barren := 0 // attempts since the last discovery or counted plateau
	for _, record := range records {
		if record.Success {
			summary.SuccessfulAttempts++
		}

		switch record.StreakType {
		case domain.StreakSuccess:
			if record.StreakLength > summary.LongestSuccessStreak {
				summary.LongestSuccessStreak = record.StreakLength
			}
		case domain.StreakFailure:
			if record.StreakLength > summary.LongestFailureStreak {
				summary.LongestFailureStreak = record.StreakLength
			}
		}

		if len(record.Created) > 0 {
			barren = 0
			continue
		}
		barren++
		if barren == window {
			summary.PlateauCount++
			barren = 0
		}
	}

	if summary.TotalAttempts > 0 {
		summary.DiscoveryRate = float64(summary.SuccessfulAttempts) / float64(summary.TotalAttempts)
	}

	return summary
}
