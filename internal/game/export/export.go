// Package export renders attempt logs and session summaries in three
// forms: structured JSON, flat CSV, and a short human-readable digest.
// All renderers are pure; they never mutate the records or summary.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/louisbranch/synthesis.garden/internal/game/analytics"
	"github.com/louisbranch/synthesis.garden/internal/game/domain"
)

// digestTail is how many trailing records the digest shows.
const digestTail = 5

// attemptJSON is the structured wire form of one attempt record.
type attemptJSON struct {
	SessionID            string           `json:"session_id"`
	AttemptNumber        int              `json:"attempt_number"`
	E1                   recipe.Element   `json:"e1"`
	E2                   recipe.Element   `json:"e2"`
	Success              bool             `json:"success"`
	Created              []recipe.Element `json:"created"`
	AlreadyKnown         []recipe.Element `json:"already_known"`
	InventorySizeBefore  int              `json:"inventory_size_before"`
	Reasoning            string           `json:"reasoning,omitempty"`
	IsNovel              bool             `json:"is_novel"`
	StreakType           string           `json:"streak_type"`
	StreakLength         int              `json:"streak_length"`
	TimeSinceLastSuccess *string          `json:"time_since_last_success"`
	Timestamp            time.Time        `json:"timestamp"`
}

// summaryJSON is the structured wire form of a session summary.
type summaryJSON struct {
	SessionID          string     `json:"session_id"`
	Mode               string     `json:"mode"`
	TotalAttempts      int        `json:"total_attempts"`
	SuccessfulAttempts int        `json:"successful_attempts"`
	ElementsDiscovered int        `json:"elements_discovered"`
	FinalInventorySize int        `json:"final_inventory_size"`
	DiscoveryRate      float64    `json:"discovery_rate"`
	LongestSuccess     int        `json:"longest_success_streak"`
	LongestFailure     int        `json:"longest_failure_streak"`
	PlateauCount       int        `json:"plateau_count"`
	TargetReached      bool       `json:"target_reached"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time"`
}

type reportJSON struct {
	Summary  summaryJSON   `json:"summary"`
	Attempts []attemptJSON `json:"attempts"`
}

func toAttemptJSON(record domain.AttemptRecord) attemptJSON {
	out := attemptJSON{
		SessionID:           record.SessionID,
		AttemptNumber:       record.Number,
		E1:                  record.First,
		E2:                  record.Second,
		Success:             record.Success,
		Created:             record.Created,
		AlreadyKnown:        record.AlreadyKnown,
		InventorySizeBefore: record.InventorySizeBefore,
		Reasoning:           record.Reasoning,
		IsNovel:             record.Novel,
		StreakType:          string(record.StreakType),
		StreakLength:        record.StreakLength,
		Timestamp:           record.Timestamp,
	}
	if out.Created == nil {
		out.Created = []recipe.Element{}
	}
	if out.AlreadyKnown == nil {
		out.AlreadyKnown = []recipe.Element{}
	}
	if record.TimeSinceLastSuccess != nil {
		formatted := record.TimeSinceLastSuccess.String()
		out.TimeSinceLastSuccess = &formatted
	}
	return out
}

func toSummaryJSON(summary analytics.SessionSummary) summaryJSON {
	return summaryJSON{
		SessionID:          summary.SessionID,
		Mode:               summary.Mode.String(),
		TotalAttempts:      summary.TotalAttempts,
		SuccessfulAttempts: summary.SuccessfulAttempts,
		ElementsDiscovered: summary.ElementsDiscovered,
		FinalInventorySize: summary.FinalInventorySize,
		DiscoveryRate:      summary.DiscoveryRate,
		LongestSuccess:     summary.LongestSuccessStreak,
		LongestFailure:     summary.LongestFailureStreak,
		PlateauCount:       summary.PlateauCount,
		TargetReached:      summary.TargetReached,
		StartTime:          summary.StartTime,
		EndTime:            summary.EndTime,
	}
}

// JSON writes the summary and records as one indented JSON document.
func JSON(w io.Writer, summary analytics.SessionSummary, records []domain.AttemptRecord) error {
	report := reportJSON{
		Summary:  toSummaryJSON(summary),
		Attempts: make([]attemptJSON, 0, len(records)),
	}
	for _, record := range records {
		report.Attempts = append(report.Attempts, toAttemptJSON(record))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// csvHeader is the fixed column order for the tabular form. Element
// lists are joined with "|" inside a single column.
var csvHeader = []string{
	"session_id", "attempt_number", "e1", "e2", "success",
	"created", "already_known", "inventory_size_before", "reasoning",
	"is_novel", "streak_type", "streak_length",
	"time_since_last_success", "timestamp",
}

// CSV writes one row per attempt record with a fixed column order.
func CSV(w io.Writer, records []domain.AttemptRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, record := range records {
		sinceSuccess := ""
		if record.TimeSinceLastSuccess != nil {
			sinceSuccess = record.TimeSinceLastSuccess.String()
		}
		row := []string{
			record.SessionID,
			strconv.Itoa(record.Number),
			string(record.First),
			string(record.Second),
			strconv.FormatBool(record.Success),
			joinElements(record.Created),
			joinElements(record.AlreadyKnown),
			strconv.Itoa(record.InventorySizeBefore),
			record.Reasoning,
			strconv.FormatBool(record.Novel),
			string(record.StreakType),
			strconv.Itoa(record.StreakLength),
			sinceSuccess,
			record.Timestamp.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", record.Number, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Digest writes a short human-readable report: aggregate counts plus
// the trailing records.
func Digest(w io.Writer, summary analytics.SessionSummary, records []domain.AttemptRecord) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s (%s)\n", summary.SessionID, summary.Mode)
	fmt.Fprintf(&b, "  attempts: %d (%d successful, rate %.2f)\n",
		summary.TotalAttempts, summary.SuccessfulAttempts, summary.DiscoveryRate)
	fmt.Fprintf(&b, "  discovered: %d elements (inventory %d)\n",
		summary.ElementsDiscovered, summary.FinalInventorySize)
	fmt.Fprintf(&b, "  streaks: %d success / %d failure, plateaus: %d\n",
		summary.LongestSuccessStreak, summary.LongestFailureStreak, summary.PlateauCount)
	if summary.Mode == domain.ModeTargeted {
		if summary.TargetReached {
			fmt.Fprintf(&b, "  target reached within %d attempts\n", summary.TotalAttempts)
		} else {
			b.WriteString("  target not reached\n")
		}
	}
	if summary.EndTime != nil {
		fmt.Fprintf(&b, "  ended after %s\n", summary.EndTime.Sub(summary.StartTime))
	}

	tail := records
	if len(tail) > digestTail {
		tail = tail[len(tail)-digestTail:]
	}
	if len(tail) > 0 {
		b.WriteString("  recent attempts:\n")
	}
	for _, record := range tail {
		outcome := "miss"
		if len(record.Created) > 0 {
			outcome = "-> " + joinElements(record.Created)
		} else if record.Success {
			outcome = "known: " + joinElements(record.AlreadyKnown)
		}
		fmt.Fprintf(&b, "    #%d %s + %s %s\n", record.Number, record.First, record.Second, outcome)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}

func joinElements(elements []recipe.Element) string {
	parts := make([]string, len(elements))
	for i, element := range elements {
		parts[i] = string(element)
	}
	return strings.Join(parts, "|")
}
