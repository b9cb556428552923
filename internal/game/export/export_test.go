package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/louisbranch/synthesis.garden/internal/game/analytics"
	"github.com/louisbranch/synthesis.garden/internal/game/domain"
)

var exportStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func sampleRecords() []domain.AttemptRecord {
	sinceSuccess := 10 * time.Second
	return []domain.AttemptRecord{
		{
			SessionID: "abc", Number: 1,
			First: "air", Second: "fire",
			Success: true, Created: []recipe.Element{"energy"},
			InventorySizeBefore: 4, Reasoning: "base pair",
			Novel: true, StreakType: domain.StreakSuccess, StreakLength: 1,
			Timestamp: exportStart,
		},
		{
			SessionID: "abc", Number: 2,
			First: "air", Second: "water",
			Success:             false,
			InventorySizeBefore: 5,
			Novel:               true, StreakType: domain.StreakFailure, StreakLength: 1,
			TimeSinceLastSuccess: &sinceSuccess,
			Timestamp:            exportStart.Add(10 * time.Second),
		},
	}
}

func sampleSummary() analytics.SessionSummary {
	return analytics.SessionSummary{
		SessionID:            "abc",
		Mode:                 domain.ModeOpenEnded,
		TotalAttempts:        2,
		SuccessfulAttempts:   1,
		ElementsDiscovered:   1,
		FinalInventorySize:   5,
		DiscoveryRate:        0.5,
		LongestSuccessStreak: 1,
		LongestFailureStreak: 1,
		StartTime:            exportStart,
	}
}

func TestJSONStructure(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleSummary(), sampleRecords()); err != nil {
		t.Fatalf("json: %v", err)
	}

	var decoded struct {
		Summary  map[string]any   `json:"summary"`
		Attempts []map[string]any `json:"attempts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Summary["session_id"] != "abc" {
		t.Fatalf("expected session_id abc, got %v", decoded.Summary["session_id"])
	}
	if decoded.Summary["discovery_rate"] != 0.5 {
		t.Fatalf("expected discovery_rate 0.5, got %v", decoded.Summary["discovery_rate"])
	}
	if decoded.Summary["end_time"] != nil {
		t.Fatalf("expected null end_time, got %v", decoded.Summary["end_time"])
	}

	if len(decoded.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(decoded.Attempts))
	}
	first := decoded.Attempts[0]
	if first["e1"] != "air" || first["e2"] != "fire" {
		t.Fatalf("unexpected pair: %v", first)
	}
	if first["time_since_last_success"] != nil {
		t.Fatalf("expected null time_since_last_success, got %v", first["time_since_last_success"])
	}
	created, ok := first["created"].([]any)
	if !ok || len(created) != 1 || created[0] != "energy" {
		t.Fatalf("expected created list [energy], got %v", first["created"])
	}

	second := decoded.Attempts[1]
	if second["time_since_last_success"] != "10s" {
		t.Fatalf("expected 10s since success, got %v", second["time_since_last_success"])
	}
	if list, ok := second["created"].([]any); !ok || len(list) != 0 {
		t.Fatalf("expected empty created list, got %v", second["created"])
	}
}

func TestCSVColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("csv: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}

	wantHeader := strings.Join(csvHeader, ",")
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Fatalf("unexpected header %q", got)
	}

	first := rows[1]
	if first[0] != "abc" || first[1] != "1" || first[2] != "air" || first[3] != "fire" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[4] != "true" || first[5] != "energy" || first[12] != "" {
		t.Fatalf("unexpected first row values: %v", first)
	}
	if first[13] != exportStart.Format(time.RFC3339) {
		t.Fatalf("unexpected timestamp: %q", first[13])
	}

	second := rows[2]
	if second[4] != "false" || second[5] != "" || second[12] != "10s" {
		t.Fatalf("unexpected second row: %v", second)
	}
}

func TestCSVMultiResultJoin(t *testing.T) {
	records := []domain.AttemptRecord{{
		SessionID: "abc", Number: 1,
		First: "pressure", Second: "lava",
		Success: true, Created: []recipe.Element{"eruption", "granite"},
		InventorySizeBefore: 6,
		Novel:               true, StreakType: domain.StreakSuccess, StreakLength: 1,
		Timestamp: exportStart,
	}}

	var buf bytes.Buffer
	if err := CSV(&buf, records); err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if rows[1][5] != "eruption|granite" {
		t.Fatalf("expected joined results, got %q", rows[1][5])
	}
}

func TestDigestShowsTail(t *testing.T) {
	records := make([]domain.AttemptRecord, 0, 7)
	for i := 1; i <= 7; i++ {
		records = append(records, domain.AttemptRecord{
			SessionID: "abc", Number: i,
			First: "air", Second: "water",
			InventorySizeBefore: 4,
			StreakType:          domain.StreakFailure, StreakLength: i,
			Timestamp: exportStart.Add(time.Duration(i) * time.Second),
		})
	}

	var buf bytes.Buffer
	if err := Digest(&buf, sampleSummary(), records); err != nil {
		t.Fatalf("digest: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Session abc") {
		t.Fatalf("expected session header, got %q", out)
	}
	if !strings.Contains(out, "attempts: 2 (1 successful, rate 0.50)") {
		t.Fatalf("expected aggregate line, got %q", out)
	}
	if strings.Contains(out, "#2 ") {
		t.Fatalf("expected only trailing records, got %q", out)
	}
	for i := 3; i <= 7; i++ {
		if !strings.Contains(out, fmt.Sprintf("#%d air + water miss", i)) {
			t.Fatalf("expected record #%d in digest, got %q", i, out)
		}
	}
}

func TestDigestOutcomes(t *testing.T) {
	summary := sampleSummary()
	summary.Mode = domain.ModeTargeted
	summary.TargetReached = true
	end := exportStart.Add(time.Minute)
	summary.EndTime = &end

	records := []domain.AttemptRecord{
		{
			Number: 1, First: "air", Second: "fire",
			Success: true, Created: []recipe.Element{"energy"},
			StreakType: domain.StreakSuccess, StreakLength: 1,
			Timestamp: exportStart,
		},
		{
			Number: 2, First: "air", Second: "fire",
			Success: true, AlreadyKnown: []recipe.Element{"energy"},
			StreakType: domain.StreakSuccess, StreakLength: 2,
			Timestamp: exportStart.Add(time.Second),
		},
	}

	var buf bytes.Buffer
	if err := Digest(&buf, summary, records); err != nil {
		t.Fatalf("digest: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "#1 air + fire -> energy") {
		t.Fatalf("expected discovery line, got %q", out)
	}
	if !strings.Contains(out, "#2 air + fire known: energy") {
		t.Fatalf("expected already-known line, got %q", out)
	}
	if !strings.Contains(out, "target reached within 2 attempts") {
		t.Fatalf("expected target line, got %q", out)
	}
	if !strings.Contains(out, "ended after 1m0s") {
		t.Fatalf("expected duration line, got %q", out)
	}
}
