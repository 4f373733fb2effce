package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const snapshotJSON = `{
  "restaurant_id": "r1",
  "staff": [
    {"id": "a", "max_hours_per_week": 40, "max_hours_per_day": 10, "max_consecutive_days": 6,
     "min_hours_between_shifts": 8, "work_scopes": ["r1"], "active_from": "2024-01-01T00:00:00Z"},
    {"id": "b", "max_hours_per_week": 40, "max_hours_per_day": 10, "max_consecutive_days": 6,
     "min_hours_between_shifts": 8, "work_scopes": ["r1"], "active_from": "2024-01-01T00:00:00Z"}
  ],
  "shifts": [
    {"id": "s1", "restaurant_id": "r1", "staff_id": "a", "date": "2026-06-01T00:00:00Z",
     "start_time": "2026-06-01T09:00:00Z", "end_time": "2026-06-01T17:00:00Z", "position": "server", "status": "scheduled"},
    {"id": "s2", "restaurant_id": "r1", "staff_id": "a", "date": "2026-06-01T00:00:00Z",
     "start_time": "2026-06-01T12:00:00Z", "end_time": "2026-06-01T16:00:00Z", "position": "server", "status": "confirmed"},
    {"id": "o1", "restaurant_id": "r1", "date": "2026-06-01T00:00:00Z",
     "start_time": "2026-06-01T10:00:00Z", "end_time": "2026-06-01T18:00:00Z", "position": "server", "status": "scheduled"}
  ],
  "reliability": {"b": 1}
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(snapshotJSON), 0o644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	xlsx := filepath.Join(t.TempDir(), "analysis.xlsx")
	code, err := run(context.Background(), options{
		snapshot: writeSnapshot(t),
		date:     "2026-06-01",
		suggest:  true,
		xlsx:     xlsx,
	}, &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if code != 0 {
		t.Errorf("Expected exit 0 without -strict, got %d", code)
	}

	text := out.String()
	for _, want := range []string{"double_booking", "max_hours", "Workload", "Suggestions (1 requirements"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got\n%s", want, text)
		}
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("Expected workbook at %s: %v", xlsx, err)
	}
}

func TestRun_Strict(t *testing.T) {
	var out bytes.Buffer
	code, err := run(context.Background(), options{snapshot: writeSnapshot(t), date: "2026-06-01", strict: true}, &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if code != 2 {
		t.Errorf("Expected exit 2 with findings, got %d", code)
	}

	// another restaurant has nothing to report
	code, _ = run(context.Background(), options{snapshot: writeSnapshot(t), restaurant: "r9", date: "2026-06-01", strict: true}, &out)
	if code != 0 {
		t.Errorf("Expected exit 0 for an empty restaurant, got %d", code)
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	if _, err := run(context.Background(), options{date: "2026-06-01"}, &out); err == nil {
		t.Error("Expected an error without -snapshot")
	}
	if _, err := run(context.Background(), options{snapshot: writeSnapshot(t), date: "June 1"}, &out); err == nil {
		t.Error("Expected an error for a bad date")
	}
	if _, err := run(context.Background(), options{snapshot: "missing.json", date: "2026-06-01"}, &out); err == nil {
		t.Error("Expected an error for a missing snapshot")
	}
}
