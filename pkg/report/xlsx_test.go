package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/xuri/excelize/v2"
)

func TestWriteAnalysis_RoundTrip(t *testing.T) {
	d := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	a := &scheduling.Analysis{
		RestaurantID: "r1",
		Date:         "2026-06-01",
		Conflicts: []models.Conflict{
			{Type: models.ConflictTimeOff, StaffID: "a", ShiftID: "s1", ShiftStart: d.Add(9 * time.Hour), Severity: 5, Description: "approved time off"},
		},
		Violations: []models.ComplianceViolation{
			{StaffID: "b", Category: models.ViolationOvertime, WindowStart: d.AddDate(0, 0, -6), WindowEnd: d, ActualValue: 42, RequiredValue: 40, Severity: 3},
		},
		Balances: []models.StaffBalance{
			{StaffID: "a", TotalHours: 12, ShiftCount: 2, DaysWorked: 2, AverageHoursPerDay: 6, BalanceScore: 100},
			{StaffID: "b", TotalHours: 42, ShiftCount: 7, DaysWorked: 7, AverageHoursPerDay: 6, BalanceScore: 100},
		},
		FairnessScore: 44.4,
	}

	var buf bytes.Buffer
	if err := WriteAnalysis(&buf, a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Expected a readable workbook, got %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("Expected 3 sheets, got %v", sheets)
	}

	got, _ := f.GetCellValue(SheetConflicts, "B4")
	if got != "time_off_conflict" {
		t.Errorf("Expected conflict type in B4, got %q", got)
	}
	got, _ = f.GetCellValue(SheetViolations, "F4")
	if got != "42" {
		t.Errorf("Expected actual hours 42 in F4, got %q", got)
	}
	rows, _ := f.GetRows(SheetBalances)
	// title, blank, header, two staff
	if len(rows) != 5 {
		t.Errorf("Expected 5 rows on the balance sheet, got %d", len(rows))
	}
	title, _ := f.GetCellValue(SheetBalances, "A1")
	if title != "r1 2026-06-01 (fairness 44.4)" {
		t.Errorf("Unexpected title %q", title)
	}
}

func TestWriteAnalysis_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysis(&buf, &scheduling.Analysis{RestaurantID: "r1", Date: "2026-06-01"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("Expected a workbook even without findings")
	}
}
