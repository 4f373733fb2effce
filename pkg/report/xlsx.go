package report

import (
	"fmt"
	"io"
	"log"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/xuri/excelize/v2"
)

const (
	SheetConflicts  = "Conflicts"
	SheetViolations = "Violations"
	SheetBalances   = "Balances"
)

// WriteAnalysis renders an analysis as a three-sheet workbook
func WriteAnalysis(w io.Writer, a *scheduling.Analysis) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Println(err)
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 2},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s", a.RestaurantID, a.Date)

	conflicts := [][]interface{}{}
	for _, c := range a.Conflicts {
		conflicts = append(conflicts, []interface{}{
			c.Severity, string(c.Type), c.StaffID, c.ShiftID, c.RelatedShiftID,
			c.ShiftStart.Format("2006-01-02 15:04"), c.Description,
		})
	}
	if err := writeSheet(f, SheetConflicts, title, headerStyle,
		[]string{"Severity", "Type", "Staff", "Shift", "Related shift", "Start", "Description"},
		[]float64{10, 20, 14, 14, 14, 18, 60}, conflicts); err != nil {
		return err
	}

	violations := [][]interface{}{}
	for _, v := range a.Violations {
		violations = append(violations, []interface{}{
			v.Severity, string(v.Category), v.StaffID,
			v.WindowStart.Format(models.DateLayout), v.WindowEnd.Format(models.DateLayout),
			v.ActualValue, v.RequiredValue, v.Description,
		})
	}
	if err := writeSheet(f, SheetViolations, title, headerStyle,
		[]string{"Severity", "Category", "Staff", "Window start", "Window end", "Actual", "Limit", "Description"},
		[]float64{10, 16, 14, 14, 14, 10, 10, 60}, violations); err != nil {
		return err
	}

	balances := [][]interface{}{}
	for _, b := range a.Balances {
		balances = append(balances, []interface{}{
			b.StaffID, b.TotalHours, b.ShiftCount, b.DaysWorked,
			b.AverageHoursPerDay, b.OvertimeHours, b.Deviation, b.BalanceScore,
		})
	}
	if err := writeSheet(f, SheetBalances, fmt.Sprintf("%s (fairness %.1f)", title, a.FairnessScore), headerStyle,
		[]string{"Staff", "Total hours", "Shifts", "Days", "Avg h/day", "Overtime", "Deviation", "Balance score"},
		[]float64{14, 12, 10, 10, 12, 12, 12, 14}, balances); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(SheetConflicts); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

// writeSheet puts a title in row 1, headers in row 3 and rows from row 4
func writeSheet(f *excelize.File, name, title string, headerStyle int, headers []string, widths []float64, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	if err := f.SetCellValue(name, "A1", title); err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if i < len(widths) {
			if err := f.SetColWidth(name, col, col, widths[i]); err != nil {
				return err
			}
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 3)
	if err := f.SetCellStyle(name, "A3", last, headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+4)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
