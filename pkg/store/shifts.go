package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransitionShift moves a shift of restaurant to next if the status machine
// allows it. Unknown shifts return gorm.ErrRecordNotFound.
func (s *Store) TransitionShift(ctx context.Context, restaurant, shiftID string, next models.ShiftStatus) (*models.ShiftRecord, error) {
	if !next.Valid() {
		return nil, &scheduler.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", next)}
	}

	var shift models.ShiftRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shift, "id = ? AND restaurant_id = ?", shiftID, restaurant).Error; err != nil {
			return err
		}
		if !shift.Status.CanTransitionTo(next) {
			return &scheduler.ValidationError{
				Field:  "status",
				Reason: fmt.Sprintf("cannot move shift %s from %s to %s", shiftID, shift.Status, next),
			}
		}
		// guarded on the old status so a concurrent transition loses cleanly
		res := tx.Model(&models.ShiftRecord{}).
			Where("id = ? AND status = ?", shiftID, shift.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &scheduler.ValidationError{Field: "status", Reason: "shift " + shiftID + " changed concurrently"}
		}
		shift.Status = next
		return nil
	})
	if err != nil {
		var verr *scheduler.ValidationError
		if errors.As(err, &verr) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, unavailable("transition shift", err)
	}
	s.lg.Printf("Shift %s moved to %s", shiftID, next)
	return &shift, nil
}

// UpsertShifts inserts or replaces shifts by ID. An ID already owned by
// another restaurant is rejected.
func (s *Store) UpsertShifts(ctx context.Context, shifts []models.ShiftRecord) error {
	for i := range shifts {
		if err := scheduler.ValidateShift(&shifts[i]); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.upsertShifts(tx, shifts)
	})
}

const shiftBatch = 500

func (s *Store) upsertShifts(tx *gorm.DB, shifts []models.ShiftRecord) error {
	if len(shifts) == 0 {
		return nil
	}
	if err := checkShiftOwners(tx, shifts); err != nil {
		return err
	}
	// restaurant_id is never updated: a shift cannot change hands
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"staff_id", "date", "start_time", "end_time", "position", "required_skills", "status", "overtime_hours", "updated_at"}),
	}).CreateInBatches(&shifts, shiftBatch).Error
	if err != nil {
		return unavailable("upsert shifts", err)
	}
	return nil
}

func checkShiftOwners(tx *gorm.DB, shifts []models.ShiftRecord) error {
	owner := make(map[string]string, len(shifts))
	for start := 0; start < len(shifts); start += shiftBatch {
		end := min(start+shiftBatch, len(shifts))
		ids := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			ids = append(ids, shifts[i].ID)
		}
		var existing []models.ShiftRecord
		if err := tx.Select("id", "restaurant_id").Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return unavailable("check shift owners", err)
		}
		for _, e := range existing {
			owner[e.ID] = e.RestaurantID
		}
	}
	for i := range shifts {
		if r, ok := owner[shifts[i].ID]; ok && r != shifts[i].RestaurantID {
			return &scheduler.ValidationError{
				Field:  "shift[" + shifts[i].ID + "]",
				Reason: "id belongs to another restaurant",
			}
		}
	}
	return nil
}

// ParseShiftsCSV reads shifts for restaurant. Required columns: id, date,
// start, end. Optional: staff_id, position, required_skills (| separated),
// status, overtime_hours. Times may be RFC3339 or 2006-01-02T15:04 (UTC).
func ParseShiftsCSV(restaurant string, r io.Reader) ([]models.ShiftRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, &scheduler.ValidationError{Field: "csv", Reason: "failed to read header"}
	}
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{"id", "date", "start", "end"} {
		if _, ok := cols[required]; !ok {
			return nil, &scheduler.ValidationError{Field: "csv", Reason: "missing column " + required}
		}
	}

	field := func(record []string, name string) string {
		if i, ok := cols[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var shifts []models.ShiftRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowErr := func(reason string) error {
			return &scheduler.ValidationError{Field: fmt.Sprintf("csv line %d", line), Reason: reason}
		}
		if err != nil {
			return nil, rowErr(err.Error())
		}

		date, err := models.ParseDate(field(record, "date"))
		if err != nil {
			return nil, rowErr(err.Error())
		}
		start, err := parseTimestamp(field(record, "start"))
		if err != nil {
			return nil, rowErr("bad start: " + err.Error())
		}
		end, err := parseTimestamp(field(record, "end"))
		if err != nil {
			return nil, rowErr("bad end: " + err.Error())
		}

		shift := models.ShiftRecord{
			ID:           field(record, "id"),
			RestaurantID: restaurant,
			Date:         date,
			StartTime:    start,
			EndTime:      end,
			Position:     field(record, "position"),
			Status:       models.ShiftStatus(field(record, "status")),
		}
		if shift.Status == "" {
			shift.Status = models.ShiftScheduled
		}
		if staff := field(record, "staff_id"); staff != "" {
			shift.StaffID = &staff
		}
		if raw := field(record, "required_skills"); raw != "" {
			for _, skill := range strings.Split(raw, "|") {
				if skill = strings.TrimSpace(skill); skill != "" {
					shift.RequiredSkills = append(shift.RequiredSkills, skill)
				}
			}
		}
		if shift.RequiredSkills == nil {
			shift.RequiredSkills = datatypes.JSONSlice[string]{}
		}
		if raw := field(record, "overtime_hours"); raw != "" {
			ot, err := strconv.ParseFloat(raw, 64)
			if err != nil || ot < 0 {
				return nil, rowErr("overtime_hours must be a non-negative number")
			}
			shift.OvertimeHours = ot
		}
		if err := scheduler.ValidateShift(&shift); err != nil {
			return nil, rowErr(err.Error())
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02T15:04", raw)
}

// ImportShiftsCSV parses and upserts a shift file, returning the row count
func (s *Store) ImportShiftsCSV(ctx context.Context, restaurant string, r io.Reader) (int, error) {
	shifts, err := ParseShiftsCSV(restaurant, r)
	if err != nil {
		return 0, err
	}
	if err := s.UpsertShifts(ctx, shifts); err != nil {
		return 0, err
	}
	s.lg.Printf("Imported %d shifts for %s", len(shifts), restaurant)
	return len(shifts), nil
}
