package scheduler

import (
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

// ValidateProfile rejects non-positive limits and inverted active ranges
func ValidateProfile(p *models.StaffProfile) error {
	if p.ID == "" {
		return invalid("staff.id", "is required")
	}
	if p.MaxHoursPerWeek <= 0 {
		return invalid("staff["+p.ID+"].max_hours_per_week", "must be positive, got %v", p.MaxHoursPerWeek)
	}
	if p.MaxHoursPerDay <= 0 {
		return invalid("staff["+p.ID+"].max_hours_per_day", "must be positive, got %v", p.MaxHoursPerDay)
	}
	if p.MaxConsecutiveDays <= 0 {
		return invalid("staff["+p.ID+"].max_consecutive_days", "must be positive, got %d", p.MaxConsecutiveDays)
	}
	if p.MinHoursBetweenShifts < 0 {
		return invalid("staff["+p.ID+"].min_hours_between_shifts", "must not be negative, got %v", p.MinHoursBetweenShifts)
	}
	if p.ActiveTo != nil && !p.ActiveFrom.IsZero() && p.ActiveTo.Before(p.ActiveFrom) {
		return invalid("staff["+p.ID+"].active_to", "is before active_from")
	}
	return nil
}

// ValidateShift requires an identifier, a scope and end strictly after start
func ValidateShift(s *models.ShiftRecord) error {
	if s.ID == "" {
		return invalid("shift.id", "is required")
	}
	if s.RestaurantID == "" {
		return invalid("shift["+s.ID+"].restaurant_id", "is required")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return invalid("shift["+s.ID+"]", "start and end are required")
	}
	if !s.EndTime.After(s.StartTime) {
		return invalid("shift["+s.ID+"].end_time", "must be after start_time")
	}
	if s.Status != "" && !s.Status.Valid() {
		return invalid("shift["+s.ID+"].status", "unknown status %q", s.Status)
	}
	return nil
}

func validateTimeOff(r *models.TimeOffRequest) error {
	if r.StaffID == "" {
		return invalid("time_off.staff_id", "is required")
	}
	if r.EndDate.Before(r.StartDate) {
		return invalid("time_off["+r.StaffID+"].end_date", "is before start_date")
	}
	return nil
}

func validateWindow(w *models.AvailabilityWindow) error {
	if w.StaffID == "" {
		return invalid("availability.staff_id", "is required")
	}
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return invalid("availability["+w.StaffID+"].day_of_week", "must be 0-6, got %d", w.DayOfWeek)
	}
	if _, _, err := clockSpan(w.StartTime, w.EndTime); err != nil {
		return invalid("availability["+w.StaffID+"]", "%v", err)
	}
	return nil
}

func validateSkill(s *models.SkillAssignment) error {
	if s.StaffID == "" || s.Skill == "" {
		return invalid("skills", "staff_id and skill are required")
	}
	if !s.Level.Valid() {
		return invalid("skills["+s.StaffID+"/"+s.Skill+"].level", "unknown level %q", s.Level)
	}
	return nil
}

func validateScopeKey(restaurant string, date time.Time) error {
	if restaurant == "" {
		return invalid("restaurant", "is required")
	}
	if date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

func validateShifts(shifts []models.ShiftRecord) error {
	for i := range shifts {
		if err := ValidateShift(&shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateProfiles(profiles []models.StaffProfile) error {
	for i := range profiles {
		if err := ValidateProfile(&profiles[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateScope checks a whole snapshot so no analysis starts on bad data
func ValidateScope(scope *models.Scope) error {
	if scope.RestaurantID == "" {
		return invalid("restaurant", "is required")
	}
	if err := validateProfiles(scope.StaffProfiles); err != nil {
		return err
	}
	if err := validateShifts(scope.ShiftRecords); err != nil {
		return err
	}
	seen := make(map[string]bool, len(scope.SkillAssignments))
	for i := range scope.SkillAssignments {
		s := &scope.SkillAssignments[i]
		if err := validateSkill(s); err != nil {
			return err
		}
		key := s.StaffID + "\x00" + s.Skill
		if seen[key] {
			return invalid("skills["+s.StaffID+"/"+s.Skill+"]", "duplicate proficiency record")
		}
		seen[key] = true
	}
	for i := range scope.AvailabilityWindows {
		if err := validateWindow(&scope.AvailabilityWindows[i]); err != nil {
			return err
		}
	}
	for i := range scope.TimeOffRequests {
		if err := validateTimeOff(&scope.TimeOffRequests[i]); err != nil {
			return err
		}
	}
	return nil
}
