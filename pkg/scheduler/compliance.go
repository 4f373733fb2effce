package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

const (
	complianceWindowDays = 7

	severityOvertime    = 3
	severityMaxHours    = 4
	severityRestPeriods = 2
)

// CheckCompliance evaluates the 7-day window ending at asOf for one staff
// member. It is recomputed from scratch on every call, so any historical
// date can be re-checked.
func CheckCompliance(restaurant, staffID string, asOf time.Time, shifts []models.ShiftRecord, profile *models.StaffProfile) ([]models.ComplianceViolation, error) {
	if err := validateScopeKey(restaurant, asOf); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, invalid("staff", "profile is required")
	}
	if staffID == "" || profile.ID != staffID {
		return nil, invalid("staff", "profile %q does not match staff %q", profile.ID, staffID)
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if err := validateShifts(shifts); err != nil {
		return nil, err
	}
	return checkCompliance(restaurant, asOf, shifts, profile), nil
}

func checkCompliance(restaurant string, asOf time.Time, shifts []models.ShiftRecord, profile *models.StaffProfile) []models.ComplianceViolation {
	window := models.TrailingWindow(asOf, complianceWindowDays)
	day := models.DateOnly(asOf)

	var weekly, daily float64
	days := make(map[time.Time]bool)
	for i := range shifts {
		s := &shifts[i]
		if s.AssignedTo() != profile.ID || s.RestaurantID != restaurant || !s.Status.IsActive() || !window.Contains(s.Date) {
			continue
		}
		hours := s.Hours()
		weekly += hours
		d := models.DateOnly(s.Date)
		if d.Equal(day) {
			daily += hours
		}
		days[d] = true
	}

	violation := func(category models.ViolationCategory, actual, required float64, severity int, desc string) models.ComplianceViolation {
		return models.ComplianceViolation{
			StaffID:       profile.ID,
			RestaurantID:  restaurant,
			WindowStart:   window.From,
			WindowEnd:     window.To,
			Category:      category,
			ActualValue:   actual,
			RequiredValue: required,
			Severity:      severity,
			Description:   desc,
		}
	}

	var out []models.ComplianceViolation
	if weekly > profile.MaxHoursPerWeek {
		out = append(out, violation(models.ViolationOvertime, weekly, profile.MaxHoursPerWeek, severityOvertime,
			fmt.Sprintf("%.2f hours scheduled in %s exceeds weekly limit of %.2f", weekly, window, profile.MaxHoursPerWeek)))
	}
	if daily > profile.MaxHoursPerDay {
		out = append(out, violation(models.ViolationMaxHours, daily, profile.MaxHoursPerDay, severityMaxHours,
			fmt.Sprintf("%.2f hours scheduled on %s exceeds daily limit of %.2f", daily, day.Format(models.DateLayout), profile.MaxHoursPerDay)))
	}
	if worked := len(days); worked > profile.MaxConsecutiveDays {
		out = append(out, violation(models.ViolationRestPeriods, float64(worked), float64(profile.MaxConsecutiveDays), severityRestPeriods,
			fmt.Sprintf("worked %d days in %s, limit is %d", worked, window, profile.MaxConsecutiveDays)))
	}
	return out
}

// CheckRosterCompliance runs CheckCompliance for every profile, ordered by
// staff ID and then severity descending.
func CheckRosterCompliance(restaurant string, asOf time.Time, shifts []models.ShiftRecord, profiles []models.StaffProfile) ([]models.ComplianceViolation, error) {
	if err := validateScopeKey(restaurant, asOf); err != nil {
		return nil, err
	}
	if err := validateProfiles(profiles); err != nil {
		return nil, err
	}
	if err := validateShifts(shifts); err != nil {
		return nil, err
	}

	ordered := make([]*models.StaffProfile, len(profiles))
	for i := range profiles {
		ordered[i] = &profiles[i]
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	violations := []models.ComplianceViolation{}
	for _, p := range ordered {
		found := checkCompliance(restaurant, asOf, shifts, p)
		sort.SliceStable(found, func(i, j int) bool { return found[i].Severity > found[j].Severity })
		violations = append(violations, found...)
	}
	return violations, nil
}
