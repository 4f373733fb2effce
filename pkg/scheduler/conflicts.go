package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

const (
	severityDoubleBooking    = 4
	severityInsufficientRest = 3
	severityTimeOff          = 5
	severitySkillMismatch    = 2
)

// ConflictRule is one independent check over a scope. Rules never see each
// other's output.
type ConflictRule interface {
	Type() models.ConflictType
	Evaluate(in *ConflictInput) []models.Conflict
}

// ConflictInput is the indexed, read-only view handed to every rule
type ConflictInput struct {
	Restaurant string
	Date       time.Time

	shifts   []models.ShiftRecord
	day      []*models.ShiftRecord
	profiles map[string]*models.StaffProfile
	timeOff  map[string][]models.TimeOffRequest
	skills   map[string][]models.SkillAssignment
	notes    []models.Note
	noted    map[string]bool
}

func newConflictInput(restaurant string, date time.Time, shifts []models.ShiftRecord, profiles []models.StaffProfile, timeOff []models.TimeOffRequest, skills []models.SkillAssignment) *ConflictInput {
	in := &ConflictInput{
		Restaurant: restaurant,
		Date:       models.DateOnly(date),
		shifts:     shifts,
		profiles:   make(map[string]*models.StaffProfile, len(profiles)),
		timeOff:    make(map[string][]models.TimeOffRequest),
		skills:     make(map[string][]models.SkillAssignment),
		noted:      make(map[string]bool),
	}
	for i := range profiles {
		in.profiles[profiles[i].ID] = &profiles[i]
	}
	for _, r := range timeOff {
		in.timeOff[r.StaffID] = append(in.timeOff[r.StaffID], r)
	}
	for _, s := range skills {
		in.skills[s.StaffID] = append(in.skills[s.StaffID], s)
	}
	for i := range shifts {
		s := &shifts[i]
		if s.RestaurantID == restaurant && s.AssignedTo() != "" && models.DateOnly(s.Date).Equal(in.Date) {
			in.day = append(in.day, s)
		}
	}
	sort.Slice(in.day, func(i, j int) bool {
		if !in.day[i].StartTime.Equal(in.day[j].StartTime) {
			return in.day[i].StartTime.Before(in.day[j].StartTime)
		}
		return in.day[i].ID < in.day[j].ID
	})
	return in
}

// DayShifts returns the assigned shifts of the evaluated date, ordered by start
func (in *ConflictInput) DayShifts() []*models.ShiftRecord {
	return in.day
}

// Profile looks up a staff profile and records a note when it is missing
func (in *ConflictInput) Profile(staffID string) (*models.StaffProfile, bool) {
	p, ok := in.profiles[staffID]
	if !ok {
		in.Note(staffID, "staff referenced by a shift is not in the loaded scope")
	}
	return p, ok
}

// Note attaches an incomplete-data diagnostic once per subject and message
func (in *ConflictInput) Note(subject, message string) {
	key := subject + "\x00" + message
	if in.noted[key] {
		return
	}
	in.noted[key] = true
	in.notes = append(in.notes, models.Note{Kind: models.NoteIncompleteData, Subject: subject, Message: message})
}

// DefaultConflictRules is the rule set DetectConflicts evaluates
func DefaultConflictRules() []ConflictRule {
	return []ConflictRule{
		doubleBookingRule{},
		insufficientRestRule{},
		timeOffRule{},
		skillMismatchRule{},
	}
}

// DetectConflicts evaluates every default rule for restaurant on date and
// returns the union of their findings in presentation order.
func DetectConflicts(restaurant string, date time.Time, shifts []models.ShiftRecord, profiles []models.StaffProfile, timeOff []models.TimeOffRequest, skills []models.SkillAssignment) ([]models.Conflict, []models.Note, error) {
	return DetectConflictsWith(DefaultConflictRules(), restaurant, date, shifts, profiles, timeOff, skills)
}

// DetectConflictsWith is DetectConflicts with a caller supplied rule set
func DetectConflictsWith(rules []ConflictRule, restaurant string, date time.Time, shifts []models.ShiftRecord, profiles []models.StaffProfile, timeOff []models.TimeOffRequest, skills []models.SkillAssignment) ([]models.Conflict, []models.Note, error) {
	if err := validateScopeKey(restaurant, date); err != nil {
		return nil, nil, err
	}
	if err := validateShifts(shifts); err != nil {
		return nil, nil, err
	}
	if err := validateProfiles(profiles); err != nil {
		return nil, nil, err
	}
	for i := range timeOff {
		if err := validateTimeOff(&timeOff[i]); err != nil {
			return nil, nil, err
		}
	}

	in := newConflictInput(restaurant, date, shifts, profiles, timeOff, skills)
	conflicts := []models.Conflict{}
	for _, rule := range rules {
		conflicts = append(conflicts, rule.Evaluate(in)...)
	}
	SortConflicts(conflicts)
	return conflicts, in.notes, nil
}

// SortConflicts orders by severity descending then shift start ascending.
// Remaining ties fall back to type and shift IDs so output is stable.
func SortConflicts(conflicts []models.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if !a.ShiftStart.Equal(b.ShiftStart) {
			return a.ShiftStart.Before(b.ShiftStart)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.ShiftID != b.ShiftID {
			return a.ShiftID < b.ShiftID
		}
		return a.RelatedShiftID < b.RelatedShiftID
	})
}

type doubleBookingRule struct{}

func (doubleBookingRule) Type() models.ConflictType { return models.ConflictDoubleBooking }

// Evaluate emits one entry per overlapping pair, so N mutually overlapping
// shifts yield N*(N-1)/2 conflicts.
func (doubleBookingRule) Evaluate(in *ConflictInput) []models.Conflict {
	byStaff := make(map[string][]*models.ShiftRecord)
	var staffIDs []string
	for _, s := range in.DayShifts() {
		if !s.Status.IsBooked() {
			continue
		}
		id := s.AssignedTo()
		if _, ok := byStaff[id]; !ok {
			staffIDs = append(staffIDs, id)
		}
		byStaff[id] = append(byStaff[id], s)
	}
	sort.Strings(staffIDs)

	var out []models.Conflict
	for _, staffID := range staffIDs {
		shifts := byStaff[staffID]
		for i := 0; i < len(shifts); i++ {
			for j := i + 1; j < len(shifts); j++ {
				a, b := shifts[i], shifts[j]
				if !Overlap(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
					continue
				}
				out = append(out, models.Conflict{
					Type:           models.ConflictDoubleBooking,
					StaffID:        staffID,
					ShiftID:        a.ID,
					RelatedShiftID: b.ID,
					ShiftStart:     a.StartTime,
					Description: fmt.Sprintf("shift %s (%s-%s) overlaps shift %s (%s-%s)",
						a.ID, a.StartTime.Format("15:04"), a.EndTime.Format("15:04"),
						b.ID, b.StartTime.Format("15:04"), b.EndTime.Format("15:04")),
					Severity: severityDoubleBooking,
				})
			}
		}
	}
	return out
}

type insufficientRestRule struct{}

func (insufficientRestRule) Type() models.ConflictType { return models.ConflictInsufficientRest }

// Evaluate compares each shift with the latest-ending shift the same staff
// worked on the previous calendar day.
func (insufficientRestRule) Evaluate(in *ConflictInput) []models.Conflict {
	previousDay := in.Date.AddDate(0, 0, -1)
	lastEnd := make(map[string]*models.ShiftRecord)
	for i := range in.shifts {
		s := &in.shifts[i]
		staffID := s.AssignedTo()
		if staffID == "" || !s.Status.IsActive() || !models.DateOnly(s.Date).Equal(previousDay) {
			continue
		}
		if cur, ok := lastEnd[staffID]; !ok || s.EndTime.After(cur.EndTime) {
			lastEnd[staffID] = s
		}
	}

	var out []models.Conflict
	for _, s := range in.DayShifts() {
		if !s.Status.IsActive() {
			continue
		}
		prev, ok := lastEnd[s.AssignedTo()]
		if !ok {
			continue
		}
		profile, ok := in.Profile(s.AssignedTo())
		if !ok {
			continue
		}
		gap := DurationHours(prev.EndTime, s.StartTime)
		if gap >= profile.MinHoursBetweenShifts {
			continue
		}
		out = append(out, models.Conflict{
			Type:           models.ConflictInsufficientRest,
			StaffID:        s.AssignedTo(),
			ShiftID:        s.ID,
			RelatedShiftID: prev.ID,
			ShiftStart:     s.StartTime,
			Description: fmt.Sprintf("only %.1f hours rest after shift %s, minimum is %.1f",
				gap, prev.ID, profile.MinHoursBetweenShifts),
			Severity: severityInsufficientRest,
		})
	}
	return out
}

type timeOffRule struct{}

func (timeOffRule) Type() models.ConflictType { return models.ConflictTimeOff }

func (timeOffRule) Evaluate(in *ConflictInput) []models.Conflict {
	var out []models.Conflict
	for _, s := range in.DayShifts() {
		if !s.Status.IsActive() {
			continue
		}
		for _, req := range in.timeOff[s.AssignedTo()] {
			if !req.Covers(in.Date) {
				continue
			}
			out = append(out, models.Conflict{
				Type:       models.ConflictTimeOff,
				StaffID:    s.AssignedTo(),
				ShiftID:    s.ID,
				ShiftStart: s.StartTime,
				Description: fmt.Sprintf("staff has approved time off %s to %s",
					req.StartDate.Format(models.DateLayout), req.EndDate.Format(models.DateLayout)),
				Severity: severityTimeOff,
			})
			break
		}
	}
	return out
}

type skillMismatchRule struct{}

func (skillMismatchRule) Type() models.ConflictType { return models.ConflictSkillMismatch }

// Evaluate flags shifts where the staff holds none of the required skills
// at intermediate or above.
func (skillMismatchRule) Evaluate(in *ConflictInput) []models.Conflict {
	var out []models.Conflict
	for _, s := range in.DayShifts() {
		if !s.Status.IsActive() || len(s.RequiredSkills) == 0 {
			continue
		}
		qualified := false
		for _, held := range in.skills[s.AssignedTo()] {
			if held.ValidOn(in.Date) && held.Level.AtLeast(models.ProficiencyIntermediate) && containsString(s.RequiredSkills, held.Skill) {
				qualified = true
				break
			}
		}
		if qualified {
			continue
		}
		out = append(out, models.Conflict{
			Type:        models.ConflictSkillMismatch,
			StaffID:     s.AssignedTo(),
			ShiftID:     s.ID,
			ShiftStart:  s.StartTime,
			Description: "staff holds none of the required skills at intermediate level: " + strings.Join(s.RequiredSkills, ", "),
			Severity:    severitySkillMismatch,
		})
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
