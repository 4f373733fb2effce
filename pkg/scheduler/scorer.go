package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

const workloadWindowDays = 7

// ScoringInput is everything the scorer needs for one (restaurant, date).
// Reliability and ShiftCounts are pre-fetched aggregates keyed by staff ID;
// a staff member missing from Reliability has no history.
type ScoringInput struct {
	Restaurant       string
	Date             time.Time
	Requirements     []models.ShiftRequirement
	StaffProfiles    []models.StaffProfile
	Availability     []models.AvailabilityWindow
	SkillAssignments []models.SkillAssignment
	TimeOff          []models.TimeOffRequest
	Shifts           []models.ShiftRecord
	Reliability      map[string]float64
	ShiftCounts      map[string]int
	Weights          *ScoringWeights
}

// RequirementSuggestions is the ranked candidate list for one requirement
type RequirementSuggestions struct {
	Requirement models.ShiftRequirement       `json:"requirement"`
	Suggestions []models.AssignmentSuggestion `json:"suggestions"`
	Skipped     bool                          `json:"skipped,omitempty"`
}

// CountRecentShifts counts active shifts per staff in the 7-day window
// ending at asOf.
func CountRecentShifts(shifts []models.ShiftRecord, asOf time.Time) map[string]int {
	window := models.TrailingWindow(asOf, workloadWindowDays)
	counts := make(map[string]int)
	for i := range shifts {
		s := &shifts[i]
		if s.AssignedTo() == "" || !s.Status.IsActive() || !window.Contains(s.Date) {
			continue
		}
		counts[s.AssignedTo()]++
	}
	return counts
}

// SuggestAssignments ranks eligible staff for every open requirement. Only
// candidates scoring strictly above the inclusion threshold are returned,
// ordered by score descending and then staff ID.
func SuggestAssignments(in ScoringInput) ([]RequirementSuggestions, []models.Note, error) {
	weights := DefaultScoringWeights()
	if in.Weights != nil {
		weights = *in.Weights
	}
	if err := in.validate(weights); err != nil {
		return nil, nil, err
	}

	sc := newScorer(in, weights)
	reqs := append([]models.ShiftRequirement(nil), in.Requirements...)
	for i := range reqs {
		if reqs[i].Key == "" {
			reqs[i].Key = RequirementKey(reqs[i].Position, reqs[i].Start, reqs[i].End, reqs[i].RequiredSkills)
		}
	}
	sortRequirements(reqs)

	out := make([]RequirementSuggestions, 0, len(reqs))
	var notes []models.Note
	for _, req := range reqs {
		entry := RequirementSuggestions{Requirement: req, Suggestions: []models.AssignmentSuggestion{}}
		if missing := sc.unknownSkills(req.RequiredSkills); len(missing) > 0 {
			entry.Skipped = true
			notes = append(notes, models.Note{
				Kind:    models.NoteIncompleteData,
				Subject: req.Key,
				Message: "required skills not present in the loaded scope: " + strings.Join(missing, ", "),
			})
			out = append(out, entry)
			continue
		}
		for _, p := range sc.staff {
			if !sc.eligible(p, req) {
				continue
			}
			s := sc.score(p, req)
			if s.Score > weights.InclusionThreshold {
				entry.Suggestions = append(entry.Suggestions, s)
			}
		}
		sort.SliceStable(entry.Suggestions, func(i, j int) bool {
			a, b := entry.Suggestions[i], entry.Suggestions[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.StaffID < b.StaffID
		})
		out = append(out, entry)
	}
	return out, notes, nil
}

func (in *ScoringInput) validate(w ScoringWeights) error {
	if err := validateScopeKey(in.Restaurant, in.Date); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if err := validateProfiles(in.StaffProfiles); err != nil {
		return err
	}
	if err := validateShifts(in.Shifts); err != nil {
		return err
	}
	for i := range in.Requirements {
		r := &in.Requirements[i]
		if !r.End.After(r.Start) {
			return invalid("requirement["+r.Key+"].end", "must be after start")
		}
	}
	for i := range in.Availability {
		if err := validateWindow(&in.Availability[i]); err != nil {
			return err
		}
	}
	for i := range in.SkillAssignments {
		if err := validateSkill(&in.SkillAssignments[i]); err != nil {
			return err
		}
	}
	for i := range in.TimeOff {
		if err := validateTimeOff(&in.TimeOff[i]); err != nil {
			return err
		}
	}
	return nil
}

type scorer struct {
	in      ScoringInput
	w       ScoringWeights
	date    time.Time
	staff   []*models.StaffProfile
	windows map[string][]models.AvailabilityWindow
	carried map[string][]models.AvailabilityWindow
	skills  map[string]map[string]models.SkillAssignment
	known   map[string]bool
	timeOff map[string][]models.TimeOffRequest
	booked  map[string][]*models.ShiftRecord
}

func newScorer(in ScoringInput, w ScoringWeights) *scorer {
	sc := &scorer{
		in:      in,
		w:       w,
		date:    models.DateOnly(in.Date),
		windows: make(map[string][]models.AvailabilityWindow),
		carried: make(map[string][]models.AvailabilityWindow),
		skills:  make(map[string]map[string]models.SkillAssignment),
		known:   make(map[string]bool),
		timeOff: make(map[string][]models.TimeOffRequest),
		booked:  make(map[string][]*models.ShiftRecord),
	}
	for i := range in.StaffProfiles {
		sc.staff = append(sc.staff, &in.StaffProfiles[i])
	}
	sort.Slice(sc.staff, func(i, j int) bool { return sc.staff[i].ID < sc.staff[j].ID })

	prev := sc.date.AddDate(0, 0, -1)
	for _, w := range in.Availability {
		if w.EffectiveOn(sc.date) {
			sc.windows[w.StaffID] = append(sc.windows[w.StaffID], w)
		} else if w.EffectiveOn(prev) {
			// yesterday's window may run past midnight into today
			if _, end, err := clockSpan(w.StartTime, w.EndTime); err == nil && end > minutesPerDay {
				sc.carried[w.StaffID] = append(sc.carried[w.StaffID], w)
			}
		}
	}
	for _, s := range in.SkillAssignments {
		sc.known[s.Skill] = true
		if !s.ValidOn(sc.date) {
			continue
		}
		if sc.skills[s.StaffID] == nil {
			sc.skills[s.StaffID] = make(map[string]models.SkillAssignment)
		}
		sc.skills[s.StaffID][s.Skill] = s
	}
	for _, r := range in.TimeOff {
		sc.timeOff[r.StaffID] = append(sc.timeOff[r.StaffID], r)
	}
	for i := range in.Shifts {
		s := &in.Shifts[i]
		if s.AssignedTo() != "" && s.Status.IsActive() {
			sc.booked[s.AssignedTo()] = append(sc.booked[s.AssignedTo()], s)
		}
	}
	return sc
}

func (sc *scorer) unknownSkills(required []string) []string {
	var missing []string
	for _, skill := range normalizeSkills(required) {
		if !sc.known[skill] {
			missing = append(missing, skill)
		}
	}
	return missing
}

func (sc *scorer) eligible(p *models.StaffProfile, req models.ShiftRequirement) bool {
	if !p.WorksAt(sc.in.Restaurant) || !p.ActiveOn(sc.date) {
		return false
	}
	for _, s := range sc.booked[p.ID] {
		if Overlap(s.StartTime, s.EndTime, req.Start, req.End) {
			return false
		}
	}
	for _, r := range sc.timeOff[p.ID] {
		if r.Covers(sc.date) {
			return false
		}
	}
	return true
}

func (sc *scorer) score(p *models.StaffProfile, req models.ShiftRequirement) models.AssignmentSuggestion {
	var b models.ScoreBreakdown
	var why []string

	points, reason := sc.availabilityPoints(p.ID, req)
	b.Availability = points
	why = append(why, reason)

	points, reason = sc.skillPoints(p.ID, req.RequiredSkills)
	b.Skill = points
	why = append(why, reason)

	points, reason = sc.reliabilityPoints(p.ID)
	b.Reliability = points
	why = append(why, reason)

	points, reason = sc.workloadPoints(p.ID)
	b.Workload = points
	why = append(why, reason)

	return models.AssignmentSuggestion{
		RequirementKey: req.Key,
		StaffID:        p.ID,
		Score:          clamp(b.Total(), 0, 100),
		Breakdown:      b,
		Rationale:      strings.Join(why, ", "),
	}
}

// availabilityPoints treats the most permissive matching window as
// authoritative: a containing available window beats any preferred window.
func (sc *scorer) availabilityPoints(staffID string, req models.ShiftRequirement) (float64, string) {
	reqStart := minuteOfDay(req.Start)
	reqEnd := reqStart + int(req.End.Sub(req.Start).Minutes())

	preferred := false
	// offset shifts a window into the requirement's day
	contains := func(w models.AvailabilityWindow, offset int) bool {
		start, end, err := clockSpan(w.StartTime, w.EndTime)
		if err != nil {
			return false
		}
		start, end = start-offset, end-offset
		switch w.Status {
		case models.AvailabilityAvailable:
			return start <= reqStart && reqEnd <= end
		case models.AvailabilityPreferred:
			if offset == 0 || reqStart < end {
				preferred = true
			}
		}
		return false
	}
	for _, w := range sc.windows[staffID] {
		if contains(w, 0) {
			return sc.w.AvailableWindow, "available for the full shift"
		}
	}
	for _, w := range sc.carried[staffID] {
		if contains(w, minutesPerDay) {
			return sc.w.AvailableWindow, "available for the full shift"
		}
	}
	if preferred {
		return sc.w.PreferredWindow, "preferred time slot"
	}
	return sc.w.AvailabilityFallback, "no matching availability window"
}

func (sc *scorer) skillPoints(staffID string, required []string) (float64, string) {
	required = normalizeSkills(required)
	if len(required) == 0 {
		return sc.w.AllSkillsAdvanced, "no specific skills required"
	}
	held := sc.skills[staffID]
	advanced, intermediate := 0, 0
	for _, skill := range required {
		s, ok := held[skill]
		if !ok {
			continue
		}
		if s.Level.AtLeast(models.ProficiencyAdvanced) {
			advanced++
		}
		if s.Level.AtLeast(models.ProficiencyIntermediate) {
			intermediate++
		}
	}
	switch {
	case advanced == len(required):
		return sc.w.AllSkillsAdvanced, "all required skills at advanced level"
	case intermediate*2 >= len(required):
		return sc.w.HalfSkillsIntermediate, "at least half of required skills at intermediate level"
	default:
		return sc.w.SkillFallback, "missing required skills"
	}
}

func (sc *scorer) reliabilityPoints(staffID string) (float64, string) {
	ratio, ok := sc.in.Reliability[staffID]
	if !ok {
		return sc.w.Reliability * sc.w.DefaultReliability, "no reliability history"
	}
	ratio = clamp(ratio, 0, 1)
	return sc.w.Reliability * ratio, fmt.Sprintf("%.0f%% reliability", ratio*100)
}

func (sc *scorer) workloadPoints(staffID string) (float64, string) {
	count := sc.in.ShiftCounts[staffID]
	switch {
	case count < sc.w.LightWorkloadShifts:
		return sc.w.LightWorkload, fmt.Sprintf("light workload (%d shifts this week)", count)
	case count < sc.w.ModerateWorkloadShifts:
		return sc.w.ModerateWorkload, fmt.Sprintf("moderate workload (%d shifts this week)", count)
	default:
		return 0, fmt.Sprintf("heavy workload (%d shifts this week)", count)
	}
}
