package scheduler

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"gorm.io/datatypes"
)

func requirement(date time.Time, startHour, hours int, skills ...string) models.ShiftRequirement {
	start := at(date, startHour, 0)
	end := at(date, startHour+hours, 0)
	return models.ShiftRequirement{
		Key:            RequirementKey("server", start, end, skills),
		RestaurantID:   testRestaurant,
		Date:           date,
		Position:       "server",
		Start:          start,
		End:            end,
		RequiredSkills: skills,
		Openings:       1,
	}
}

func window(staff string, weekday time.Weekday, start, end string, status models.AvailabilityStatus) models.AvailabilityWindow {
	return models.AvailabilityWindow{StaffID: staff, DayOfWeek: weekday, StartTime: start, EndTime: end, Status: status}
}

func TestSuggestAssignments_SkillRanking(t *testing.T) {
	d := day(2026, time.June, 1) // Monday
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8, "CASH_HANDLING")},
		StaffProfiles: []models.StaffProfile{profile("D"), profile("C")},
		Availability: []models.AvailabilityWindow{
			window("C", time.Monday, "08:00", "18:00", models.AvailabilityAvailable),
			window("D", time.Monday, "08:00", "18:00", models.AvailabilityAvailable),
		},
		SkillAssignments: []models.SkillAssignment{{StaffID: "C", Skill: "CASH_HANDLING", Level: models.ProficiencyExpert}},
		Reliability:      map[string]float64{"C": 1, "D": 1},
	}

	out, notes, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %+v", notes)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 requirement, got %d", len(out))
	}
	got := out[0].Suggestions
	if len(got) != 2 {
		t.Fatalf("Expected both candidates above threshold, got %+v", got)
	}
	if got[0].StaffID != "C" || got[1].StaffID != "D" {
		t.Errorf("Expected C ranked above D, got %s then %s", got[0].StaffID, got[1].StaffID)
	}
	if got[0].Breakdown.Skill != 30 || got[1].Breakdown.Skill != 5 {
		t.Errorf("Expected skill points 30 and 5, got %v and %v", got[0].Breakdown.Skill, got[1].Breakdown.Skill)
	}
	if got[0].Score != 100 {
		t.Errorf("Expected a perfect candidate to score 100, got %v", got[0].Score)
	}
	if got[0].Rationale == "" {
		t.Errorf("Expected a rationale")
	}
}

func TestSuggestAssignments_AvailabilityBands(t *testing.T) {
	d := day(2026, time.June, 1)
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("avail"), profile("pref"), profile("partial"), profile("none")},
		Availability: []models.AvailabilityWindow{
			window("avail", time.Monday, "09:00", "17:00", models.AvailabilityAvailable),
			window("pref", time.Monday, "12:00", "14:00", models.AvailabilityPreferred),
			window("partial", time.Monday, "10:00", "17:00", models.AvailabilityAvailable),
			window("none", time.Tuesday, "00:00", "23:59", models.AvailabilityAvailable),
		},
	}
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	in.Weights = &w

	out, _, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	points := map[string]float64{}
	for _, s := range out[0].Suggestions {
		points[s.StaffID] = s.Breakdown.Availability
	}
	want := map[string]float64{"avail": 40, "pref": 30, "partial": 10, "none": 10}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("Expected %v, got %v", want, points)
	}
}

func TestSuggestAssignments_OvernightWindowContainsLateShift(t *testing.T) {
	d := day(2026, time.June, 1)
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 20, 6)},
		StaffProfiles: []models.StaffProfile{profile("night")},
		Availability:  []models.AvailabilityWindow{window("night", time.Monday, "18:00", "04:00", models.AvailabilityAvailable)},
		Weights:       &w,
	}
	out, _, _ := SuggestAssignments(in)
	if len(out[0].Suggestions) != 1 || out[0].Suggestions[0].Breakdown.Availability != 40 {
		t.Errorf("Expected the overnight window to contain 20:00-02:00, got %+v", out[0].Suggestions)
	}
}

func TestSuggestAssignments_PreviousDayWindowCarriesPastMidnight(t *testing.T) {
	d := day(2026, time.June, 1) // Monday
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 1, 1)},
		StaffProfiles: []models.StaffProfile{profile("late"), profile("early"), profile("pref")},
		Availability: []models.AvailabilityWindow{
			window("late", time.Sunday, "22:00", "02:00", models.AvailabilityAvailable),
			// ends on Sunday, says nothing about Monday
			window("early", time.Sunday, "00:00", "03:00", models.AvailabilityAvailable),
			// wraps, but is over before the requirement starts
			window("pref", time.Sunday, "20:00", "00:30", models.AvailabilityPreferred),
		},
		Weights: &w,
	}
	out, _, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := map[string]float64{}
	for _, s := range out[0].Suggestions {
		got[s.StaffID] = s.Breakdown.Availability
	}
	if got["late"] != w.AvailableWindow {
		t.Errorf("Expected Sunday 22:00-02:00 to contain Monday 01:00-02:00, got %v", got["late"])
	}
	if got["early"] != w.AvailabilityFallback {
		t.Errorf("Expected the fallback for a window that does not wrap, got %v", got["early"])
	}
	if got["pref"] != w.AvailabilityFallback {
		t.Errorf("Expected the fallback for a preferred window that ended, got %v", got["pref"])
	}
}

func TestSuggestAssignments_SkillBands(t *testing.T) {
	d := day(2026, time.June, 1)
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	skills := []models.SkillAssignment{
		{StaffID: "all", Skill: "A", Level: models.ProficiencyAdvanced},
		{StaffID: "all", Skill: "B", Level: models.ProficiencyTrainer},
		{StaffID: "half", Skill: "A", Level: models.ProficiencyIntermediate},
		{StaffID: "weak", Skill: "A", Level: models.ProficiencyBasic},
		{StaffID: "weak", Skill: "B", Level: models.ProficiencyTrainee},
	}
	in := ScoringInput{
		Restaurant:       testRestaurant,
		Date:             d,
		Requirements:     []models.ShiftRequirement{requirement(d, 9, 8, "A", "B")},
		StaffProfiles:    []models.StaffProfile{profile("all"), profile("half"), profile("weak")},
		SkillAssignments: skills,
		Weights:          &w,
	}
	out, _, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	points := map[string]float64{}
	for _, s := range out[0].Suggestions {
		points[s.StaffID] = s.Breakdown.Skill
	}
	want := map[string]float64{"all": 30, "half": 20, "weak": 5}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("Expected %v, got %v", want, points)
	}
}

func TestSuggestAssignments_ReliabilityAndWorkload(t *testing.T) {
	d := day(2026, time.June, 1)
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("fresh"), profile("busy"), profile("swamped")},
		Reliability:   map[string]float64{"busy": 0.5, "swamped": 0},
		ShiftCounts:   map[string]int{"fresh": 4, "busy": 5, "swamped": 7},
		Weights:       &w,
	}
	out, _, _ := SuggestAssignments(in)
	got := map[string]models.ScoreBreakdown{}
	for _, s := range out[0].Suggestions {
		got[s.StaffID] = s.Breakdown
	}
	if got["fresh"].Reliability != 15 || got["fresh"].Workload != 10 {
		t.Errorf("Expected no-history default 15 and light workload 10, got %+v", got["fresh"])
	}
	if got["busy"].Reliability != 10 || got["busy"].Workload != 5 {
		t.Errorf("Expected 10 reliability and moderate workload 5, got %+v", got["busy"])
	}
	if got["swamped"].Reliability != 0 || got["swamped"].Workload != 0 {
		t.Errorf("Expected zero reliability and heavy workload 0, got %+v", got["swamped"])
	}
}

func TestSuggestAssignments_ScoreFloorWithoutRequiredSkills(t *testing.T) {
	d := day(2026, time.June, 1)
	w := DefaultScoringWeights()
	w.InclusionThreshold = 0
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("worst"), profile("nohistory")},
		Reliability:   map[string]float64{"worst": 0},
		ShiftCounts:   map[string]int{"worst": 20, "nohistory": 20},
		Weights:       &w,
	}
	out, _, _ := SuggestAssignments(in)
	scores := map[string]float64{}
	for _, s := range out[0].Suggestions {
		scores[s.StaffID] = s.Score
		if s.Score < 0 || s.Score > 100 {
			t.Errorf("Score out of bounds: %v", s.Score)
		}
	}
	// skill auto-grant 30 + availability fallback 10 + reliability 0 + workload 0
	if scores["worst"] != 40 {
		t.Errorf("Expected floor of 40, got %v", scores["worst"])
	}
	// the same plus the 15 point no-history reliability default
	if scores["nohistory"] != 55 {
		t.Errorf("Expected 55 without history, got %v", scores["nohistory"])
	}
}

func TestSuggestAssignments_ThresholdIsStrict(t *testing.T) {
	d := day(2026, time.June, 1)
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("edge")},
		// 30 skill + 10 availability + 10 reliability + 0 workload = 50
		Reliability: map[string]float64{"edge": 0.5},
		ShiftCounts: map[string]int{"edge": 9},
	}
	out, _, _ := SuggestAssignments(in)
	if len(out[0].Suggestions) != 0 {
		t.Errorf("Expected a score of exactly 50 to be excluded, got %+v", out[0].Suggestions)
	}
}

func TestSuggestAssignments_EligibilityFilter(t *testing.T) {
	d := day(2026, time.June, 1)
	elsewhere := profile("elsewhere")
	elsewhere.WorkScopes = datatypes.JSONSlice[string]{"r2"}
	left := profile("left")
	gone := d.AddDate(0, 0, -1)
	left.ActiveTo = &gone

	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("off"), profile("booked"), elsewhere, left},
		TimeOff:       []models.TimeOffRequest{{StaffID: "off", StartDate: d, EndDate: d, Status: models.TimeOffApproved}},
		Shifts:        []models.ShiftRecord{shift("b1", "booked", d, 12, 4, models.ShiftConfirmed)},
	}
	out, notes, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected an empty list, not an error: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %+v", notes)
	}
	if len(out) != 1 || len(out[0].Suggestions) != 0 {
		t.Errorf("Expected no eligible candidates, got %+v", out)
	}
	if out[0].Suggestions == nil {
		t.Errorf("Expected an empty, non-nil suggestion list")
	}
}

func TestSuggestAssignments_UnknownSkillSkipsRequirement(t *testing.T) {
	d := day(2026, time.June, 1)
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8, "SOMMELIER"), requirement(d, 12, 4)},
		StaffProfiles: []models.StaffProfile{profile("A")},
	}
	out, notes, err := SuggestAssignments(in)
	if err != nil {
		t.Fatalf("Expected a soft failure, got %v", err)
	}
	if len(out) != 2 || !out[0].Skipped || out[1].Skipped {
		t.Errorf("Expected only the SOMMELIER requirement to be skipped, got %+v", out)
	}
	if len(notes) != 1 || notes[0].Subject != out[0].Requirement.Key {
		t.Errorf("Expected a note for the skipped requirement, got %+v", notes)
	}
	if len(out[1].Suggestions) != 1 {
		t.Errorf("Expected the other requirement to still be scored, got %+v", out[1])
	}
}

func TestSuggestAssignments_TiesBreakByStaffID(t *testing.T) {
	d := day(2026, time.June, 1)
	in := ScoringInput{
		Restaurant:    testRestaurant,
		Date:          d,
		Requirements:  []models.ShiftRequirement{requirement(d, 9, 8)},
		StaffProfiles: []models.StaffProfile{profile("zed"), profile("amy"), profile("kim")},
	}
	out, _, _ := SuggestAssignments(in)
	var ids []string
	for _, s := range out[0].Suggestions {
		ids = append(ids, s.StaffID)
	}
	if !reflect.DeepEqual(ids, []string{"amy", "kim", "zed"}) {
		t.Errorf("Expected staff ID order, got %v", ids)
	}
}

func TestSuggestAssignments_Deterministic(t *testing.T) {
	d := day(2026, time.June, 1)
	in := ScoringInput{
		Restaurant: testRestaurant,
		Date:       d,
		Requirements: []models.ShiftRequirement{
			requirement(d, 14, 6, "GRILL"),
			requirement(d, 9, 8),
		},
		StaffProfiles: []models.StaffProfile{profile("b"), profile("a"), profile("c")},
		Availability: []models.AvailabilityWindow{
			window("a", time.Monday, "08:00", "22:00", models.AvailabilityAvailable),
			window("c", time.Monday, "08:00", "12:00", models.AvailabilityPreferred),
		},
		SkillAssignments: []models.SkillAssignment{{StaffID: "b", Skill: "GRILL", Level: models.ProficiencyAdvanced}},
		Reliability:      map[string]float64{"a": 0.9, "b": 0.6},
		ShiftCounts:      map[string]int{"c": 6},
	}
	first, _, _ := SuggestAssignments(in)
	second, _, _ := SuggestAssignments(in)
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Expected byte-identical output across runs")
	}
	if first[0].Requirement.Start.Hour() != 9 {
		t.Errorf("Expected requirements ordered by start time")
	}
}

func TestSuggestAssignments_RejectsBadWeights(t *testing.T) {
	w := DefaultScoringWeights()
	w.AvailableWindow = 60
	_, _, err := SuggestAssignments(ScoringInput{Restaurant: testRestaurant, Date: day(2026, time.June, 1), Weights: &w})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for weights above 100, got %v", err)
	}
}

func TestBuildRequirements(t *testing.T) {
	d := day(2026, time.June, 1)
	open1 := shift("o1", "", d, 9, 8, models.ShiftScheduled)
	open1.RequiredSkills = datatypes.JSONSlice[string]{"GRILL", "CASH_HANDLING"}
	open2 := shift("o2", "", d, 9, 8, models.ShiftScheduled)
	open2.RequiredSkills = datatypes.JSONSlice[string]{"CASH_HANDLING", "GRILL"}
	open3 := shift("o3", "", d, 7, 4, models.ShiftScheduled)
	cancelled := shift("o4", "", d, 7, 4, models.ShiftCancelled)
	assigned := shift("a1", "A", d, 7, 4, models.ShiftScheduled)
	otherDay := shift("o5", "", d.AddDate(0, 0, 1), 7, 4, models.ShiftScheduled)

	reqs := BuildRequirements(testRestaurant, d, []models.ShiftRecord{open1, open2, open3, cancelled, assigned, otherDay})
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requirements, got %+v", reqs)
	}
	if reqs[0].ShiftIDs[0] != "o3" || reqs[0].Openings != 1 {
		t.Errorf("Expected the 07:00 requirement first, got %+v", reqs[0])
	}
	if reqs[1].Openings != 2 || !reflect.DeepEqual(reqs[1].ShiftIDs, []string{"o1", "o2"}) {
		t.Errorf("Expected o1 and o2 grouped, got %+v", reqs[1])
	}
	if !reflect.DeepEqual(reqs[1].RequiredSkills, []string{"CASH_HANDLING", "GRILL"}) {
		t.Errorf("Expected sorted skills, got %v", reqs[1].RequiredSkills)
	}
}
