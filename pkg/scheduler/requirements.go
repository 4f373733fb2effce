package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

// RequirementKey identifies open shifts sharing position, time and skill set
func RequirementKey(position string, start, end time.Time, skills []string) string {
	return strings.Join([]string{
		position,
		start.Format(time.RFC3339),
		end.Format(time.RFC3339),
		strings.Join(normalizeSkills(skills), ","),
	}, "|")
}

// BuildRequirements groups the open, still bookable shifts of restaurant on
// date into requirements ordered by start time and key.
func BuildRequirements(restaurant string, date time.Time, shifts []models.ShiftRecord) []models.ShiftRequirement {
	day := models.DateOnly(date)
	byKey := make(map[string]*models.ShiftRequirement)
	for i := range shifts {
		s := &shifts[i]
		if s.RestaurantID != restaurant || s.AssignedTo() != "" || !s.Status.IsBooked() || !models.DateOnly(s.Date).Equal(day) {
			continue
		}
		skills := normalizeSkills(s.RequiredSkills)
		key := RequirementKey(s.Position, s.StartTime, s.EndTime, skills)
		req, ok := byKey[key]
		if !ok {
			req = &models.ShiftRequirement{
				Key:            key,
				RestaurantID:   restaurant,
				Date:           day,
				Position:       s.Position,
				Start:          s.StartTime,
				End:            s.EndTime,
				RequiredSkills: skills,
			}
			byKey[key] = req
		}
		req.ShiftIDs = append(req.ShiftIDs, s.ID)
		req.Openings++
	}

	out := make([]models.ShiftRequirement, 0, len(byKey))
	for _, req := range byKey {
		sort.Strings(req.ShiftIDs)
		out = append(out, *req)
	}
	sortRequirements(out)
	return out
}

func sortRequirements(reqs []models.ShiftRequirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].Start.Equal(reqs[j].Start) {
			return reqs[i].Start.Before(reqs[j].Start)
		}
		return reqs[i].Key < reqs[j].Key
	})
}

func normalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
