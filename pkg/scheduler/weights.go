package scheduler

// ScoringWeights holds the per-band points of the fitness score. The
// defaults keep the historical allocation; none of the values carry
// business meaning beyond that.
type ScoringWeights struct {
	AvailableWindow      float64 `yaml:"available_window" json:"available_window"`
	PreferredWindow      float64 `yaml:"preferred_window" json:"preferred_window"`
	AvailabilityFallback float64 `yaml:"availability_fallback" json:"availability_fallback"`

	AllSkillsAdvanced      float64 `yaml:"all_skills_advanced" json:"all_skills_advanced"`
	HalfSkillsIntermediate float64 `yaml:"half_skills_intermediate" json:"half_skills_intermediate"`
	SkillFallback          float64 `yaml:"skill_fallback" json:"skill_fallback"`

	Reliability        float64 `yaml:"reliability" json:"reliability"`
	DefaultReliability float64 `yaml:"default_reliability" json:"default_reliability"`

	LightWorkload          float64 `yaml:"light_workload" json:"light_workload"`
	LightWorkloadShifts    int     `yaml:"light_workload_shifts" json:"light_workload_shifts"`
	ModerateWorkload       float64 `yaml:"moderate_workload" json:"moderate_workload"`
	ModerateWorkloadShifts int     `yaml:"moderate_workload_shifts" json:"moderate_workload_shifts"`

	InclusionThreshold float64 `yaml:"inclusion_threshold" json:"inclusion_threshold"`
}

// DefaultScoringWeights returns the 40/30/20/10 allocation with a 50 point cut
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		AvailableWindow:      40,
		PreferredWindow:      30,
		AvailabilityFallback: 10,

		AllSkillsAdvanced:      30,
		HalfSkillsIntermediate: 20,
		SkillFallback:          5,

		Reliability:        20,
		DefaultReliability: 0.75,

		LightWorkload:          10,
		LightWorkloadShifts:    5,
		ModerateWorkload:       5,
		ModerateWorkloadShifts: 7,

		InclusionThreshold: 50,
	}
}

// Validate keeps every band non-negative and the best possible total at or
// below 100 so scores stay within [0,100].
func (w ScoringWeights) Validate() error {
	for name, v := range map[string]float64{
		"available_window":         w.AvailableWindow,
		"preferred_window":         w.PreferredWindow,
		"availability_fallback":    w.AvailabilityFallback,
		"all_skills_advanced":      w.AllSkillsAdvanced,
		"half_skills_intermediate": w.HalfSkillsIntermediate,
		"skill_fallback":           w.SkillFallback,
		"reliability":              w.Reliability,
		"light_workload":           w.LightWorkload,
		"moderate_workload":        w.ModerateWorkload,
	} {
		if v < 0 {
			return invalid("weights."+name, "must not be negative, got %v", v)
		}
	}
	if w.DefaultReliability < 0 || w.DefaultReliability > 1 {
		return invalid("weights.default_reliability", "must be within [0,1], got %v", w.DefaultReliability)
	}
	if w.InclusionThreshold < 0 || w.InclusionThreshold > 100 {
		return invalid("weights.inclusion_threshold", "must be within [0,100], got %v", w.InclusionThreshold)
	}
	if w.LightWorkloadShifts < 0 || w.ModerateWorkloadShifts < w.LightWorkloadShifts {
		return invalid("weights.workload_shifts", "light (%d) must not exceed moderate (%d)", w.LightWorkloadShifts, w.ModerateWorkloadShifts)
	}
	best := max(w.AvailableWindow, w.PreferredWindow, w.AvailabilityFallback) +
		max(w.AllSkillsAdvanced, w.HalfSkillsIntermediate, w.SkillFallback) +
		w.Reliability +
		max(w.LightWorkload, w.ModerateWorkload)
	if best > 100 {
		return invalid("weights", "best possible score %v exceeds 100", best)
	}
	return nil
}
