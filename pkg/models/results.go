package models

import "time"

// Conflict is one scheduling problem found on a shift
type Conflict struct {
	Type           ConflictType `json:"type"`
	StaffID        string       `json:"staff_id"`
	ShiftID        string       `json:"shift_id"`
	RelatedShiftID string       `json:"related_shift_id,omitempty"`
	ShiftStart     time.Time    `json:"shift_start"`
	Description    string       `json:"description"`
	Severity       int          `json:"severity"`
}

// ComplianceViolation is produced by a compliance run and never mutated
type ComplianceViolation struct {
	StaffID       string            `json:"staff_id"`
	RestaurantID  string            `json:"restaurant_id"`
	WindowStart   time.Time         `json:"window_start"`
	WindowEnd     time.Time         `json:"window_end"`
	Category      ViolationCategory `json:"category"`
	ActualValue   float64           `json:"actual_value"`
	RequiredValue float64           `json:"required_value"`
	Severity      int               `json:"severity"`
	Description   string            `json:"description"`
}

// StaffBalance summarises one staff member's workload for a date range
type StaffBalance struct {
	StaffID            string  `json:"staff_id"`
	TotalHours         float64 `json:"total_hours"`
	ShiftCount         int     `json:"shift_count"`
	DaysWorked         int     `json:"days_worked"`
	AverageHoursPerDay float64 `json:"average_hours_per_day"`
	OvertimeHours      float64 `json:"overtime_hours"`
	Deviation          float64 `json:"deviation"`
	BalanceScore       float64 `json:"balance_score"`
}

// ShiftRequirement groups open shifts that share position, time and skills
type ShiftRequirement struct {
	Key            string    `json:"key"`
	RestaurantID   string    `json:"restaurant_id"`
	Date           time.Time `json:"date"`
	Position       string    `json:"position"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	RequiredSkills []string  `json:"required_skills,omitempty"`
	ShiftIDs       []string  `json:"shift_ids"`
	Openings       int       `json:"openings"`
}

// ScoreBreakdown holds the already weighted points of each scoring band
type ScoreBreakdown struct {
	Availability float64 `json:"availability"`
	Skill        float64 `json:"skill"`
	Reliability  float64 `json:"reliability"`
	Workload     float64 `json:"workload"`
}

func (b ScoreBreakdown) Total() float64 {
	return b.Availability + b.Skill + b.Reliability + b.Workload
}

// AssignmentSuggestion is advisory output, it is never persisted
type AssignmentSuggestion struct {
	RequirementKey string         `json:"requirement_key"`
	StaffID        string         `json:"staff_id"`
	Score          float64        `json:"score"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Rationale      string         `json:"rationale"`
}

// Note carries a soft failure that did not abort the batch
type Note struct {
	Kind    NoteKind `json:"kind"`
	Subject string   `json:"subject"`
	Message string   `json:"message"`
}
