package models

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentCasual   EmploymentType = "casual"
	EmploymentContract EmploymentType = "contract"
)

// ProficiencyLevel is ordered; see Rank
type ProficiencyLevel string

const (
	ProficiencyTrainee      ProficiencyLevel = "trainee"
	ProficiencyBasic        ProficiencyLevel = "basic"
	ProficiencyIntermediate ProficiencyLevel = "intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "advanced"
	ProficiencyExpert       ProficiencyLevel = "expert"
	ProficiencyTrainer      ProficiencyLevel = "trainer"
)

var proficiencyRanks = map[ProficiencyLevel]int{
	ProficiencyTrainee:      1,
	ProficiencyBasic:        2,
	ProficiencyIntermediate: 3,
	ProficiencyAdvanced:     4,
	ProficiencyExpert:       5,
	ProficiencyTrainer:      6,
}

// Rank returns the position on the proficiency scale, 0 for unknown levels
func (p ProficiencyLevel) Rank() int {
	return proficiencyRanks[p]
}

// AtLeast compares two levels on the proficiency scale
func (p ProficiencyLevel) AtLeast(min ProficiencyLevel) bool {
	return p.Rank() > 0 && p.Rank() >= min.Rank()
}

func (p ProficiencyLevel) Valid() bool {
	return p.Rank() > 0
}

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityPreferred   AvailabilityStatus = "preferred"
	AvailabilityLimited     AvailabilityStatus = "limited"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

type TimeOffStatus string

const (
	TimeOffPending   TimeOffStatus = "pending"
	TimeOffApproved  TimeOffStatus = "approved"
	TimeOffDenied    TimeOffStatus = "denied"
	TimeOffCancelled TimeOffStatus = "cancelled"
)

// ShiftStatus follows scheduled → confirmed → in_progress → completed,
// with cancelled and no_show as terminal side exits.
type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftConfirmed  ShiftStatus = "confirmed"
	ShiftInProgress ShiftStatus = "in_progress"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftCancelled  ShiftStatus = "cancelled"
	ShiftNoShow     ShiftStatus = "no_show"
)

var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftScheduled:  {ShiftConfirmed, ShiftCancelled, ShiftNoShow},
	ShiftConfirmed:  {ShiftInProgress, ShiftCancelled, ShiftNoShow},
	ShiftInProgress: {ShiftCompleted, ShiftNoShow},
}

func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftScheduled, ShiftConfirmed, ShiftInProgress, ShiftCompleted, ShiftCancelled, ShiftNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal move from s
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	for _, allowed := range shiftTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions
func (s ShiftStatus) Terminal() bool {
	return len(shiftTransitions[s]) == 0
}

// IsActive covers every status that still represents work
func (s ShiftStatus) IsActive() bool {
	switch s {
	case ShiftScheduled, ShiftConfirmed, ShiftInProgress, ShiftCompleted:
		return true
	}
	return false
}

// IsBooked is the subset that can still collide with another booking
func (s ShiftStatus) IsBooked() bool {
	return s == ShiftScheduled || s == ShiftConfirmed
}

type ConflictType string

const (
	ConflictDoubleBooking    ConflictType = "double_booking"
	ConflictInsufficientRest ConflictType = "insufficient_rest"
	ConflictTimeOff          ConflictType = "time_off_conflict"
	ConflictSkillMismatch    ConflictType = "skill_mismatch"
)

type ViolationCategory string

const (
	ViolationOvertime    ViolationCategory = "overtime"
	ViolationMaxHours    ViolationCategory = "max_hours"
	ViolationRestPeriods ViolationCategory = "rest_periods"
)

type NoteKind string

const (
	NoteIncompleteData NoteKind = "incomplete_data"
)
