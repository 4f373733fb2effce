package models

import (
	"time"

	"gorm.io/datatypes"
)

// StaffProfile represents a staff member and the labor limits that apply to them
type StaffProfile struct {
	ID                    string                      `gorm:"primaryKey;size:64" json:"id"`
	Name                  string                      `gorm:"size:255" json:"name"`
	EmploymentType        EmploymentType              `gorm:"size:20;default:'full_time'" json:"employment_type"`
	HourlyRate            float64                     `gorm:"type:decimal(10,2)" json:"hourly_rate"`
	MaxHoursPerWeek       float64                     `gorm:"not null" json:"max_hours_per_week"`
	MaxHoursPerDay        float64                     `gorm:"not null" json:"max_hours_per_day"`
	MaxConsecutiveDays    int                         `gorm:"not null" json:"max_consecutive_days"`
	MinHoursBetweenShifts float64                     `gorm:"not null;default:0" json:"min_hours_between_shifts"`
	WorkScopes            datatypes.JSONSlice[string] `json:"work_scopes"`
	ActiveFrom            time.Time                   `gorm:"type:date;not null" json:"active_from"`
	ActiveTo              *time.Time                  `gorm:"type:date" json:"active_to,omitempty"`
	CreatedAt             time.Time                   `json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
}

func (StaffProfile) TableName() string { return "staff_profiles" }

// WorksAt reports whether the staff member may be scheduled at restaurant
func (p *StaffProfile) WorksAt(restaurant string) bool {
	for _, scope := range p.WorkScopes {
		if scope == restaurant {
			return true
		}
	}
	return false
}

// ActiveOn reports whether date falls inside the profile's active range
func (p *StaffProfile) ActiveOn(date time.Time) bool {
	d := DateOnly(date)
	if !p.ActiveFrom.IsZero() && d.Before(DateOnly(p.ActiveFrom)) {
		return false
	}
	if p.ActiveTo != nil && d.After(DateOnly(*p.ActiveTo)) {
		return false
	}
	return true
}

// SkillAssignment records one proficiency level per (staff, skill)
type SkillAssignment struct {
	ID                  uint             `gorm:"primaryKey" json:"id,omitempty"`
	StaffID             string           `gorm:"size:64;not null;uniqueIndex:idx_staff_skill" json:"staff_id"`
	Skill               string           `gorm:"size:100;not null;uniqueIndex:idx_staff_skill" json:"skill"`
	Level               ProficiencyLevel `gorm:"size:20;not null" json:"level"`
	CertificationExpiry *time.Time       `gorm:"type:date" json:"certification_expiry,omitempty"`
}

func (SkillAssignment) TableName() string { return "skill_assignments" }

// ValidOn is false once the certification has expired
func (s *SkillAssignment) ValidOn(date time.Time) bool {
	if s.CertificationExpiry == nil {
		return true
	}
	return !DateOnly(date).After(DateOnly(*s.CertificationExpiry))
}

// AvailabilityWindow is a recurring weekly window. StartTime and EndTime use
// "15:04"; an EndTime at or before StartTime wraps past midnight.
type AvailabilityWindow struct {
	ID            uint               `gorm:"primaryKey" json:"id,omitempty"`
	StaffID       string             `gorm:"size:64;not null;index" json:"staff_id"`
	DayOfWeek     time.Weekday       `gorm:"not null" json:"day_of_week"`
	StartTime     string             `gorm:"size:5;not null" json:"start_time"`
	EndTime       string             `gorm:"size:5;not null" json:"end_time"`
	Status        AvailabilityStatus `gorm:"size:20;not null" json:"status"`
	EffectiveFrom *time.Time         `gorm:"type:date" json:"effective_from,omitempty"`
	EffectiveTo   *time.Time         `gorm:"type:date" json:"effective_to,omitempty"`
}

func (AvailabilityWindow) TableName() string { return "availability_windows" }

// EffectiveOn reports whether the window applies on date
func (w *AvailabilityWindow) EffectiveOn(date time.Time) bool {
	d := DateOnly(date)
	if w.DayOfWeek != d.Weekday() {
		return false
	}
	if w.EffectiveFrom != nil && d.Before(DateOnly(*w.EffectiveFrom)) {
		return false
	}
	if w.EffectiveTo != nil && d.After(DateOnly(*w.EffectiveTo)) {
		return false
	}
	return true
}

// TimeOffRequest covers StartDate through EndDate inclusive
type TimeOffRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id,omitempty"`
	StaffID   string        `gorm:"size:64;not null;index" json:"staff_id"`
	StartDate time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time     `gorm:"type:date;not null" json:"end_date"`
	Status    TimeOffStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Reason    string        `gorm:"type:text" json:"reason,omitempty"`
}

func (TimeOffRequest) TableName() string { return "time_off_requests" }

// Covers is true for approved requests whose range includes date
func (r *TimeOffRequest) Covers(date time.Time) bool {
	if r.Status != TimeOffApproved {
		return false
	}
	d := DateOnly(date)
	return !d.Before(DateOnly(r.StartDate)) && !d.After(DateOnly(r.EndDate))
}

// ShiftRecord is a planned or worked shift. A nil StaffID marks an open shift.
type ShiftRecord struct {
	ID             string                      `gorm:"primaryKey;size:64" json:"id"`
	RestaurantID   string                      `gorm:"size:64;not null;index:idx_shift_scope" json:"restaurant_id"`
	StaffID        *string                     `gorm:"size:64;index" json:"staff_id,omitempty"`
	Date           time.Time                   `gorm:"type:date;not null;index:idx_shift_scope" json:"date"`
	StartTime      time.Time                   `gorm:"not null" json:"start_time"`
	EndTime        time.Time                   `gorm:"not null" json:"end_time"`
	Position       string                      `gorm:"size:100" json:"position"`
	RequiredSkills datatypes.JSONSlice[string] `json:"required_skills,omitempty"`
	Status         ShiftStatus                 `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	OvertimeHours  float64                     `gorm:"default:0" json:"overtime_hours"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (ShiftRecord) TableName() string { return "shift_records" }

// Duration is always derived from the start and end timestamps
func (s *ShiftRecord) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Hours returns the shift duration in hours
func (s *ShiftRecord) Hours() float64 {
	return s.Duration().Hours()
}

// AssignedTo returns the staff ID, or "" for an open shift
func (s *ShiftRecord) AssignedTo() string {
	if s.StaffID == nil {
		return ""
	}
	return *s.StaffID
}

// Scope is a consistent snapshot of everything loaded for one evaluation
type Scope struct {
	RestaurantID        string               `json:"restaurant_id"`
	Range               DateRange            `json:"range"`
	StaffProfiles       []StaffProfile       `json:"staff"`
	SkillAssignments    []SkillAssignment    `json:"skills"`
	AvailabilityWindows []AvailabilityWindow `json:"availability"`
	TimeOffRequests     []TimeOffRequest     `json:"time_off"`
	ShiftRecords        []ShiftRecord        `json:"shifts"`
}
