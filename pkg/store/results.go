package store

import (
	"context"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/google/uuid"
)

// ViolationRecord is an append-only compliance finding. Acknowledgement is
// recorded elsewhere as a new row; these rows are never updated.
type ViolationRecord struct {
	ID            string                   `gorm:"primaryKey;size:36" json:"id"`
	EvaluatedAt   time.Time                `gorm:"not null;index" json:"evaluated_at"`
	StaffID       string                   `gorm:"size:64;not null;index" json:"staff_id"`
	RestaurantID  string                   `gorm:"size:64;not null;index" json:"restaurant_id"`
	WindowStart   time.Time                `gorm:"type:date;not null" json:"window_start"`
	WindowEnd     time.Time                `gorm:"type:date;not null" json:"window_end"`
	Category      models.ViolationCategory `gorm:"size:30;not null" json:"category"`
	ActualValue   float64                  `json:"actual_value"`
	RequiredValue float64                  `json:"required_value"`
	Severity      int                      `json:"severity"`
	Description   string                   `gorm:"type:text" json:"description"`
}

func (ViolationRecord) TableName() string { return "compliance_violations" }

// ConflictRecord is an append-only conflict finding
type ConflictRecord struct {
	ID             string              `gorm:"primaryKey;size:36" json:"id"`
	EvaluatedAt    time.Time           `gorm:"not null;index" json:"evaluated_at"`
	RestaurantID   string              `gorm:"size:64;not null;index" json:"restaurant_id"`
	Date           time.Time           `gorm:"type:date;not null" json:"date"`
	Type           models.ConflictType `gorm:"size:30;not null" json:"type"`
	StaffID        string              `gorm:"size:64;index" json:"staff_id"`
	ShiftID        string              `gorm:"size:64" json:"shift_id"`
	RelatedShiftID string              `gorm:"size:64" json:"related_shift_id,omitempty"`
	Severity       int                 `json:"severity"`
	Description    string              `gorm:"type:text" json:"description"`
}

func (ConflictRecord) TableName() string { return "schedule_conflicts" }

// AppendViolations inserts one new row per violation
func (s *Store) AppendViolations(ctx context.Context, evaluatedAt time.Time, violations []models.ComplianceViolation) ([]ViolationRecord, error) {
	if len(violations) == 0 {
		return nil, nil
	}
	rows := make([]ViolationRecord, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, ViolationRecord{
			ID:            uuid.NewString(),
			EvaluatedAt:   evaluatedAt.UTC(),
			StaffID:       v.StaffID,
			RestaurantID:  v.RestaurantID,
			WindowStart:   v.WindowStart,
			WindowEnd:     v.WindowEnd,
			Category:      v.Category,
			ActualValue:   v.ActualValue,
			RequiredValue: v.RequiredValue,
			Severity:      v.Severity,
			Description:   v.Description,
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, unavailable("append violations", err)
	}
	s.lg.Printf("Appended %d violations", len(rows))
	return rows, nil
}

// AppendConflicts inserts one new row per conflict found for restaurant on date
func (s *Store) AppendConflicts(ctx context.Context, restaurant string, date, evaluatedAt time.Time, conflicts []models.Conflict) ([]ConflictRecord, error) {
	if len(conflicts) == 0 {
		return nil, nil
	}
	rows := make([]ConflictRecord, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, ConflictRecord{
			ID:             uuid.NewString(),
			EvaluatedAt:    evaluatedAt.UTC(),
			RestaurantID:   restaurant,
			Date:           models.DateOnly(date),
			Type:           c.Type,
			StaffID:        c.StaffID,
			ShiftID:        c.ShiftID,
			RelatedShiftID: c.RelatedShiftID,
			Severity:       c.Severity,
			Description:    c.Description,
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, unavailable("append conflicts", err)
	}
	s.lg.Printf("Appended %d conflicts for %s", len(rows), restaurant)
	return rows, nil
}

// ListViolations returns persisted violations for restaurant, newest first
func (s *Store) ListViolations(ctx context.Context, restaurant string, limit int) ([]ViolationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []ViolationRecord
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurant).
		Order("evaluated_at desc, severity desc, id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, unavailable("list violations", err)
	}
	return rows, nil
}
