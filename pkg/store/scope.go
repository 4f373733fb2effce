package store

import (
	"context"
	"fmt"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"gorm.io/gorm/clause"
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", scheduler.ErrStoreUnavailable, op, err)
}

// LoadScope reads one consistent snapshot of restaurant for dateRange. All
// reads share a single transaction so the analysis sees one point in time.
func (s *Store) LoadScope(ctx context.Context, restaurant string, dateRange models.DateRange) (*models.Scope, error) {
	scope := &models.Scope{RestaurantID: restaurant, Range: dateRange}
	from := models.DateOnly(dateRange.From)
	until := models.DateOnly(dateRange.To).AddDate(0, 0, 1)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, unavailable("begin", tx.Error)
	}
	defer tx.Rollback()

	// work_scopes is a JSON column; portable JSON predicates differ per
	// driver, so staff are narrowed here.
	var everyone []models.StaffProfile
	if err := tx.Order("id").Find(&everyone).Error; err != nil {
		return nil, unavailable("load staff", err)
	}
	ids := make([]string, 0, len(everyone))
	for _, p := range everyone {
		if p.WorksAt(restaurant) {
			scope.StaffProfiles = append(scope.StaffProfiles, p)
			ids = append(ids, p.ID)
		}
	}

	if len(ids) > 0 {
		if err := tx.Where("staff_id IN ?", ids).Order("staff_id, skill").Find(&scope.SkillAssignments).Error; err != nil {
			return nil, unavailable("load skills", err)
		}
		if err := tx.Where("staff_id IN ?", ids).Order("staff_id, day_of_week, start_time, id").Find(&scope.AvailabilityWindows).Error; err != nil {
			return nil, unavailable("load availability", err)
		}
		if err := tx.Where("staff_id IN ? AND end_date >= ? AND start_date < ?", ids, from, until).
			Order("staff_id, start_date, id").Find(&scope.TimeOffRequests).Error; err != nil {
			return nil, unavailable("load time off", err)
		}
	}

	if err := tx.Where("restaurant_id = ? AND date >= ? AND date < ?", restaurant, from, until).
		Order("start_time, id").Find(&scope.ShiftRecords).Error; err != nil {
		return nil, unavailable("load shifts", err)
	}

	s.lg.Printf("Loaded scope %s %s: %d staff, %d shifts", restaurant, dateRange, len(scope.StaffProfiles), len(scope.ShiftRecords))
	return scope, nil
}

// SaveScope upserts every record of scope in one transaction. It backs the
// admin snapshot import.
func (s *Store) SaveScope(ctx context.Context, scope *models.Scope) error {
	if err := scheduler.ValidateScope(scope); err != nil {
		return err
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return unavailable("begin", tx.Error)
	}
	defer tx.Rollback()

	upsert := clause.OnConflict{UpdateAll: true}
	if len(scope.StaffProfiles) > 0 {
		if err := tx.Clauses(upsert).Create(&scope.StaffProfiles).Error; err != nil {
			return unavailable("save staff", err)
		}
	}
	if len(scope.SkillAssignments) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "staff_id"}, {Name: "skill"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "certification_expiry"}),
		}).Create(&scope.SkillAssignments).Error
		if err != nil {
			return unavailable("save skills", err)
		}
	}
	if len(scope.AvailabilityWindows) > 0 {
		if err := tx.Clauses(upsert).Create(&scope.AvailabilityWindows).Error; err != nil {
			return unavailable("save availability", err)
		}
	}
	if len(scope.TimeOffRequests) > 0 {
		if err := tx.Clauses(upsert).Create(&scope.TimeOffRequests).Error; err != nil {
			return unavailable("save time off", err)
		}
	}
	if err := s.upsertShifts(tx, scope.ShiftRecords); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return unavailable("commit", err)
	}
	s.lg.Printf("Saved scope %s: %d staff, %d shifts", scope.RestaurantID, len(scope.StaffProfiles), len(scope.ShiftRecords))
	return nil
}
