package store

import (
	"context"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
)

// GetReliability is completed / (completed + no_show) over the trailing
// window ending at asOf. Staff with neither get scheduling.ErrNoHistory.
func (s *Store) GetReliability(ctx context.Context, staffID string, asOf time.Time) (float64, error) {
	window := models.TrailingWindow(asOf, scheduling.ReliabilityWindowDays)

	var rows []struct {
		Status models.ShiftStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.ShiftRecord{}).
		Select("status, COUNT(*) AS count").
		Where("staff_id = ? AND date >= ? AND date < ? AND status IN ?",
			staffID, window.From, window.To.AddDate(0, 0, 1),
			[]models.ShiftStatus{models.ShiftCompleted, models.ShiftNoShow}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, unavailable("reliability", err)
	}

	var completed, noShow int64
	for _, r := range rows {
		switch r.Status {
		case models.ShiftCompleted:
			completed = r.Count
		case models.ShiftNoShow:
			noShow = r.Count
		}
	}
	if completed+noShow == 0 {
		return 0, scheduling.ErrNoHistory
	}
	return float64(completed) / float64(completed+noShow), nil
}
