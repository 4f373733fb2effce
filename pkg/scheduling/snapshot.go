package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

// ReliabilityWindowDays is the trailing window of the reliability ratio
const ReliabilityWindowDays = 30

// Snapshot is the file and request body format for offline analysis.
// Reliability overrides the ratio derived from shift history.
type Snapshot struct {
	models.Scope
	Reliability map[string]float64 `json:"reliability,omitempty"`
}

// DecodeSnapshot reads a JSON snapshot
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SnapshotStore serves LoadScope and GetReliability from memory. It backs
// the offline CLI and the stateless analyze endpoint.
type SnapshotStore struct {
	snap *Snapshot
}

func NewSnapshotStore(snap *Snapshot) *SnapshotStore {
	return &SnapshotStore{snap: snap}
}

// LoadScope filters the snapshot to restaurant and dateRange the same way
// the database store does.
func (s *SnapshotStore) LoadScope(_ context.Context, restaurant string, dateRange models.DateRange) (*models.Scope, error) {
	scope := &models.Scope{RestaurantID: restaurant, Range: dateRange}
	staff := make(map[string]bool)
	for _, p := range s.snap.StaffProfiles {
		if p.WorksAt(restaurant) {
			scope.StaffProfiles = append(scope.StaffProfiles, p)
			staff[p.ID] = true
		}
	}
	for _, sk := range s.snap.SkillAssignments {
		if staff[sk.StaffID] {
			scope.SkillAssignments = append(scope.SkillAssignments, sk)
		}
	}
	for _, w := range s.snap.AvailabilityWindows {
		if staff[w.StaffID] {
			scope.AvailabilityWindows = append(scope.AvailabilityWindows, w)
		}
	}
	for _, r := range s.snap.TimeOffRequests {
		if staff[r.StaffID] && !r.EndDate.Before(dateRange.From) && !r.StartDate.After(dateRange.To) {
			scope.TimeOffRequests = append(scope.TimeOffRequests, r)
		}
	}
	for _, sh := range s.snap.ShiftRecords {
		if sh.RestaurantID == restaurant && dateRange.Contains(sh.Date) {
			scope.ShiftRecords = append(scope.ShiftRecords, sh)
		}
	}
	return scope, nil
}

func (s *SnapshotStore) GetReliability(_ context.Context, staffID string, asOf time.Time) (float64, error) {
	if ratio, ok := s.snap.Reliability[staffID]; ok {
		return ratio, nil
	}
	return ReliabilityFromShifts(s.snap.ShiftRecords, staffID, asOf)
}

// ReliabilityFromShifts is completed / (completed + no_show) over the 30
// days ending at asOf. Other statuses do not count either way.
func ReliabilityFromShifts(shifts []models.ShiftRecord, staffID string, asOf time.Time) (float64, error) {
	window := models.TrailingWindow(asOf, ReliabilityWindowDays)
	var completed, noShow int
	for i := range shifts {
		sh := &shifts[i]
		if sh.AssignedTo() != staffID || !window.Contains(sh.Date) {
			continue
		}
		switch sh.Status {
		case models.ShiftCompleted:
			completed++
		case models.ShiftNoShow:
			noShow++
		}
	}
	if completed+noShow == 0 {
		return 0, ErrNoHistory
	}
	return float64(completed) / float64(completed+noShow), nil
}
