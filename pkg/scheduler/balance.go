package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

// CalculateBalance computes per-staff workload totals for restaurant over
// dateRange and scores each against the restaurant mean of average hours
// per day. Output is ordered by balance score descending.
func CalculateBalance(restaurant string, dateRange models.DateRange, shifts []models.ShiftRecord, profiles []models.StaffProfile) ([]models.StaffBalance, error) {
	if restaurant == "" {
		return nil, invalid("restaurant", "is required")
	}
	if !dateRange.Valid() {
		return nil, invalid("date_range", "must have from <= to")
	}
	if err := validateProfiles(profiles); err != nil {
		return nil, err
	}
	if err := validateShifts(shifts); err != nil {
		return nil, err
	}

	byStaff := make(map[string][]*models.ShiftRecord)
	for i := range shifts {
		s := &shifts[i]
		if s.RestaurantID != restaurant || s.AssignedTo() == "" || !s.Status.IsActive() || !dateRange.Contains(s.Date) {
			continue
		}
		byStaff[s.AssignedTo()] = append(byStaff[s.AssignedTo()], s)
	}

	balances := []models.StaffBalance{}
	for i := range profiles {
		p := &profiles[i]
		if !p.WorksAt(restaurant) {
			continue
		}
		b := models.StaffBalance{StaffID: p.ID}
		days := make(map[time.Time]bool)
		for _, s := range byStaff[p.ID] {
			b.TotalHours += s.Hours()
			b.OvertimeHours += s.OvertimeHours
			b.ShiftCount++
			days[models.DateOnly(s.Date)] = true
		}
		b.DaysWorked = len(days)
		if b.DaysWorked > 0 {
			b.AverageHoursPerDay = b.TotalHours / float64(b.DaysWorked)
		}
		balances = append(balances, b)
	}

	var sum float64
	var working int
	for _, b := range balances {
		if b.ShiftCount > 0 {
			sum += b.AverageHoursPerDay
			working++
		}
	}
	var mean float64
	if working > 0 {
		mean = sum / float64(working)
	}

	for i := range balances {
		b := &balances[i]
		if mean == 0 {
			b.BalanceScore = 0
			continue
		}
		b.Deviation = b.AverageHoursPerDay - mean
		b.BalanceScore = clamp(100-math.Abs(b.Deviation)/mean*100, 0, 100)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		if balances[i].BalanceScore != balances[j].BalanceScore {
			return balances[i].BalanceScore > balances[j].BalanceScore
		}
		return balances[i].StaffID < balances[j].StaffID
	})
	return balances, nil
}

// FairnessScore returns a percentage (0-100) representing how evenly hours
// are spread across the roster. 100 means the standard deviation is 0.
func FairnessScore(balances []models.StaffBalance) float64 {
	if len(balances) == 0 {
		return 100.0
	}

	var sum float64
	for _, b := range balances {
		sum += b.TotalHours
	}
	if sum == 0 {
		return 100.0 // Everyone having 0 hours is perfectly fair
	}

	mean := sum / float64(len(balances))

	var varianceSum float64
	for _, b := range balances {
		diff := b.TotalHours - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(balances)))

	// 100% means SD is 0. 0% means SD is >= mean.
	return clamp((1.0-(stdDev/mean))*100.0, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
