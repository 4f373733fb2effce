package scheduler

import (
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"gorm.io/datatypes"
)

const testRestaurant = "r1"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, hour, minute int) time.Time {
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func strPtr(s string) *string { return &s }

func profile(id string) models.StaffProfile {
	return models.StaffProfile{
		ID:                    id,
		Name:                  id,
		EmploymentType:        models.EmploymentFullTime,
		MaxHoursPerWeek:       40,
		MaxHoursPerDay:        10,
		MaxConsecutiveDays:    6,
		MinHoursBetweenShifts: 8,
		WorkScopes:            datatypes.JSONSlice[string]{testRestaurant},
		ActiveFrom:            day(2020, time.January, 1),
	}
}

// shift builds an assigned shift; staff "" leaves it open
func shift(id, staff string, date time.Time, startHour, hours int, status models.ShiftStatus) models.ShiftRecord {
	s := models.ShiftRecord{
		ID:           id,
		RestaurantID: testRestaurant,
		Date:         date,
		StartTime:    at(date, startHour, 0),
		EndTime:      at(date, startHour+hours, 0),
		Position:     "server",
		Status:       status,
	}
	if staff != "" {
		s.StaffID = strPtr(staff)
	}
	return s
}
