package models

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", raw, err)
	}
	return DateOnly(t), nil
}

// DateRange is inclusive on both ends
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TrailingWindow returns the days-long range ending at (and including) end
func TrailingWindow(end time.Time, days int) DateRange {
	e := DateOnly(end)
	return DateRange{From: e.AddDate(0, 0, -(days - 1)), To: e}
}

func (r DateRange) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(r.From)) && !d.After(DateOnly(r.To))
}

func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !DateOnly(r.To).Before(DateOnly(r.From))
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}
