package shared

import (
	"fmt"
	"time"
)

// Period keys are calendar months shaped YYYY-MM.
const periodKeyLayout = "2006-01"

// ParsePeriodKey validates and parses a YYYY-MM period key.
func ParsePeriodKey(key string) (time.Time, error) {
	t, err := time.Parse(periodKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return t, nil
}

// PeriodKeyFor returns the period key containing the given date.
func PeriodKeyFor(date time.Time) string {
	return date.Format(periodKeyLayout)
}

// NextPeriodKey returns the key of the following calendar month.
func NextPeriodKey(key string) (string, error) {
	t, err := ParsePeriodKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 1, 0).Format(periodKeyLayout), nil
}

// PeriodRange returns the first day of the period and the first day of
// the next period, usable as a half-open [start, end) date filter.
func PeriodRange(key string) (time.Time, time.Time, error) {
	start, err := ParsePeriodKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
