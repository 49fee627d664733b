package tracker

import (
	"fmt"
	"time"
)

// DateRange is an inclusive UTC range: From at 00:00:00.000 on the first
// day, To at 23:59:59.999 on the last.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResolvePeriod maps a symbolic period to a concrete range ending today:
// week is the last 7 UTC calendar days inclusive, month the last 30, year
// the last 365.
func ResolvePeriod(period string, now time.Time) (DateRange, error) {
	var days int
	switch period {
	case "week":
		days = 7
	case "month":
		days = 30
	case "year":
		days = 365
	default:
		return DateRange{}, fmt.Errorf("%w: period must be one of: week, month, year", ErrValidation)
	}

	today := dayStart(now)
	return DateRange{
		From: today.AddDate(0, 0, -(days - 1)),
		To:   endOfDay(today),
	}, nil
}

// dayStart truncates an instant to its UTC calendar day.
func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfDay is the last representable millisecond of t's UTC calendar day.
func endOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999*int(time.Millisecond), time.UTC)
}
