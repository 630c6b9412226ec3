// Package calendar holds the date arithmetic used by the reporting code:
// bucket truncation, stepping and label formatting per granularity.
//
// All functions work on civil (wall-clock) dates. A time.Time is reduced to
// its year, month and day as read in its own location and re-anchored at
// midnight UTC, so two timestamps describing the same calendar day compare
// equal regardless of the zone they were created in.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

const (
	DayLabelLayout   = "Jan 02"
	MonthLabelLayout = "Jan"
	EventLabelLayout = "Jan 02, 2006"
	DateLayout       = "2006-01-02"
)

func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("invalid granularity %q", value)
	}
}

func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// Civil drops the clock and the zone of t, keeping its wall-clock date.
func Civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func StartOfDay(t time.Time) time.Time {
	return Civil(t)
}

// StartOfWeek returns the Monday of t's ISO week. Sunday belongs to the week
// that started six days earlier.
func StartOfWeek(t time.Time) time.Time {
	day := Civil(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Truncate maps t to the bucket key of the given granularity.
func Truncate(g Granularity, t time.Time) time.Time {
	switch g {
	case Weekly:
		return StartOfWeek(t)
	case Monthly:
		return StartOfMonth(t)
	default:
		return StartOfDay(t)
	}
}

// Add steps a bucket key forward by n units. Keys produced by Truncate are
// always on the first day of a month for Monthly, so AddDate never overflows.
func Add(g Granularity, key time.Time, n int) time.Time {
	switch g {
	case Weekly:
		return key.AddDate(0, 0, 7*n)
	case Monthly:
		return key.AddDate(0, n, 0)
	default:
		return key.AddDate(0, 0, n)
	}
}

// Label formats a bucket key for display on a chart axis.
func Label(g Granularity, key time.Time) string {
	if g == Monthly {
		return key.Format(MonthLabelLayout)
	}
	return key.Format(DayLabelLayout)
}

// Range returns every bucket key from the bucket containing start up to and
// including the last key not after end. It is empty when start is after end.
// Callers bound the size with Count first.
func Range(g Granularity, start, end time.Time) []time.Time {
	start = Civil(start)
	end = Civil(end)
	if start.After(end) {
		return []time.Time{}
	}

	keys := make([]time.Time, 0, Count(g, start, end))
	for key := Truncate(g, start); !key.After(end); key = Add(g, key, 1) {
		keys = append(keys, key)
	}
	return keys
}

// Count returns len(Range(g, start, end)) without building the keys. It is
// exact for any pair of dates in years 1 to 9999.
func Count(g Granularity, start, end time.Time) int {
	start = Civil(start)
	end = Civil(end)
	if start.After(end) {
		return 0
	}

	first := Truncate(g, start)
	switch g {
	case Weekly:
		return daysBetween(first, end)/7 + 1
	case Monthly:
		return (end.Year()-first.Year())*12 + int(end.Month()) - int(first.Month()) + 1
	default:
		return daysBetween(first, end) + 1
	}
}

// daysBetween works on Unix seconds; time.Time.Sub saturates after roughly
// 292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / 86400)
}
