package analytics

import (
	"fmt"
	"strings"
	"time"

	"opsboard/internal/calendar"
)

func ParsePeriod(value string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return PeriodAll, nil
	case "ytd", "year":
		return PeriodYearToDate, nil
	case "mtd", "month":
		return PeriodMonthToDate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
}

// PeriodStart returns the inclusive lower bound of p relative to now. The
// second result is false for PeriodAll, which has no lower bound.
func PeriodStart(p Period, now time.Time) (time.Time, bool) {
	switch p {
	case PeriodYearToDate:
		return calendar.StartOfYear(now), true
	case PeriodMonthToDate:
		return calendar.StartOfMonth(now), true
	default:
		return time.Time{}, false
	}
}

// FilterByPeriod keeps the transactions dated on or after the start of p.
// PeriodAll returns txs itself. Relative order is preserved and nothing is
// mutated.
func FilterByPeriod(txs []Transaction, p Period, now time.Time) []Transaction {
	cutoff, bounded := PeriodStart(p, now)
	if !bounded {
		return txs
	}

	result := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !calendar.Civil(tx.Date).Before(cutoff) {
			result = append(result, tx)
		}
	}
	return result
}

// FilterByRange keeps the transactions whose calendar date lies in
// [from, to], both inclusive.
func FilterByRange(txs []Transaction, from, to time.Time) []Transaction {
	from = calendar.Civil(from)
	to = calendar.Civil(to)

	result := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		day := calendar.Civil(tx.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		result = append(result, tx)
	}
	return result
}
