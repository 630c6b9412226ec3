package analytics

import (
	"sort"
	"time"

	"opsboard/internal/calendar"

	"github.com/shopspring/decimal"
)

type bucketTotals struct {
	revenue  decimal.Decimal
	expenses decimal.Decimal
}

func (b *bucketTotals) add(tx Transaction) {
	switch tx.Type {
	case TypeIncome:
		b.revenue = b.revenue.Add(tx.Amount)
	case TypeExpense:
		b.expenses = b.expenses.Add(tx.Amount)
	}
}

func (b bucketTotals) point(label string, date time.Time) TimeSeriesPoint {
	return TimeSeriesPoint{
		Label:              label,
		Date:               date,
		CumulativeRevenue:  b.revenue,
		CumulativeExpenses: b.expenses,
		Profit:             b.revenue.Sub(b.expenses),
	}
}

// BuildCumulativeSeries emits one point per transaction in date order with
// the running totals at that event. Transactions on the same date keep their
// input order and share a label.
func BuildCumulativeSeries(txs []Transaction) []TimeSeriesPoint {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return calendar.Civil(ordered[i].Date).Before(calendar.Civil(ordered[j].Date))
	})

	running := bucketTotals{revenue: decimal.Zero, expenses: decimal.Zero}
	points := make([]TimeSeriesPoint, 0, len(ordered))
	for _, tx := range ordered {
		running.add(tx)
		day := calendar.Civil(tx.Date)
		points = append(points, running.point(day.Format(calendar.EventLabelLayout), day))
	}
	return points
}

// BuildContinuousSeries emits one point per calendar unit between start and
// end, carrying cumulative totals across units without activity.
//
// Every transaction is bucketed, but only buckets on the generated axis are
// summed. Callers must scope txs to [start, end] first; anything outside is
// dropped without notice.
func BuildContinuousSeries(txs []Transaction, g calendar.Granularity, start, end time.Time) []TimeSeriesPoint {
	buckets := make(map[time.Time]*bucketTotals)
	for _, tx := range txs {
		key := calendar.Truncate(g, tx.Date)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &bucketTotals{revenue: decimal.Zero, expenses: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.add(tx)
	}

	axis := calendar.Range(g, start, end)
	running := bucketTotals{revenue: decimal.Zero, expenses: decimal.Zero}
	points := make([]TimeSeriesPoint, 0, len(axis))
	for _, key := range axis {
		if bucket, ok := buckets[key]; ok {
			running.revenue = running.revenue.Add(bucket.revenue)
			running.expenses = running.expenses.Add(bucket.expenses)
		}
		points = append(points, running.point(calendar.Label(g, key), key))
	}
	return points
}
