package analytics

import (
	"strings"
	"time"

	"opsboard/internal/calendar"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

const (
	// MetadataSeminarKey links a transaction to a seminar (project).
	MetadataSeminarKey = "seminar_id"

	UncategorizedCategory = "Uncategorized"
)

// Transaction is the read-only view the reports are computed from. Amount is
// a magnitude already converted to the reporting currency (AED); the sign is
// carried by Type.
type Transaction struct {
	Date     time.Time
	Type     TransactionType
	Amount   decimal.Decimal
	Category string
	Metadata map[string]string
}

// SeminarID returns the linked seminar id, or "" when the transaction is not
// attributed to one.
func (t Transaction) SeminarID() string {
	if t.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(t.Metadata[MetadataSeminarKey])
}

func (t Transaction) CategoryName() string {
	name := strings.TrimSpace(t.Category)
	if name == "" {
		return UncategorizedCategory
	}
	return name
}

type Period string

const (
	PeriodAll         Period = "all"
	PeriodYearToDate  Period = "ytd"
	PeriodMonthToDate Period = "mtd"
)

type TimeSeriesPoint struct {
	Label              string
	Date               time.Time
	CumulativeRevenue  decimal.Decimal
	CumulativeExpenses decimal.Decimal
	Profit             decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

type ExpenseBreakdown struct {
	ProjectLinked []CategoryTotal
	Operational   []CategoryTotal
}

type ProjectProfitability struct {
	ProjectID   string
	ProjectName string
	Revenue     decimal.Decimal
	Expenses    decimal.Decimal
	Profit      decimal.Decimal
}

// NameRef is an {id, name} pair from the seminar registry.
type NameRef struct {
	ID   string
	Name string
}

type Summary struct {
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal
	Count    int
}

type TimeseriesFilter struct {
	Granularity calendar.Granularity
	From        time.Time
	To          time.Time
}

type DashboardFilter struct {
	Period      Period
	Granularity calendar.Granularity
}

type Dashboard struct {
	Period               Period
	Granularity          calendar.Granularity
	From                 time.Time
	To                   time.Time
	Summary              Summary
	ExpenseBreakdown     ExpenseBreakdown
	RevenueByCategory    []CategoryTotal
	Series               []TimeSeriesPoint
	SeminarProfitability []ProjectProfitability
}
