package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AggregateByCategory sums amounts per category, largest first. Categories
// with equal totals keep the order in which they were first seen.
func AggregateByCategory(txs []Transaction) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)

	for _, tx := range txs {
		name := tx.CategoryName()
		i, ok := index[name]
		if !ok {
			i = len(totals)
			index[name] = i
			totals = append(totals, CategoryTotal{Category: name, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(tx.Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Amount.GreaterThan(totals[j].Amount)
	})
	return totals
}

// ClassifyExpenses splits expenses into seminar-linked and operational ones
// and aggregates each side by category. Income is ignored.
func ClassifyExpenses(txs []Transaction) ExpenseBreakdown {
	linked := make([]Transaction, 0)
	operational := make([]Transaction, 0)

	for _, tx := range txs {
		if tx.Type != TypeExpense {
			continue
		}
		if tx.SeminarID() != "" {
			linked = append(linked, tx)
		} else {
			operational = append(operational, tx)
		}
	}

	return ExpenseBreakdown{
		ProjectLinked: AggregateByCategory(linked),
		Operational:   AggregateByCategory(operational),
	}
}

func OfType(txs []Transaction, kind TransactionType) []Transaction {
	result := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == kind {
			result = append(result, tx)
		}
	}
	return result
}

func Summarize(txs []Transaction) Summary {
	summary := Summary{Revenue: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case TypeIncome:
			summary.Revenue = summary.Revenue.Add(tx.Amount)
		case TypeExpense:
			summary.Expenses = summary.Expenses.Add(tx.Amount)
		}
		summary.Count++
	}
	summary.Profit = summary.Revenue.Sub(summary.Expenses)
	return summary
}

// Validate reports the first transaction that breaks the input contract of
// the reports: a known type and a non-negative amount.
func Validate(txs []Transaction) error {
	for i, tx := range txs {
		if tx.Type != TypeIncome && tx.Type != TypeExpense {
			return fmt.Errorf("%w: transaction %d has type %q", ErrInvalidType, i, tx.Type)
		}
		if tx.Amount.IsNegative() {
			return fmt.Errorf("%w: transaction %d has amount %s", ErrInvalidAmount, i, tx.Amount)
		}
	}
	return nil
}
