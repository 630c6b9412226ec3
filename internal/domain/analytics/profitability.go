package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

const fallbackNamePrefix = "Seminar "

// AggregateProfitability rolls revenue and expenses up per linked seminar and
// ranks the rows by profit. Transactions without a seminar link are ignored.
func AggregateProfitability(txs []Transaction, lookup []NameRef) []ProjectProfitability {
	names := make(map[string]string, len(lookup))
	for _, ref := range lookup {
		if _, ok := names[ref.ID]; !ok {
			names[ref.ID] = ref.Name
		}
	}

	index := make(map[string]int)
	rows := make([]ProjectProfitability, 0)
	for _, tx := range txs {
		id := tx.SeminarID()
		if id == "" {
			continue
		}

		i, ok := index[id]
		if !ok {
			i = len(rows)
			index[id] = i
			rows = append(rows, ProjectProfitability{
				ProjectID: id,
				Revenue:   decimal.Zero,
				Expenses:  decimal.Zero,
			})
		}

		switch tx.Type {
		case TypeIncome:
			rows[i].Revenue = rows[i].Revenue.Add(tx.Amount)
		case TypeExpense:
			rows[i].Expenses = rows[i].Expenses.Add(tx.Amount)
		}
	}

	for i := range rows {
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].Expenses)
		if name, ok := names[rows[i].ProjectID]; ok && name != "" {
			rows[i].ProjectName = name
		} else {
			rows[i].ProjectName = fallbackName(rows[i].ProjectID)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Profit.GreaterThan(rows[j].Profit)
	})
	return rows
}

func fallbackName(id string) string {
	runes := []rune(id)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return fallbackNamePrefix + string(runes)
}
