package core

import "github.com/shopspring/decimal"

// Summary holds the aggregate totals shown on the dashboard cards. It is
// always computed over the full collection, never the filtered view.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// Summarize totals income and expense amounts and their difference.
// An empty collection yields all zeroes.
func Summarize(ts []Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range ts {
		switch t.Kind {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return Summary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}
