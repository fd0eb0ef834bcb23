package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Income.IsZero() || !s.Expenses.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected all zero, got %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	if !s.Income.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income: expected 100, got %s", s.Income)
	}
	if !s.Expenses.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expenses: expected 40, got %s", s.Expenses)
	}
	if !s.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance: expected 60, got %s", s.Balance)
	}
}

func TestSummarizeBalanceIdentity(t *testing.T) {
	collections := [][]Transaction{
		nil,
		sample(),
		{
			{ID: 1, Kind: Expense, Amount: decimal.RequireFromString("19.99")},
			{ID: 2, Kind: Expense, Amount: decimal.RequireFromString("0.01")},
			{ID: 3, Kind: Income, Amount: decimal.RequireFromString("12.50")},
		},
	}
	for i, ts := range collections {
		s := Summarize(ts)
		if !s.Income.Sub(s.Expenses).Equal(s.Balance) {
			t.Fatalf("collection %d: income-expenses != balance: %+v", i, s)
		}
	}
}

func TestSummarizeIgnoresUnknownKind(t *testing.T) {
	ts := []Transaction{
		{ID: 1, Kind: Income, Amount: decimal.NewFromInt(10)},
		{ID: 2, Kind: Kind("transfer"), Amount: decimal.NewFromInt(99)},
	}
	s := Summarize(ts)
	if !s.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unknown kinds must not count, got %+v", s)
	}
}
