package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func draft() Draft {
	return Draft{
		Kind:        Expense,
		Amount:      decimal.NewFromInt(40),
		Category:    "Groceries",
		Date:        "2025-06-01",
		Description: "weekly shop",
	}
}

func TestKindValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if err := Kind("transfer").Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	if err := draft().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"bad kind", func(d *Draft) { d.Kind = "savings" }, ErrInvalidKind},
		{"zero amount", func(d *Draft) { d.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(d *Draft) { d.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"empty category", func(d *Draft) { d.Category = "  " }, ErrEmptyCategory},
		{"bad date", func(d *Draft) { d.Date = "01/06/2025" }, ErrInvalidDate},
		{"empty date", func(d *Draft) { d.Date = "" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := draft()
			tc.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDraftAllowsEmptyDescription(t *testing.T) {
	d := draft()
	d.Description = ""
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestTransactionDraftRoundTrip(t *testing.T) {
	tx := Transaction{
		ID:          7,
		Kind:        Income,
		Amount:      decimal.NewFromInt(100),
		Category:    "Salary",
		Date:        "2025-06-30",
		Description: "june",
	}
	d := tx.Draft()
	if d.Kind != tx.Kind || !d.Amount.Equal(tx.Amount) || d.Category != tx.Category ||
		d.Date != tx.Date || d.Description != tx.Description {
		t.Fatalf("draft lost fields: %+v", d)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}
