package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	Kind string

	Transaction struct {
		ID          int64           `json:"id"`
		Kind        Kind            `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
	}

	// Draft is a transaction before the backend has assigned an identifier.
	// Create and update bodies carry drafts, never full transactions.
	Draft struct {
		Kind        Kind            `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
	}

	Category struct {
		Name string `json:"category"`
	}

	Settings struct {
		DarkMode bool `json:"darkMode"`
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")

	ErrInvalidSortOrder = errors.New("invalid sort order")
)

func init() {
	// The backend speaks plain JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the calendar-date form used on the wire.
const DateLayout = "2006-01-02"

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (d Draft) Validate() error {
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return ErrInvalidDate
	}
	// Description is optional; empty is allowed.
	return nil
}

func (t Transaction) Validate() error {
	return t.Draft().Validate()
}

// Draft returns the transaction's mutable field set, dropping the identifier.
func (t Transaction) Draft() Draft {
	return Draft{
		Kind:        t.Kind,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date,
		Description: t.Description,
	}
}
