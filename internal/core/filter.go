package core

import (
	"slices"
	"strings"
)

const (
	SortIgnore     SortOrder = "ignore"
	SortAscAmount  SortOrder = "ascAmount"
	SortDescAmount SortOrder = "descAmount"
)

type (
	// SortOrder selects how the base sequence is ordered. Anything other
	// than SortIgnore is delegated to the backend, not computed here.
	SortOrder string

	// Filter is the transient per-render selection. The zero value keeps
	// everything: empty Kind and Category mean "ignore", empty Search
	// applies no text filtering.
	Filter struct {
		Search   string
		Kind     Kind
		Category string
	}
)

func (o SortOrder) Validate() error {
	switch o {
	case SortIgnore, SortAscAmount, SortDescAmount:
		return nil
	default:
		return ErrInvalidSortOrder
	}
}

// Active reports whether any filter criterion is set.
func (f Filter) Active() bool {
	return f.Search != "" || f.Kind != "" || f.Category != ""
}

// Apply derives the visible sequence from base. It never mutates base and
// applying the same filter twice yields the same result.
func (f Filter) Apply(base []Transaction) []Transaction {
	out := make([]Transaction, 0, len(base))
	for _, t := range base {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f Filter) matches(t Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(string(t.Kind)), q) ||
		strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	// Date and amount match on the raw query, not the lowered one.
	return strings.Contains(t.Date, f.Search) ||
		strings.Contains(t.Amount.String(), f.Search)
}

// SortByID returns a copy of ts ordered by identifier ascending, the base
// order whenever no backend sort is active.
func SortByID(ts []Transaction) []Transaction {
	out := slices.Clone(ts)
	slices.SortFunc(out, func(a, b Transaction) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out
}
