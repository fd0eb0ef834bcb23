package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func resetFlags() {
	typeFlag, amountFlag, categoryFlag, dateFlag, descriptionFlag = "", "", "", "", ""
}

func TestDraftFromFlagsBuildsNewDraft(t *testing.T) {
	resetFlags()
	typeFlag = "expense"
	amountFlag = "12.50"
	categoryFlag = "Groceries"
	dateFlag = "2025-07-01"

	d, err := draftFromFlags(core.Draft{})
	require.NoError(t, err)
	assert.Equal(t, core.Expense, d.Kind)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Groceries", d.Category)
}

func TestDraftFromFlagsOverlaysOnlyGivenFields(t *testing.T) {
	resetFlags()
	amountFlag = "99"

	base := core.Draft{
		Kind: core.Income, Amount: decimal.NewFromInt(10),
		Category: "Salary", Date: "2025-06-30", Description: "june salary",
	}
	d, err := draftFromFlags(base)
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, core.Income, d.Kind)
	assert.Equal(t, "Salary", d.Category)
	assert.Equal(t, "june salary", d.Description)
}

func TestDraftFromFlagsRejectsBadInput(t *testing.T) {
	resetFlags()
	typeFlag = "expense"
	amountFlag = "not-a-number"

	_, err := draftFromFlags(core.Draft{})
	assert.Error(t, err)

	resetFlags()
	typeFlag = "expense"
	amountFlag = "5"
	categoryFlag = "Groceries"
	dateFlag = "July first"
	_, err = draftFromFlags(core.Draft{})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
