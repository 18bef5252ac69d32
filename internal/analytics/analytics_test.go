package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func exp(amount float64, category core.Category, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{Amount: core.AmountFromFloat(amount), Category: category, Date: d}
}

func fiveEntries() []core.Expense {
	return []core.Expense{
		exp(10, core.Food, "2024-01-01"),
		exp(5, core.Food, "2024-01-02"),
		exp(20, core.Transport, "2024-01-03"),
		exp(1, core.Bills, "2024-01-04"),
		exp(2, core.Other, "2024-01-05"),
	}
}

type pair struct {
	category core.Category
	total    string
}

func pairs(totals []core.CategoryTotal) []pair {
	out := make([]pair, 0, len(totals))
	for _, t := range totals {
		out = append(out, pair{t.Category, t.Total.String()})
	}
	return out
}

func TestTopCategories_StrictlyByValue(t *testing.T) {
	got := TopCategories(fiveEntries(), TopCategoryCount)
	assert.Equal(t, []pair{
		{core.Transport, "20"},
		{core.Food, "15"},
		{core.Other, "2"},
	}, pairs(got))
}

func TestTotalsByCategory_TiesAlphabetical(t *testing.T) {
	list := []core.Expense{
		exp(5, core.Transport, "2024-01-01"),
		exp(5, core.Bills, "2024-01-02"),
		exp(5, core.Food, "2024-01-03"),
		exp(7, core.Other, "2024-01-04"),
	}
	assert.Equal(t, []pair{
		{core.Other, "7"},
		{core.Bills, "5"},
		{core.Food, "5"},
		{core.Transport, "5"},
	}, pairs(TotalsByCategory(list)))
}

func TestTopCategories_FewerThanN(t *testing.T) {
	got := TopCategories([]core.Expense{exp(1, core.Food, "2024-01-01")}, 3)
	assert.Len(t, got, 1)
	assert.Empty(t, TopCategories(nil, 3))
}

func TestTotalsByCategory_ExactDecimals(t *testing.T) {
	list := []core.Expense{
		exp(0.1, core.Food, "2024-01-01"),
		exp(0.2, core.Food, "2024-01-02"),
	}
	got := TotalsByCategory(list)
	require.Len(t, got, 1)
	assert.Equal(t, "0.3", got[0].Total.String())
}

func TestSortedByDate_StableAndNonMutating(t *testing.T) {
	first := exp(1, core.Food, "2024-02-01")
	second := exp(2, core.Bills, "2024-02-01")
	earlier := exp(3, core.Other, "2024-01-15")
	input := []core.Expense{first, second, earlier}

	got := SortedByDate(input)
	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(earlier))
	assert.True(t, got[1].Equal(first))
	assert.True(t, got[2].Equal(second))

	assert.True(t, input[0].Equal(first), "input must not be reordered")
	assert.NotNil(t, SortedByDate(nil))
}

func TestAsTable(t *testing.T) {
	empty := AsTable(nil)
	assert.Equal(t, []string{"date", "category", "amount"}, empty.Columns)
	assert.Equal(t, 0, empty.Len())

	table := AsTable(fiveEntries())
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, "2024-01-03", table.Date[2].String())
	assert.Equal(t, "Transport", table.Category[2])
	assert.Equal(t, "20", table.Amount[2].String())
}

func TestShares(t *testing.T) {
	shares := Shares(fiveEntries())
	require.Len(t, shares, 4)
	assert.Equal(t, core.Transport, shares[0].Category)
	assert.Equal(t, "52.6", shares[0].Percent.String()) // 20 / 38
	assert.Empty(t, Shares(nil))
}

func TestForMonth(t *testing.T) {
	list := []core.Expense{
		exp(1, core.Food, "2024-01-31"),
		exp(2, core.Food, "2024-02-01"),
		exp(3, core.Food, "2024-02-29"),
		exp(4, core.Food, "2024-03-01"),
	}
	got := ForMonth(list, time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Amount.String())
	assert.Equal(t, "3", got[1].Amount.String())
}

func TestSummarize(t *testing.T) {
	s := Summarize(fiveEntries())
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, "38", s.Total.String())
	assert.Len(t, s.ByCategory, 4)
	assert.Len(t, s.TopCategories, TopCategoryCount)
	assert.Len(t, s.OverTime, 5)
}
