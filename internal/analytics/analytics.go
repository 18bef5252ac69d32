// Package analytics derives read-only views from an in-memory expense list.
// Every function is pure: the input slice is never modified and no I/O is
// performed, so results can be computed concurrently.
package analytics

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// TopCategoryCount is how many categories the dashboard ranks.
const TopCategoryCount = 3

var hundred = decimal.NewFromInt(100)

// Total sums every amount in expenses.
func Total(expenses []core.Expense) core.Amount {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount.Decimal)
	}
	return core.NewAmount(sum)
}

// TotalsByCategory groups by category and sums amounts. The result is sorted
// by descending total; equal totals are ordered by category name.
func TotalsByCategory(expenses []core.Expense) []core.CategoryTotal {
	sums := make(map[core.Category]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount.Decimal)
	}

	out := make([]core.CategoryTotal, 0, len(sums))
	for c, sum := range sums {
		out = append(out, core.CategoryTotal{Category: c, Total: core.NewAmount(sum)})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total.Decimal); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategories returns at most n entries of TotalsByCategory.
func TopCategories(expenses []core.Expense, n int) []core.CategoryTotal {
	totals := TotalsByCategory(expenses)
	if n < 0 {
		n = 0
	}
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Shares returns each category's percentage of the overall total, rounded to
// one decimal place, in TotalsByCategory order.
func Shares(expenses []core.Expense) []core.CategoryShare {
	totals := TotalsByCategory(expenses)
	grand := Total(expenses).Decimal

	out := make([]core.CategoryShare, 0, len(totals))
	for _, t := range totals {
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = t.Total.Mul(hundred).Div(grand).Round(1)
		}
		out = append(out, core.CategoryShare{CategoryTotal: t, Percent: pct})
	}
	return out
}

// SortedByDate returns a copy ordered by ascending date. Entries on the same
// date keep their original relative order.
func SortedByDate(expenses []core.Expense) []core.Expense {
	out := append([]core.Expense(nil), expenses...)
	if out == nil {
		out = []core.Expense{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// AsTable lays expenses out column by column. The column list is always
// date, category, amount, even for an empty input.
func AsTable(expenses []core.Expense) core.Table {
	t := core.Table{
		Columns:  []string{core.ColumnDate, core.ColumnCategory, core.ColumnAmount},
		Date:     make([]core.Date, 0, len(expenses)),
		Category: make([]string, 0, len(expenses)),
		Amount:   make([]core.Amount, 0, len(expenses)),
	}
	for _, e := range expenses {
		t.Date = append(t.Date, e.Date)
		t.Category = append(t.Category, string(e.Category))
		t.Amount = append(t.Amount, e.Amount)
	}
	return t
}

// ForMonth keeps the expenses dated within the calendar month containing t.
func ForMonth(expenses []core.Expense, t time.Time) []core.Expense {
	month := now.With(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	start, end := month.BeginningOfMonth(), month.EndOfMonth()

	out := []core.Expense{}
	for _, e := range expenses {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize bundles every dashboard view.
func Summarize(expenses []core.Expense) core.Summary {
	return core.Summary{
		Count:         len(expenses),
		Total:         Total(expenses),
		ByCategory:    TotalsByCategory(expenses),
		Shares:        Shares(expenses),
		TopCategories: TopCategories(expenses, TopCategoryCount),
		OverTime:      SortedByDate(expenses),
	}
}
