package core

import "github.com/shopspring/decimal"

// Table column names, in display order.
const (
	ColumnDate     = "date"
	ColumnCategory = "category"
	ColumnAmount   = "amount"
)

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Amount   `json:"total"`
}

// CategoryShare is a category total with its percentage of the overall spend.
type CategoryShare struct {
	CategoryTotal
	Percent decimal.Decimal `json:"percent"`
}

// Table is a column-oriented view of an expense list. Columns is always
// populated, even when there are no rows.
type Table struct {
	Columns  []string `json:"columns"`
	Date     []Date   `json:"date"`
	Category []string `json:"category"`
	Amount   []Amount `json:"amount"`
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Date)
}

// Summary bundles the analytics shown on the dashboard.
type Summary struct {
	Count         int             `json:"count"`
	Total         Amount          `json:"total"`
	ByCategory    []CategoryTotal `json:"by_category"`
	Shares        []CategoryShare `json:"shares"`
	TopCategories []CategoryTotal `json:"top_categories"`
	OverTime      []Expense       `json:"over_time"`
}
