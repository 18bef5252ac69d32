package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
)

type shareRow struct {
	Category core.Category
	Total    core.Amount
	Percent  string
	Width    int
}

type timeRow struct {
	Date     core.Date
	Category core.Category
	Amount   core.Amount
	Width    int
}

type dashboardData struct {
	Page
	Month     string
	ThisMonth string
	Count     int
	Total     core.Amount
	Shares    []shareRow
	Over      []timeRow
	Top       []core.CategoryTotal
}

// handleDashboard renders the analytics page, optionally for one month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	report, err := s.service.Summary(ctx, month)
	if err != nil {
		s.structured.LogError(ctx, "Failed to build summary", err, applog.ComponentHTTP, applog.OpSummary, nil)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}

	sum := report.Summary
	data := dashboardData{
		Page:  s.newPage("Analytics Dashboard", "dashboard", report.Warning),
		Count: sum.Count,
		Total: sum.Total,
		Top:   sum.TopCategories,

		ThisMonth: currentMonth(s.now()),
	}
	if month != nil {
		data.Month = month.Format(monthLayout)
	}

	for _, share := range sum.Shares {
		data.Shares = append(data.Shares, shareRow{
			Category: share.Category,
			Total:    share.Total,
			Percent:  share.Percent.StringFixed(1),
			Width:    barWidth(share.Percent, decimal.NewFromInt(100)),
		})
	}

	largest := decimal.Zero
	for _, e := range sum.OverTime {
		if e.Amount.GreaterThan(largest) {
			largest = e.Amount.Decimal
		}
	}
	for _, e := range sum.OverTime {
		data.Over = append(data.Over, timeRow{
			Date:     e.Date,
			Category: e.Category,
			Amount:   e.Amount,
			Width:    barWidth(e.Amount.Decimal, largest),
		})
	}

	s.render(w, r, "dashboard.html", data)
}

// barWidth scales v against limit to a 0..100 percentage. Non-zero values
// get at least 2 so they stay visible.
func barWidth(v, limit decimal.Decimal) int {
	if !limit.IsPositive() || !v.IsPositive() {
		return 0
	}
	width := int(v.Mul(decimal.NewFromInt(100)).Div(limit).Round(0).IntPart())
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

type apiListing struct {
	Expenses []core.Expense `json:"expenses"`
	Table    core.Table     `json:"table"`
	Warning  string         `json:"warning,omitempty"`
}

type apiSummary struct {
	Month   string       `json:"month,omitempty"`
	Summary core.Summary `json:"summary"`
	Warning string       `json:"warning,omitempty"`
}

// handleAPIExpenses returns the history as JSON on GET and accepts a new
// expense on POST.
func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		r.Header.Set("Accept", "application/json")
		s.handleCreateExpense(w, r)
		return
	default:
		MethodNotAllowedError("GET, POST").Write(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	listing, err := s.service.List(ctx)
	if err != nil {
		s.structured.LogError(ctx, "Failed to load expenses", err, applog.ComponentHTTP, applog.OpList, nil)
		JSONError(http.StatusInternalServerError, "failed to load expenses").Write(w)
		return
	}

	NewHTMXResponse().BodyJSON(apiListing{
		Expenses: listing.Expenses,
		Table:    listing.Table,
		Warning:  errorString(listing.Warning),
	}).Write(w)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	report, err := s.service.Summary(ctx, month)
	if err != nil {
		s.structured.LogError(ctx, "Failed to build summary", err, applog.ComponentHTTP, applog.OpSummary, nil)
		JSONError(http.StatusInternalServerError, "failed to load expenses").Write(w)
		return
	}

	resp := apiSummary{Summary: report.Summary, Warning: errorString(report.Warning)}
	if month != nil {
		resp.Month = month.Format(monthLayout)
	}
	NewHTMXResponse().BodyJSON(resp).Write(w)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// currentMonth is the default month offered by the dashboard filter.
func currentMonth(t time.Time) string {
	return t.Format(monthLayout)
}
