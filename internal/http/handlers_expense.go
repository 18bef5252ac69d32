package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"budget/internal/analytics"
	"budget/internal/core"
	applog "budget/internal/log"
)

// handleExpenses serves the history on GET and records an expense on POST.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleHistory(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.logger.WarnContext(ctx, "Parse request body failed", applog.FieldError, err.Error())
		s.fail(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	input, err := parser.Expense(s.now())
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, inputErrorMessage(err))
		return
	}

	expense, err := s.service.Add(ctx, input.Amount, input.Category, input.Date)
	if err != nil {
		if isValidationError(err) {
			s.fail(w, r, http.StatusUnprocessableEntity, inputErrorMessage(err))
			return
		}
		s.structured.LogError(ctx, "Failed to save expense", err, applog.ComponentHTTP, applog.OpAppend,
			applog.NewFields().WithExpense(input.Amount.String(), input.Category.String(), input.Date.String()))
		s.fail(w, r, http.StatusInternalServerError, "Failed to save expense. Please try again.")
		return
	}
	s.structured.LogExpenseCreated(ctx, expense.Amount.String(), expense.Category.String(), expense.Date.String())

	if parser.IsJSON() || wantsJSON(r) {
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(expense).Write(w)
		return
	}

	msg := fmt.Sprintf("Expense added successfully! %s (%s, %s)",
		expense.Amount.Format(s.currency), expense.Category, expense.Date)
	NewHTMXResponse().
		TriggerExpenseCreated(expense).
		TriggerFormReset().
		TriggerSuccessNotification("Expense added successfully!").
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// fail answers in the representation the client asked for. HTML answers
// also raise an error notification, since HTMX does not swap error bodies.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		JSONError(status, message).Write(w)
		return
	}

	var resp *HTMXResponseBuilder
	switch status {
	case http.StatusBadRequest:
		resp = BadRequestError(message)
	case http.StatusUnprocessableEntity:
		resp = UnprocessableEntityError(message)
	case http.StatusInternalServerError:
		resp = InternalServerError(message)
	default:
		resp = ErrorResponse(status, message)
	}
	resp.TriggerErrorNotification(message).Write(w)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidDate)
}

func inputErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount: enter a positive number such as 12.50"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Invalid category"
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date: use YYYY-MM-DD"
	default:
		return "Invalid data: " + err.Error()
	}
}

type historyData struct {
	Page
	Table core.Table
	Rows  []core.Expense
	Total core.Amount
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	listing, err := s.service.List(ctx)
	if err != nil {
		s.structured.LogError(ctx, "Failed to load expenses", err, applog.ComponentHTTP, applog.OpList, nil)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}

	s.render(w, r, "expenses.html", historyData{
		Page:  s.newPage("Expense History", "history", listing.Warning),
		Table: listing.Table,
		Rows:  listing.Expenses,
		Total: analytics.Total(listing.Expenses),
	})
}
