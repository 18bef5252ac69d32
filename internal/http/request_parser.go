// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Forms posted by HTMX and JSON bodies from API clients go through the same
// parser so the handlers see one shape of input.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

// maxBodyBytes bounds request bodies; an expense is a handful of fields.
const maxBodyBytes = 64 << 10

// monthLayout is the query format for month filters (?month=2024-03).
const monthLayout = "2006-01"

// ExpenseInput is a parsed add-expense request.
type ExpenseInput struct {
	Amount   core.Amount
	Category core.Category
	Date     core.Date
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Expense converts the parsed body into an ExpenseInput. A missing date
// defaults to today.
func (p *RequestBodyParser) Expense(today time.Time) (ExpenseInput, error) {
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return ExpenseInput{}, err
	}
	category, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		return ExpenseInput{}, err
	}
	date := core.DateOf(today)
	if raw := p.Get("date"); raw != "" {
		if date, err = core.ParseDate(raw); err != nil {
			return ExpenseInput{}, err
		}
	}
	return ExpenseInput{Amount: amount, Category: category, Date: date}, nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

var errInvalidMonth = errors.New("invalid month")

// ParseMonthParam reads ?month=YYYY-MM. An absent parameter means no filter.
func ParseMonthParam(query url.Values) (*time.Time, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(monthLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w %q: want YYYY-MM", errInvalidMonth, v)
	}
	return &t, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
