package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date layout used on disk and on the wire.
const DateLayout = "2006-01-02"

const (
	Food      Category = "Food"
	Transport Category = "Transport"
	Shopping  Category = "Shopping"
	Bills     Category = "Bills"
	Other     Category = "Other"
)

type (
	// Category is the spending bucket of an expense. The store accepts any
	// value; Valid reports whether it belongs to the fixed set.
	Category string

	// Date is a calendar date without time of day, always in UTC.
	Date struct {
		time.Time
		// raw holds a stored JSON value that is not a date. It is written
		// back unchanged.
		raw string
	}

	// Amount is a decimal currency amount without a unit.
	Amount struct {
		decimal.Decimal
		// raw holds a stored JSON value that is not a number.
		raw string
	}

	Expense struct {
		Amount   Amount   `json:"amount"`
		Category Category `json:"category"`
		Date     Date     `json:"date"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCategory = errors.New("invalid category")
)

var categories = []Category{Food, Transport, Shopping, Bills, Other}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches s against the fixed set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.raw != "" {
		return rawText(d.raw)
	}
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.raw != "" {
		return fmt.Errorf("%w: %s", ErrInvalidDate, d.raw)
	}
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// MarshalJSON writes "YYYY-MM-DD", "" for the zero date, or the stored value
// that could not be read as a date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.raw != "" {
		return []byte(d.raw), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a plain date or an RFC 3339 timestamp, keeping only
// the date part of the latter. null and "" give the zero date. Anything else
// is kept as is so a stored record survives a load and save.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		if isNull(b) {
			return nil
		}
		return d.keepRaw(b)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	return d.keepRaw(b)
}

func (d *Date) keepRaw(b []byte) error {
	if !json.Valid(b) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	d.raw = string(b)
	return nil
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromFloat is a convenience for tests and literals.
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

func (a Amount) Validate() error {
	if !a.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

// String returns the decimal value, or the stored value that could not be
// read as a number.
func (a Amount) String() string {
	if a.raw != "" {
		return rawText(a.raw)
	}
	return a.Decimal.String()
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.raw != "" {
		return []byte(a.raw), nil
	}
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings. null is zero;
// any other value is kept as is.
func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount{}
	if isNull(b) {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		if !json.Valid(b) {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
		}
		a.raw = string(b)
		return nil
	}
	a.Decimal = d
	return nil
}

// UnmarshalJSON accepts any JSON value so an odd category never costs the
// rest of the record. Non-strings are kept as their JSON text.
func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Category(s)
		return nil
	}
	if isNull(b) {
		*c = ""
		return nil
	}
	if !json.Valid(b) {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, string(b))
	}
	*c = Category(b)
	return nil
}

func isNull(b []byte) bool {
	return string(bytes.TrimSpace(b)) == "null"
}

// rawText renders a kept JSON value for display, unquoting strings.
func rawText(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return raw
}

// Validate checks the boundary rules applied before an expense is stored.
func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(e.Category))
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Equal compares field by field; amounts are compared by value, so 12.5
// equals 12.50.
func (e Expense) Equal(o Expense) bool {
	return e.Amount.Equal(o.Amount.Decimal) &&
		e.Category == o.Category &&
		e.Date.Equal(o.Date.Time)
}
