// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts typed by a user and for
// formatting them back for display.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for user input.
const AmountPlaces = 2

// ParseAmount converts a decimal string typed by a user into an Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up to two places. Only strictly positive values are accepted.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35
//	ParseAmount("0")      -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Amount{}, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return Amount{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Amount{}, ErrInvalidAmount
		}
	}
	if s == "." {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	d = d.Round(AmountPlaces)
	if !d.IsPositive() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Decimal: d}, nil
}

// Format renders the amount with two decimals behind the given currency
// symbol, e.g. "£12.50". A stored value that is not a number is shown as is.
func (a Amount) Format(symbol string) string {
	if a.raw != "" {
		return rawText(a.raw)
	}
	if a.IsNegative() {
		return "-" + symbol + a.Neg().StringFixed(AmountPlaces)
	}
	return symbol + a.StringFixed(AmountPlaces)
}
