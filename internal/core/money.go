// Package core holds the transaction model, input validation, tag parsing and
// aggregation. Nothing in here touches storage.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to an unsigned amount in cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign, which is discarded: the transaction kind decides the
// stored sign. The third decimal place is rounded half-up.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("-12,34") -> 1234
//	ParseAmount("12.345") -> 1235
//	ParseAmount("0.004")  -> ErrZeroAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Money{}, ErrInvalidAmount
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents == 0 {
		return Money{}, ErrZeroAmount
	}
	return Money{Cents: cents}, nil
}

// allDigits reports whether s holds only ASCII digits. Other Unicode digits
// are rejected because cents are computed from the raw bytes.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats m as a signed decimal with two places, e.g. "-12.50".
func (m Money) String() string {
	sign := ""
	abs := m.Cents
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/100, abs%100)
}

// Float returns the value in currency units for display and spreadsheet cells.
// Use Cents for arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}
