// Package parsers converts the raw text fields produced by the document
// extraction service into typed values: monetary amounts written in either
// regional convention and dates written in the formats that appear on
// scanned invoices and bank statements.
package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats lists the layouts accepted by ParseDate, most specific first.
// Day-first layouts dominate because that is how local documents are dated.
var dateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2/1/2006",
	"02.01.2006",
}

// ParseDate parses a date string in any of the regional formats used on
// scanned documents. The result is truncated to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// DayDistance returns the signed calendar-day difference a - b.
func DayDistance(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ad.Sub(bd).Hours() / 24)
}

// AbsDayDistance returns the unsigned calendar-day difference between two dates.
func AbsDayDistance(a, b time.Time) int {
	d := DayDistance(a, b)
	if d < 0 {
		return -d
	}
	return d
}

// ParseAmount parses a monetary amount written in either regional
// convention: "1.234,56" (thousands '.', decimals ',') or "1,234.56"
// (thousands ',', decimals '.'). Currency symbols and surrounding
// whitespace are stripped.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	for _, symbol := range []string{"$", "ARS", "USD", "U$S", "u$s"} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	cleaned = strings.TrimSpace(cleaned)

	normalized, err := normalizeSeparators(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", s, err)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites an amount into plain decimal notation.
// The convention is decided by the last separator seen: the rightmost of
// '.' and ',' is the decimal mark, everything else is grouping.
func normalizeSeparators(s string) (string, error) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot < 0 && lastComma < 0:
		return s, nil
	case lastComma > lastDot:
		// "1.234,56": comma is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		// "1,234.56": dot is the decimal mark
		s = strings.ReplaceAll(s, ",", "")
	}

	if strings.Count(s, ".") > 1 || strings.Contains(s, ",") {
		return "", fmt.Errorf("ambiguous separators")
	}
	return s, nil
}

// FormatAmount renders an amount in the local convention: thousands '.',
// decimal ',', always two decimals.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String() + "," + fracPart
	if negative {
		out = "-" + out
	}
	return out
}
