// Package ident validates, normalizes and extracts national taxpayer
// identifiers (CUIT) and relates them to the short-form personal identifier
// (DNI) that some documents carry instead.
//
// A CUIT is eleven digits: a two-digit type prefix, the eight DNI digits,
// and a mod-11 check digit. Documents frequently show only the DNI, so
// identity comparison must accept a DNI embedded in a CUIT.
package ident

import (
	"regexp"
	"strings"
)

// cuitWeights are the mod-11 checksum weights for the first ten digits.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// cuitPattern matches CUIT-shaped digit runs in free text, with optional
// separators between the three groups.
var cuitPattern = regexp.MustCompile(`\b(\d{2})[-. ]?(\d{8})[-. ]?(\d)\b`)

// digitsOnly strips every non-digit character.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// checkDigit computes the mod-11 check digit for the first ten digits of a
// CUIT. The conventional remapping applies: remainder 11 becomes 0 and
// remainder 10 becomes 9.
func checkDigit(digits string) int {
	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * cuitWeights[i]
	}
	check := 11 - sum%11
	switch check {
	case 11:
		return 0
	case 10:
		return 9
	default:
		return check
	}
}

// ValidCUIT reports whether s is a checksum-valid CUIT. Separators are
// ignored.
func ValidCUIT(s string) bool {
	_, ok := NormalizeCUIT(s)
	return ok
}

// NormalizeCUIT returns the canonical eleven-digit form of a CUIT, or false
// when s is not a checksum-valid CUIT.
func NormalizeCUIT(s string) (string, bool) {
	digits := digitsOnly(s)
	if len(digits) != 11 {
		return "", false
	}
	if checkDigit(digits) != int(digits[10]-'0') {
		return "", false
	}
	return digits, true
}

// ExtractCUIT scans free text for the first checksum-valid CUIT and returns
// it in canonical form. The second return value is false when no valid
// candidate appears.
func ExtractCUIT(text string) (string, bool) {
	for _, m := range cuitPattern.FindAllStringSubmatch(text, -1) {
		candidate := m[1] + m[2] + m[3]
		if cuit, ok := NormalizeCUIT(candidate); ok {
			return cuit, true
		}
	}
	return "", false
}

// DNIFromCUIT returns the eight DNI digits embedded in a canonical CUIT.
// The input must already be normalized; anything else yields "".
func DNIFromCUIT(cuit string) string {
	if len(cuit) != 11 {
		return ""
	}
	return cuit[2:10]
}

// SameParty reports whether two identifiers refer to the same party.
// Equality holds when both normalize to the same CUIT, or when one side is
// an eight-digit DNI equal to the DNI embedded in the other side's CUIT.
func SameParty(a, b string) bool {
	da, db := digitsOnly(a), digitsOnly(b)
	if da == "" || db == "" {
		return false
	}

	ca, aIsCUIT := NormalizeCUIT(da)
	cb, bIsCUIT := NormalizeCUIT(db)

	switch {
	case aIsCUIT && bIsCUIT:
		return ca == cb
	case aIsCUIT && len(db) == 8:
		return DNIFromCUIT(ca) == db
	case bIsCUIT && len(da) == 8:
		return DNIFromCUIT(cb) == da
	case len(da) == 8 && len(db) == 8:
		return da == db
	}
	return false
}

// SameName reports case- and whitespace-insensitive name equality.
func SameName(a, b string) bool {
	na := strings.ToUpper(strings.Join(strings.Fields(a), " "))
	nb := strings.ToUpper(strings.Join(strings.Fields(b), " "))
	return na != "" && na == nb
}
