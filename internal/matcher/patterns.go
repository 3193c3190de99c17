package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// referencePattern is one entry of the invoice-reference cascade: a pattern
// over free text plus the normalizer for its capture groups. The cascade is
// an explicit ordered list so new document phrasings can be added with
// isolated unit tests instead of scattering regexes through the matcher.
type referencePattern struct {
	re        *regexp.Regexp
	normalize func(groups []string) (string, bool)
}

// branchSequence normalizes a (branch, sequence) capture pair.
func branchSequence(groups []string) (string, bool) {
	return NormalizeInvoiceNumber(groups[1] + "-" + groups[2])
}

// invoiceRefPatterns is the ordered cascade applied to a credit note's
// free-text note. Evaluation stops at the first matching pattern.
var invoiceRefPatterns = []referencePattern{
	// "FACTURA A 0001-00000123", "FC B Nº 00001-123", "FAC. 0001-00000123"
	{
		re:        regexp.MustCompile(`(?i)\bF(?:C|AC(?:TURA)?)\.?\s*(?:[A-CEM]\s+)?(?:N[º°o]?\s*)?(\d{1,5})\s*-\s*(\d{1,8})\b`),
		normalize: branchSequence,
	},
	// "REF: 0001-00000123", "CBTE 0001-123", "COMP. Nº 0001-123"
	{
		re:        regexp.MustCompile(`(?i)\b(?:REF|CBTE|COMP)\.?\s*:?\s*(?:N[º°o]?\s*)?(\d{1,5})\s*-\s*(\d{1,8})\b`),
		normalize: branchSequence,
	},
	// bare "0001-00000123" anywhere in the note
	{
		re:        regexp.MustCompile(`\b(\d{1,5})-(\d{1,8})\b`),
		normalize: branchSequence,
	},
}

// ExtractInvoiceReference scans a credit note's free text for a referenced
// invoice number, trying each pattern of the cascade in order and stopping
// at the first match. The returned number is in canonical form.
func ExtractInvoiceReference(note string) (string, bool) {
	for _, pattern := range invoiceRefPatterns {
		if groups := pattern.re.FindStringSubmatch(note); groups != nil {
			if normalized, ok := pattern.normalize(groups); ok {
				return normalized, true
			}
		}
	}
	return "", false
}

// NormalizeInvoiceNumber rewrites an invoice number into the canonical
// <5-digit-branch>-<8-digit-sequence> form, trimming and re-padding leading
// zeros. Returns false when the input is not branch-dash-sequence shaped.
func NormalizeInvoiceNumber(number string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(number), "-", 2)
	if len(parts) != 2 {
		return "", false
	}

	branch, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}
	sequence, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%05d-%08d", branch, sequence), true
}
