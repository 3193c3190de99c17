// Package reporter renders scan results for humans and for machines.
//
// Two formats are supported: console, a compact sectioned text report for
// terminal use, and JSON for programmatic consumption.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/reconciler"
)

// Format selects the report output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// IsValid checks if the format is supported.
func (f Format) IsValid() bool {
	return f == FormatConsole || f == FormatJSON
}

// Reporter writes scan reports to one output stream.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Write renders the result in the given format.
func (r *Reporter) Write(result *reconciler.ScanResult, format Format) error {
	switch format {
	case FormatJSON:
		return r.writeJSON(result)
	case FormatConsole:
		return r.writeConsole(result)
	default:
		return fmt.Errorf("unsupported report format: %q", format)
	}
}

func (r *Reporter) writeJSON(result *reconciler.ScanResult) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (r *Reporter) writeConsole(result *reconciler.ScanResult) error {
	fmt.Fprintf(r.w, "Reconciliation Scan - %s\n", result.CompletedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.w, "%s\n\n", divider)

	fmt.Fprintln(r.w, "Documents loaded")
	tw := tabwriter.NewWriter(r.w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  invoices\t%d\n", result.Invoices)
	fmt.Fprintf(tw, "  payments\t%d\n", result.Payments)
	fmt.Fprintf(tw, "  receipts\t%d\n", result.Receipts)
	fmt.Fprintf(tw, "  collection entries\t%d\n", result.Entries)
	fmt.Fprintf(tw, "  bank movements\t%d\n", result.Movements)
	if result.Loaded.RowsSkipped > 0 {
		fmt.Fprintf(tw, "  rows skipped\t%d\n", result.Loaded.RowsSkipped)
	}
	tw.Flush()

	fmt.Fprintln(r.w, "\nDocument matches")
	tw = tabwriter.NewWriter(r.w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  PAYMENT\tDOCUMENT\tKIND\tCONFIDENCE\tDAYS\n")
	for _, line := range sortedMatches(result.Matches) {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\n",
			line.PaymentID, line.DocumentID, line.Kind, line.Confidence, line.Days)
	}
	tw.Flush()
	if len(result.Matches) == 0 {
		fmt.Fprintln(r.w, "  (none)")
	}

	fmt.Fprintln(r.w, "\nConfidence distribution")
	for _, tier := range []models.Confidence{models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow} {
		fmt.Fprintf(r.w, "  %-8s %d\n", tier, result.ConfidenceCounts[tier])
	}

	if result.Displacements > 0 || result.DroppedCascades > 0 {
		fmt.Fprintf(r.w, "\nDisplacements: %d accepted, %d cascades dropped\n",
			result.Displacements, result.DroppedCascades)
	}

	if len(result.UnmatchedPayments) > 0 {
		fmt.Fprintln(r.w, "\nUnmatched payments")
		for _, id := range result.UnmatchedPayments {
			fmt.Fprintf(r.w, "  %s\n", id)
		}
	}

	fmt.Fprintf(r.w, "\nBank movements: %d reconciled, %d open\n",
		result.MovementsMatched, len(result.MovementsUnmatched))
	for _, issue := range result.MovementsUnmatched {
		fmt.Fprintf(r.w, "  %s: %s\n", issue.Row, issue.Reason)
	}

	fmt.Fprintf(r.w, "\nCredit notes: %d settled, %d unmatched\n",
		result.SettledPairs, result.UnmatchedCreditNotes)

	if result.FailedWrites > 0 {
		fmt.Fprintf(r.w, "\nWARNING: %d annotation writes failed; affected rows retry next scan\n",
			result.FailedWrites)
	}
	return nil
}

const divider = "============================================================"

// sortedMatches orders report lines by payment ID so console output is
// stable across runs; the assignment map iterates in random order.
func sortedMatches(matches []reconciler.MatchLine) []reconciler.MatchLine {
	out := make([]reconciler.MatchLine, len(matches))
	copy(out, matches)
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentID < out[j].PaymentID })
	return out
}
