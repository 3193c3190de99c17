package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/reconciler"
)

func sampleResult() *reconciler.ScanResult {
	return &reconciler.ScanResult{
		StartedAt:   time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2025, 2, 1, 10, 0, 3, 0, time.UTC),
		Invoices:    3,
		Payments:    2,
		Receipts:    1,
		Entries:     1,
		Movements:   2,
		Matches: []reconciler.MatchLine{
			{PaymentID: "pago-002.pdf", DocumentID: "rec-001.pdf", Kind: "receipt", Confidence: models.ConfidenceHigh, Days: 3},
			{PaymentID: "pago-001.pdf", DocumentID: "fac-001.pdf", Kind: "invoice", Confidence: models.ConfidenceHigh, Days: 2},
		},
		ConfidenceCounts: map[models.Confidence]int{
			models.ConfidenceHigh: 3,
		},
		UnmatchedPayments:  []string{"pago-999.pdf"},
		Displacements:      1,
		MovementsMatched:   1,
		MovementsUnmatched: []reconciler.MovementIssue{{Row: "Movements!3", Reason: "movement has no parseable date"}},
		SettledPairs:       1,
		FailedWrites:       0,
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Write(sampleResult(), FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded reconciler.ScanResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(decoded.Matches) != 2 || decoded.SettledPairs != 1 {
		t.Errorf("round-tripped result = %+v", decoded)
	}
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Write(sampleResult(), FormatConsole); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"pago-001.pdf",
		"fac-001.pdf",
		"HIGH",
		"pago-999.pdf",
		"Displacements: 1 accepted",
		"Bank movements: 1 reconciled, 1 open",
		"Credit notes: 1 settled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console report missing %q:\n%s", want, out)
		}
	}

	// Lines sort by payment ID regardless of input order.
	if strings.Index(out, "pago-001.pdf") > strings.Index(out, "pago-002.pdf") {
		t.Error("match lines are not sorted by payment ID")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Write(sampleResult(), Format("yaml")); err == nil {
		t.Error("unknown format must error")
	}
	if Format("yaml").IsValid() {
		t.Error("yaml is not a supported format")
	}
}
