package matcher

import (
	"strings"
	"testing"
	"time"

	"golang-bookkeeping-engine/internal/models"
)

func testEntry(id, cuit, amount string, expected time.Time) models.CollectionEntry {
	return models.CollectionEntry{
		ID:               id,
		CounterpartyID:   cuit,
		CounterpartyName: "Acme SA",
		Reference:        "REF-" + id,
		Amount:           money(amount),
		ExpectedDate:     expected,
		Note:             "cobranza mensual",
	}
}

func testMovement(description, amount, dateRaw string) *models.BankMovement {
	return &models.BankMovement{
		Ref:         models.RowRef{Sheet: "Movements", Row: 2},
		DateRaw:     dateRaw,
		Description: description,
		Credit:      money(amount),
	}
}

func TestMatchMovementIdentifierPassBeatsCloserDate(t *testing.T) {
	// The wrong-CUIT entry is dated closer, but the identifier pass runs
	// first and only sees the right counterparty.
	entries := []models.CollectionEntry{
		testEntry("E1", testCUITOther, "5000.00", day(2025, 1, 14)),
		testEntry("E2", testCUIT, "5000.00", day(2025, 1, 5)),
	}
	movement := testMovement("TRANSFERENCIA DE 20-12345678-6", "5000.00", "15/01/2025")

	match, noMatch := MatchMovement(movement, entries, nil, DefaultConfig())
	if noMatch != nil {
		t.Fatalf("expected match, got no-match: %s", noMatch.Reason)
	}
	if match.Entry.ID != "E2" {
		t.Errorf("matched %s, want E2", match.Entry.ID)
	}
	if match.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH", match.Confidence)
	}
	if match.DayDistance != 10 {
		t.Errorf("day distance = %d, want 10", match.DayDistance)
	}
}

func TestMatchMovementIdentifierPassPicksClosestOfSameParty(t *testing.T) {
	entries := []models.CollectionEntry{
		testEntry("E1", testCUIT, "5000.00", day(2025, 1, 1)),
		testEntry("E2", testCUIT, "5000.00", day(2025, 1, 13)),
	}
	movement := testMovement("ACRED 20123456786", "5000.00", "15/01/2025")

	match, _ := MatchMovement(movement, entries, nil, DefaultConfig())
	if match == nil || match.Entry.ID != "E2" {
		t.Fatalf("expected closest same-party entry E2, got %+v", match)
	}
}

func TestMatchMovementAmountDatePassConfidence(t *testing.T) {
	tests := []struct {
		name         string
		expectedDate time.Time
		want         models.Confidence
	}{
		{name: "within 15 days is medium", expectedDate: day(2025, 1, 5), want: models.ConfidenceMedium},
		{name: "beyond 15 days is low", expectedDate: day(2024, 12, 20), want: models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []models.CollectionEntry{testEntry("E1", testCUIT, "5000.00", tt.expectedDate)}
			// Description carries no tax ID, so only the fallback pass can hit.
			movement := testMovement("TRANSFERENCIA RECIBIDA VARIOS", "5000.00", "15/01/2025")

			match, noMatch := MatchMovement(movement, entries, nil, DefaultConfig())
			if noMatch != nil {
				t.Fatalf("expected match, got no-match: %s", noMatch.Reason)
			}
			if match.Confidence != tt.want {
				t.Errorf("confidence = %s, want %s", match.Confidence, tt.want)
			}
		})
	}
}

func TestMatchMovementBeyondWindow(t *testing.T) {
	entries := []models.CollectionEntry{testEntry("E1", testCUIT, "5000.00", day(2024, 11, 1))}
	movement := testMovement("TRANSFERENCIA VARIOS", "5000.00", "15/01/2025")

	match, noMatch := MatchMovement(movement, entries, nil, DefaultConfig())
	if match != nil {
		t.Fatal("entry beyond 30 days must not match")
	}
	if noMatch.Reason != ReasonNoAmountMatch {
		t.Errorf("reason = %q, want %q", noMatch.Reason, ReasonNoAmountMatch)
	}
}

func TestMatchMovementShortCircuits(t *testing.T) {
	entries := []models.CollectionEntry{testEntry("E1", testCUIT, "5000.00", day(2025, 1, 14))}

	tests := []struct {
		name     string
		movement *models.BankMovement
		consumed map[string]bool
		reason   string
	}{
		{
			name:     "zero credit",
			movement: testMovement("TRANSFERENCIA", "0", "15/01/2025"),
			reason:   ReasonNoCredit,
		},
		{
			name:     "no parseable date",
			movement: testMovement("TRANSFERENCIA", "5000.00", "SALDO ANTERIOR"),
			reason:   ReasonNoDate,
		},
		{
			name:     "all entries consumed",
			movement: testMovement("TRANSFERENCIA", "5000.00", "15/01/2025"),
			consumed: map[string]bool{"E1": true},
			reason:   ReasonNoCandidates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, noMatch := MatchMovement(tt.movement, entries, tt.consumed, DefaultConfig())
			if match != nil {
				t.Fatal("expected structured no-match")
			}
			if noMatch == nil || noMatch.Reason != tt.reason {
				t.Errorf("reason = %v, want %q", noMatch, tt.reason)
			}
		})
	}
}

func TestMatchMovementValueDateFallback(t *testing.T) {
	entries := []models.CollectionEntry{testEntry("E1", testCUIT, "5000.00", day(2025, 1, 14))}
	movement := testMovement("ACRED 20123456786", "5000.00", "CHEQUE 48HS")
	movement.ValueDateRaw = "16/01/2025"

	match, noMatch := MatchMovement(movement, entries, nil, DefaultConfig())
	if noMatch != nil {
		t.Fatalf("expected value-date fallback to match, got: %s", noMatch.Reason)
	}
	if match.DayDistance != 2 {
		t.Errorf("day distance = %d, want 2 (from value date)", match.DayDistance)
	}
}

func TestMatchMovementDescriptionText(t *testing.T) {
	entry := testEntry("E1", testCUIT, "5000.00", day(2025, 1, 14))
	movement := testMovement("ACRED 20123456786", "5000.00", "15/01/2025")

	match, _ := MatchMovement(movement, []models.CollectionEntry{entry}, nil, DefaultConfig())
	if match == nil {
		t.Fatal("expected match")
	}
	want := "Acme SA - REF-E1 - cobranza mensual"
	if match.Description != want {
		t.Errorf("description = %q, want %q", match.Description, want)
	}
}

func TestMatchMovementDescriptionSkipsEmptyParts(t *testing.T) {
	entry := testEntry("E1", testCUIT, "5000.00", day(2025, 1, 14))
	entry.Note = ""
	movement := testMovement("ACRED 20123456786", "5000.00", "15/01/2025")

	match, _ := MatchMovement(movement, []models.CollectionEntry{entry}, nil, DefaultConfig())
	if match == nil {
		t.Fatal("expected match")
	}
	if strings.HasSuffix(match.Description, " - ") || strings.Contains(match.Description, "-  -") {
		t.Errorf("description has dangling separator: %q", match.Description)
	}
}
