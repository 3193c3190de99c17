package matcher

import (
	"strings"
	"time"

	"golang-bookkeeping-engine/internal/ident"
	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/parsers"
)

// Date windows of the bank movement reconciler. If they ever need to vary
// per deployment they belong in Config.
const (
	// movementWindowDays bounds both passes: candidates further than this
	// from the movement date are never considered.
	movementWindowDays = 30

	// mediumProximityDays is the amount+date pass cutoff between MEDIUM
	// and LOW confidence.
	mediumProximityDays = 15
)

// MovementMatch is an accepted reconciliation of a bank credit movement
// against a collection entry.
type MovementMatch struct {
	Movement    *models.BankMovement   `json:"movement"`
	Entry       models.CollectionEntry `json:"entry"`
	Confidence  models.Confidence      `json:"confidence"`
	DayDistance int                    `json:"day_distance"`
	// Description is the human-readable explanation written back to the
	// movement row.
	Description string `json:"description"`
}

// MovementNoMatch is the structured no-match outcome. The absence of a
// match is an expected result, not a failure: callers branch on it
// explicitly instead of catching an error.
type MovementNoMatch struct {
	Movement *models.BankMovement `json:"movement"`
	Reason   string               `json:"reason"`
}

// No-match reasons.
const (
	ReasonNoCredit      = "movement has no credit amount"
	ReasonNoDate        = "movement has no parseable date"
	ReasonNoCandidates  = "no unconsumed collection entries"
	ReasonNoAmountMatch = "no entry matches amount and date within the window"
)

// MatchMovement reconciles one credit bank movement against the expected
// collection entries, skipping entries whose ID appears in consumed. It
// returns exactly one of a match or a structured no-match.
//
// Two passes, first winner:
//  1. identifier pass: a tax ID extracted from the movement description
//     must equal the entry's, with amount and date also in range; the
//     smallest date distance wins with HIGH confidence.
//  2. amount+date pass: amount and date in range, identifier ignored;
//     MEDIUM within 15 days, LOW beyond.
func MatchMovement(movement *models.BankMovement, entries []models.CollectionEntry, consumed map[string]bool, cfg *Config) (*MovementMatch, *MovementNoMatch) {
	if !movement.HasCredit() {
		return nil, &MovementNoMatch{Movement: movement, Reason: ReasonNoCredit}
	}

	movementDate, ok := movement.EffectiveDate()
	if !ok {
		return nil, &MovementNoMatch{Movement: movement, Reason: ReasonNoDate}
	}

	available := availableEntries(entries, consumed)
	if len(available) == 0 {
		return nil, &MovementNoMatch{Movement: movement, Reason: ReasonNoCandidates}
	}

	if match := identifierPass(movement, movementDate, available, cfg); match != nil {
		return match, nil
	}
	if match := amountDatePass(movement, movementDate, available, cfg); match != nil {
		return match, nil
	}

	return nil, &MovementNoMatch{Movement: movement, Reason: ReasonNoAmountMatch}
}

func availableEntries(entries []models.CollectionEntry, consumed map[string]bool) []models.CollectionEntry {
	var available []models.CollectionEntry
	for _, entry := range entries {
		if !consumed[entry.ID] {
			available = append(available, entry)
		}
	}
	return available
}

// identifierPass matches on an extracted tax ID plus amount plus date
// window, picking the smallest date distance. A hit is always HIGH.
func identifierPass(movement *models.BankMovement, movementDate time.Time, entries []models.CollectionEntry, cfg *Config) *MovementMatch {
	cuit, ok := ident.ExtractCUIT(movement.Description)
	if !ok {
		return nil
	}

	best := -1
	bestDistance := 0
	for i, entry := range entries {
		if !ident.SameParty(cuit, entry.CounterpartyID) {
			continue
		}
		if !cfg.amountsMatch(movement.Credit, entry.Amount) {
			continue
		}
		distance := parsers.AbsDayDistance(movementDate, entry.ExpectedDate)
		if distance > movementWindowDays {
			continue
		}
		if best < 0 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	if best < 0 {
		return nil
	}

	entry := entries[best]
	return &MovementMatch{
		Movement:    movement,
		Entry:       entry,
		Confidence:  models.ConfidenceHigh,
		DayDistance: bestDistance,
		Description: movementDescription(entry),
	}
}

// amountDatePass matches on amount plus date window alone, picking the
// smallest date distance. MEDIUM within mediumProximityDays, LOW beyond.
func amountDatePass(movement *models.BankMovement, movementDate time.Time, entries []models.CollectionEntry, cfg *Config) *MovementMatch {
	best := -1
	bestDistance := 0
	for i, entry := range entries {
		if !cfg.amountsMatch(movement.Credit, entry.Amount) {
			continue
		}
		distance := parsers.AbsDayDistance(movementDate, entry.ExpectedDate)
		if distance > movementWindowDays {
			continue
		}
		if best < 0 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	if best < 0 {
		return nil
	}

	confidence := models.ConfidenceMedium
	if bestDistance > mediumProximityDays {
		confidence = models.ConfidenceLow
	}

	entry := entries[best]
	return &MovementMatch{
		Movement:    movement,
		Entry:       entry,
		Confidence:  confidence,
		DayDistance: bestDistance,
		Description: movementDescription(entry),
	}
}

// movementDescription builds the explanation text from the matched entry's
// counterparty name, reference and note, joined with fixed separators.
func movementDescription(entry models.CollectionEntry) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{entry.CounterpartyName, entry.Reference, entry.Note} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, " - ")
}
