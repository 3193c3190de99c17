package matcher

import (
	"golang-bookkeeping-engine/internal/models"
)

// dateWindow is one row of the tiering table: a day-difference window and
// the confidence it yields with and without an identifier match. Windows
// are evaluated in order; the first one containing the difference decides.
type dateWindow struct {
	min, max           int
	minIncl, maxIncl   bool
	withIdentifier     models.Confidence
	withoutIdentifier  models.Confidence
}

// tierTable encodes the date-tier rule for payment-vs-document matching,
// with diff = payment date - document date in days:
//
//	[0, 15]    HIGH with identifier, MEDIUM without
//	(-3, 30)   HIGH with identifier, MEDIUM without
//	(-10, 60)  LOW regardless
//
// A difference outside every window is not a candidate.
var tierTable = []dateWindow{
	{min: 0, max: 15, minIncl: true, maxIncl: true,
		withIdentifier: models.ConfidenceHigh, withoutIdentifier: models.ConfidenceMedium},
	{min: -3, max: 30,
		withIdentifier: models.ConfidenceHigh, withoutIdentifier: models.ConfidenceMedium},
	{min: -10, max: 60,
		withIdentifier: models.ConfidenceLow, withoutIdentifier: models.ConfidenceLow},
}

// contains reports whether the day difference falls inside the window.
func (w dateWindow) contains(diff int) bool {
	if w.minIncl {
		if diff < w.min {
			return false
		}
	} else if diff <= w.min {
		return false
	}
	if w.maxIncl {
		if diff > w.max {
			return false
		}
	} else if diff >= w.max {
		return false
	}
	return true
}

// ComputeConfidence is the single tiering rule: it maps a signed day
// difference, the identifier-match flag and the cross-currency flag to a
// confidence tier. ConfidenceNone means the pairing is not a candidate.
//
// Cross-currency pairings are capped after the table lookup: at most MEDIUM
// with an identifier match, LOW without, regardless of the date tier.
func ComputeConfidence(dayDiff int, identifierMatch, crossCurrency bool) models.Confidence {
	confidence := models.ConfidenceNone
	for _, window := range tierTable {
		if window.contains(dayDiff) {
			if identifierMatch {
				confidence = window.withIdentifier
			} else {
				confidence = window.withoutIdentifier
			}
			break
		}
	}

	if confidence == models.ConfidenceNone {
		return models.ConfidenceNone
	}

	if crossCurrency {
		if identifierMatch {
			if confidence.Rank() > models.ConfidenceMedium.Rank() {
				confidence = models.ConfidenceMedium
			}
		} else {
			confidence = models.ConfidenceLow
		}
	}

	return confidence
}

// InCandidateWindow reports whether a day difference falls inside any
// window of the tier table, i.e. whether the pairing can be a candidate at
// all.
func InCandidateWindow(dayDiff int) bool {
	for _, window := range tierTable {
		if window.contains(dayDiff) {
			return true
		}
	}
	return false
}
