package matcher

import (
	"fmt"

	"golang-bookkeeping-engine/internal/models"
)

// MatchQuality is the total order over match candidates, compared by
// confidence tier first, then identifier-match presence, then date
// proximity ascending. It is the single source of truth for "is candidate
// A better than candidate B" everywhere in the engine: the per-type
// matchers sort with it and the displacement controller compares
// challenger against incumbent with it.
type MatchQuality struct {
	Confidence      models.Confidence `json:"confidence"`
	IdentifierMatch bool              `json:"identifier_match"`
	// DayDistance is the unsigned date proximity in days; closer wins.
	DayDistance int `json:"day_distance"`
}

// Compare returns a positive value when q is better than other, negative
// when worse, zero when equal.
func (q MatchQuality) Compare(other MatchQuality) int {
	if d := q.Confidence.Rank() - other.Confidence.Rank(); d != 0 {
		return d
	}
	if q.IdentifierMatch != other.IdentifierMatch {
		if q.IdentifierMatch {
			return 1
		}
		return -1
	}
	// Smaller distance wins.
	return other.DayDistance - q.DayDistance
}

// Better reports whether q is strictly better than other.
func (q MatchQuality) Better(other MatchQuality) bool {
	return q.Compare(other) > 0
}

func (q MatchQuality) String() string {
	return fmt.Sprintf("MatchQuality{%s, identifier: %t, days: %d}",
		q.Confidence, q.IdentifierMatch, q.DayDistance)
}
