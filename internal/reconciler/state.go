package reconciler

import (
	"golang-bookkeeping-engine/internal/matcher"
	"golang-bookkeeping-engine/internal/models"
)

// slotKind distinguishes what document type occupies a slot.
type slotKind string

const (
	slotInvoice slotKind = "invoice"
	slotReceipt slotKind = "receipt"
)

// Assignment is one accepted claim of a payment on a document slot.
type Assignment struct {
	Kind    slotKind
	Slot    models.RowRef
	DocID   string
	Payment *models.Payment
	Quality matcher.MatchQuality
	Depth   int
}

// BatchState holds the assignment state of one reconciliation batch. It is
// created at batch start and discarded at batch end; nothing survives
// between batches. All mutation goes through Offer, single-threaded.
type BatchState struct {
	assignments map[models.RowRef]Assignment

	// Displacements counts accepted takeovers for the scan summary.
	Displacements int
}

// NewBatchState returns an empty per-batch state.
func NewBatchState() *BatchState {
	return &BatchState{assignments: make(map[models.RowRef]Assignment)}
}

// Offer proposes a payment for a document slot. An empty slot accepts. An
// occupied slot accepts only a strictly better quality and returns the
// displaced incumbent; ties keep the incumbent.
func (s *BatchState) Offer(candidate Assignment) (accepted bool, displaced *Assignment) {
	incumbent, occupied := s.assignments[candidate.Slot]
	if !occupied {
		s.assignments[candidate.Slot] = candidate
		return true, nil
	}
	if !candidate.Quality.Better(incumbent.Quality) {
		return false, nil
	}
	s.assignments[candidate.Slot] = candidate
	s.Displacements++
	return true, &incumbent
}

// Assignments returns every accepted assignment of the batch.
func (s *BatchState) Assignments() []Assignment {
	out := make([]Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	return out
}

// AssignmentFor returns the current occupant of the slot.
func (s *BatchState) AssignmentFor(slot models.RowRef) (Assignment, bool) {
	a, ok := s.assignments[slot]
	return a, ok
}

// Len returns the number of occupied slots.
func (s *BatchState) Len() int {
	return len(s.assignments)
}
