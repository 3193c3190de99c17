// Package reconciler orchestrates one reconciliation batch: it loads a
// ledger snapshot, places every payment on its best document via the
// matchers, cascades displacements, reconciles bank movements, settles
// credit notes and writes the accepted results back to the row store.
//
// Placement is competitive. Each payment claims the best invoice or salary
// receipt its candidate search produces; a later payment with a strictly
// better match quality takes the slot over and the displaced payment
// re-enters the search queue. Cascades are bounded by MaxDisplacementDepth.
package reconciler

import (
	"context"
	"time"

	"golang-bookkeeping-engine/internal/fx"
	"golang-bookkeeping-engine/internal/matcher"
	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/store"
	"golang-bookkeeping-engine/pkg/logger"
)

// Reconciler runs reconciliation batches against one row store.
type Reconciler struct {
	store store.RowStore
	rates *fx.Provider
	cfg   *matcher.Config
	log   logger.Logger
}

// New creates a Reconciler. A nil config falls back to the defaults.
func New(rowStore store.RowStore, rates *fx.Provider, cfg *matcher.Config) *Reconciler {
	if cfg == nil {
		cfg = matcher.DefaultConfig()
	}
	return &Reconciler{
		store: rowStore,
		rates: rates,
		cfg:   cfg,
		log:   logger.WithComponent("reconciler"),
	}
}

// MatchLine is one accepted payment-document pairing in the scan result.
type MatchLine struct {
	PaymentID  string            `json:"payment_id"`
	DocumentID string            `json:"document_id"`
	Kind       string            `json:"kind"`
	Confidence models.Confidence `json:"confidence"`
	Days       int               `json:"days"`
}

// MovementIssue is one bank movement that found no collection entry.
type MovementIssue struct {
	Row    string `json:"row"`
	Reason string `json:"reason"`
}

// ScanResult is the outcome of one batch, consumed by the reporter.
type ScanResult struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Loaded store.LoadStats `json:"loaded"`

	Invoices  int `json:"invoices"`
	Payments  int `json:"payments"`
	Receipts  int `json:"receipts"`
	Entries   int `json:"entries"`
	Movements int `json:"movements"`

	Matches           []MatchLine               `json:"matches"`
	ConfidenceCounts  map[models.Confidence]int `json:"confidence_counts"`
	UnmatchedPayments []string                  `json:"unmatched_payments"`
	Displacements     int                       `json:"displacements"`
	DroppedCascades   int                       `json:"dropped_cascades"`

	MovementsMatched   int             `json:"movements_matched"`
	MovementsUnmatched []MovementIssue `json:"movements_unmatched"`

	SettledPairs         int `json:"settled_pairs"`
	UnmatchedCreditNotes int `json:"unmatched_credit_notes"`

	FailedWrites int `json:"failed_writes"`
}

// RunScan executes one full reconciliation batch. Row-level write failures
// are counted and logged, never fatal; only snapshot load and the final
// flush abort the batch.
func (r *Reconciler) RunScan(ctx context.Context) (*ScanResult, error) {
	result := &ScanResult{
		StartedAt:        time.Now(),
		ConfidenceCounts: make(map[models.Confidence]int),
	}

	snapshot, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	result.Loaded = snapshot.Stats
	result.Invoices = len(snapshot.Invoices)
	result.Payments = len(snapshot.Payments)
	result.Receipts = len(snapshot.Receipts)
	result.Entries = len(snapshot.Entries)
	result.Movements = len(snapshot.Movements)

	r.prefetchRates(ctx, snapshot.Invoices)

	state := NewBatchState()
	queue := &taskQueue{}

	for _, payment := range snapshot.Payments {
		r.place(state, queue, snapshot, payment, 0)
	}
	result.DroppedCascades = r.drain(state, queue, snapshot)
	result.Displacements = state.Displacements

	r.commitAssignments(state, snapshot, result)

	r.reconcileMovements(snapshot, result)

	settle := matcher.SettleCreditNotes(snapshot.Invoices, r.store.SetSettled, r.cfg)
	result.SettledPairs = len(settle.Settled)
	result.UnmatchedCreditNotes = len(settle.Unmatched)
	result.FailedWrites += settle.FailedWrites

	if err := r.store.Flush(ctx); err != nil {
		return result, err
	}

	result.CompletedAt = time.Now()
	r.log.WithFields(logger.Fields{
		"matches":       len(result.Matches),
		"unmatched":     len(result.UnmatchedPayments),
		"displacements": result.Displacements,
		"settled":       result.SettledPairs,
		"failed_writes": result.FailedWrites,
	}).Info("scan completed")

	return result, nil
}

// prefetchRates bulk-loads the sell rates for every foreign-currency
// invoice issue date before matching starts. The scoring loop only ever
// reads the cache.
func (r *Reconciler) prefetchRates(ctx context.Context, invoices []*models.Invoice) {
	var dates []time.Time
	for _, invoice := range invoices {
		if invoice.IsForeignCurrency() {
			dates = append(dates, invoice.IssueDate)
		}
	}
	if len(dates) == 0 {
		return
	}
	r.rates.Prefetch(ctx, dates)
}

// place claims the best available slot for the payment: invoices first,
// salary receipts second, candidates in quality order. A takeover pushes
// the displaced payment onto the queue one cascade level deeper. Returns
// false when every candidate slot rejected the payment.
func (r *Reconciler) place(state *BatchState, queue *taskQueue, snapshot *store.Snapshot, payment *models.Payment, depth int) bool {
	for _, cand := range matcher.MatchInvoicesForPayment(payment, snapshot.Invoices, r.rates, r.cfg) {
		if r.offer(state, queue, Assignment{
			Kind:    slotInvoice,
			Slot:    cand.Invoice.Ref,
			DocID:   cand.Invoice.FileID,
			Payment: payment,
			Quality: cand.Quality,
			Depth:   depth,
		}) {
			return true
		}
	}
	for _, cand := range matcher.MatchReceiptsForPayment(payment, snapshot.Receipts, r.cfg) {
		if r.offer(state, queue, Assignment{
			Kind:    slotReceipt,
			Slot:    cand.Receipt.Ref,
			DocID:   cand.Receipt.FileID,
			Payment: payment,
			Quality: cand.Quality,
			Depth:   depth,
		}) {
			return true
		}
	}
	return false
}

func (r *Reconciler) offer(state *BatchState, queue *taskQueue, candidate Assignment) bool {
	accepted, displaced := state.Offer(candidate)
	if !accepted {
		return false
	}
	if displaced != nil {
		r.log.WithFields(logger.Fields{
			"slot":       candidate.Slot.String(),
			"winner":     candidate.Payment.FileID,
			"displaced":  displaced.Payment.FileID,
			"depth":      candidate.Depth,
			"confidence": candidate.Quality.Confidence,
		}).Debug("displacing weaker match")
		queue.Push(DisplacementTask{
			Payment:       displaced.Payment,
			DisplacedFrom: displaced.Slot,
			Depth:         candidate.Depth + 1,
		})
	}
	return true
}

// drain re-places displaced payments in FIFO order until the queue empties.
// Tasks past MaxDisplacementDepth are dropped with a warning; their
// payments end the batch unmatched. Returns the number of dropped tasks.
func (r *Reconciler) drain(state *BatchState, queue *taskQueue, snapshot *store.Snapshot) int {
	dropped := 0
	for {
		task, ok := queue.Pop()
		if !ok {
			return dropped
		}
		if task.Depth > MaxDisplacementDepth {
			dropped++
			r.log.WithFields(logger.Fields{
				"payment": task.Payment.FileID,
				"depth":   task.Depth,
			}).Warn("displacement cascade exceeded depth limit, dropping")
			continue
		}
		r.place(state, queue, snapshot, task.Payment, task.Depth)
	}
}

// commitAssignments writes the final assignments to both sides of each
// pairing and fills the result's match and unmatched sections. The final
// assignment map is the single source of truth: a payment displaced and
// never re-placed simply does not appear in it.
func (r *Reconciler) commitAssignments(state *BatchState, snapshot *store.Snapshot, result *ScanResult) {
	matchedPayments := make(map[string]bool, state.Len())

	for _, a := range state.Assignments() {
		matchedPayments[a.Payment.FileID] = true
		result.ConfidenceCounts[a.Quality.Confidence]++
		result.Matches = append(result.Matches, MatchLine{
			PaymentID:  a.Payment.FileID,
			DocumentID: a.DocID,
			Kind:       string(a.Kind),
			Confidence: a.Quality.Confidence,
			Days:       a.Quality.DayDistance,
		})

		if err := r.store.SetMatch(a.Slot, a.Payment.FileID, a.Quality.Confidence); err != nil {
			r.logWriteFailure(err, a.Slot, result)
		}
		if err := r.store.SetMatch(a.Payment.Ref, a.DocID, a.Quality.Confidence); err != nil {
			r.logWriteFailure(err, a.Payment.Ref, result)
		}
	}

	for _, payment := range snapshot.Payments {
		if !matchedPayments[payment.FileID] {
			result.UnmatchedPayments = append(result.UnmatchedPayments, payment.FileID)
		}
	}
}

// reconcileMovements runs the bank reconciler over every credit movement.
// Entries already consumed by previously annotated movements stay consumed.
func (r *Reconciler) reconcileMovements(snapshot *store.Snapshot, result *ScanResult) {
	consumed := make(map[string]bool)
	for _, movement := range snapshot.Movements {
		if movement.MatchedEntryID != "" {
			consumed[movement.MatchedEntryID] = true
		}
	}

	for _, movement := range snapshot.Movements {
		if movement.MatchedEntryID != "" {
			continue
		}

		match, noMatch := matcher.MatchMovement(movement, snapshot.Entries, consumed, r.cfg)
		if match == nil {
			result.MovementsUnmatched = append(result.MovementsUnmatched, MovementIssue{
				Row:    movement.Ref.String(),
				Reason: noMatch.Reason,
			})
			continue
		}

		consumed[match.Entry.ID] = true
		result.MovementsMatched++
		result.ConfidenceCounts[match.Confidence]++
		if err := r.store.SetMovementMatch(movement.Ref, match.Entry.ID, match.Confidence, match.Description); err != nil {
			r.logWriteFailure(err, movement.Ref, result)
		}
	}
}

func (r *Reconciler) logWriteFailure(err error, ref models.RowRef, result *ScanResult) {
	result.FailedWrites++
	r.log.WithError(err).WithField("row", ref.String()).Error("annotation write failed")
}
